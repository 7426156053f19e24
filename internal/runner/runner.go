// Package runner sequences one execution: fetch, merge, persist,
// heartbeat, then the weekday-gated report. It is the single point that
// translates component failures into a run outcome.
package runner

import (
	"fmt"
	"log"
	"time"

	"FuelWatch/internal/collector"
	"FuelWatch/internal/dataset"
	"FuelWatch/internal/heartbeat"
	"FuelWatch/internal/model"
	"FuelWatch/internal/notifier"
	"FuelWatch/internal/recorder"
	"FuelWatch/internal/store"
)

// overlapDays is re-fetched before the last persisted date so that
// late-published values can amend recent rows.
const overlapDays = 7

// Runner wires the components of one run. Construct with New; all
// collaborators are required (use the noop recorder/notifier when a
// concern is not configured).
type Runner struct {
	Fetcher  collector.Fetcher
	Store    store.Store
	Tracker  *heartbeat.Tracker
	Notifier notifier.Notifier
	Recorder recorder.Recorder

	Weekday      string
	LookbackDays int

	// Now is the clock used for "today"; overridable in tests.
	Now func() time.Time
}

func New(f collector.Fetcher, s store.Store, t *heartbeat.Tracker, n notifier.Notifier, r recorder.Recorder, weekday string, lookbackDays int) *Runner {
	return &Runner{
		Fetcher:      f,
		Store:        s,
		Tracker:      t,
		Notifier:     n,
		Recorder:     r,
		Weekday:      weekday,
		LookbackDays: lookbackDays,
		Now:          time.Now,
	}
}

// Run executes the daily collection. Any fetch/merge/persist failure is
// recorded in the heartbeat and returned; the report email is then
// skipped so a stale spreadsheet is never mailed as if it were current.
// A failure of the report email alone downgrades the heartbeat to
// partial but never reverts the committed dataset.
func (r *Runner) Run() error {
	today := model.Day(r.Now())

	ds, err := r.Store.Load()
	if err != nil {
		return r.fail("load spreadsheet", err)
	}

	start := r.fetchStart(ds, today)
	merged, stats, err := r.collect(ds, start, today)
	if err != nil {
		return err
	}

	reportDay := r.Tracker.ShouldNotifyToday(r.Weekday)
	if reportDay {
		merged = dataset.StampReport(merged, today)
	}

	if err := r.Store.Save(merged); err != nil {
		return r.fail("save spreadsheet", err)
	}

	msg := fmt.Sprintf("%d rows inserted, %d cells amended", stats.Inserted, stats.Amended)
	log.Printf("[INFO] spreadsheet updated: %s (%s)", r.Store.Path(), msg)

	// Heartbeat is written durably before the notify step: if the
	// process dies during notify, the record already reflects the
	// committed collection.
	if err := r.Tracker.Record(model.OutcomeSuccess, msg); err != nil {
		log.Printf("[ERROR] write heartbeat: %v", err)
	}
	r.recordRun(model.OutcomeSuccess, msg, stats)

	if reportDay {
		if err := r.Notifier.SendReport(r.Store.Path(), merged); err != nil {
			log.Printf("[ERROR] send report: %v", err)
			pmsg := fmt.Sprintf("collection committed (%s); report email failed: %v", msg, err)
			if herr := r.Tracker.Record(model.OutcomePartial, pmsg); herr != nil {
				log.Printf("[ERROR] write heartbeat: %v", herr)
			}
			r.recordRun(model.OutcomePartial, pmsg, stats)
			return nil
		}
		log.Printf("[INFO] report sent to recipients")
	}
	return nil
}

// RunBackfill fetches both series for an explicit date range and runs
// the same merge/persist pipeline. Backfill never sends the report.
func (r *Runner) RunBackfill(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("backfill: start %s after end %s", model.FormatDay(start), model.FormatDay(end))
	}

	ds, err := r.Store.Load()
	if err != nil {
		return r.fail("load spreadsheet", err)
	}

	merged, stats, err := r.collect(ds, model.Day(start), model.Day(end))
	if err != nil {
		return err
	}

	if err := r.Store.Save(merged); err != nil {
		return r.fail("save spreadsheet", err)
	}

	msg := fmt.Sprintf("backfill %s..%s: %d rows inserted, %d cells amended",
		model.FormatDay(start), model.FormatDay(end), stats.Inserted, stats.Amended)
	log.Printf("[INFO] %s", msg)

	if err := r.Tracker.Record(model.OutcomeSuccess, msg); err != nil {
		log.Printf("[ERROR] write heartbeat: %v", err)
	}
	r.recordRun(model.OutcomeSuccess, msg, stats)
	return nil
}

// collect fetches both series over [start, end], merges them into ds,
// and recomputes the derived columns. No partial commit: the first
// fetch failure aborts the whole collection step.
func (r *Runner) collect(ds model.Dataset, start, end time.Time) (model.Dataset, dataset.MergeStats, error) {
	var incoming []model.Observation
	for _, series := range []model.SeriesID{model.SeriesCrude, model.SeriesDiesel} {
		obs, err := r.Fetcher.Fetch(series, start, end)
		if err != nil {
			return model.Dataset{}, dataset.MergeStats{}, r.fail(fmt.Sprintf("fetch %s", series), err)
		}
		log.Printf("[INFO] fetched %d observations for %s (%s..%s)",
			len(obs), series, model.FormatDay(start), model.FormatDay(end))
		if err := r.Recorder.RecordObservations(series, obs); err != nil {
			log.Printf("[WARN] record observations: %v", err)
		}
		incoming = append(incoming, obs...)
	}

	merged, stats := dataset.Merge(ds, incoming)
	merged = dataset.Recompute(merged)
	return merged, stats, nil
}

// fetchStart picks the daily fetch window: a small overlap behind the
// last persisted date, or the configured lookback on an empty store.
func (r *Runner) fetchStart(ds model.Dataset, today time.Time) time.Time {
	if last, ok := ds.LastDate(); ok {
		return last.AddDate(0, 0, -overlapDays)
	}
	return today.AddDate(0, 0, -r.LookbackDays)
}

// fail records a failure heartbeat with the diagnostic and returns the
// wrapped error; the caller stops, and the notify step never happens.
func (r *Runner) fail(stage string, err error) error {
	msg := fmt.Sprintf("%s: %v", stage, err)
	log.Printf("[ERROR] %s", msg)
	if herr := r.Tracker.Record(model.OutcomeFailure, msg); herr != nil {
		log.Printf("[ERROR] write heartbeat: %v", herr)
	}
	r.recordRun(model.OutcomeFailure, msg, dataset.MergeStats{})
	return fmt.Errorf("%s: %w", stage, err)
}

func (r *Runner) recordRun(outcome model.RunOutcome, msg string, stats dataset.MergeStats) {
	if err := r.Recorder.RecordRun(&recorder.RunEvent{
		Outcome:      outcome,
		Message:      msg,
		RowsInserted: stats.Inserted,
		RowsAmended:  stats.Amended,
	}); err != nil {
		log.Printf("[WARN] record run: %v", err)
	}
}
