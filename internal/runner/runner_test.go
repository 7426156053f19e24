package runner

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"FuelWatch/internal/collector"
	"FuelWatch/internal/heartbeat"
	"FuelWatch/internal/model"
	"FuelWatch/internal/recorder"
	"FuelWatch/internal/store"
)

// 2024-05-03 is a Friday, 2024-05-01 a Wednesday.
var (
	friday    = time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)
	wednesday = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
)

type fakeNotifier struct {
	calls    int
	lastPath string
	err      error
}

func (f *fakeNotifier) SendReport(path string, _ model.Dataset) error {
	f.calls++
	f.lastPath = path
	return f.err
}

func mockData(day time.Time, diesel, crude float64) map[model.SeriesID][]model.Observation {
	return map[model.SeriesID][]model.Observation{
		model.SeriesDiesel: {{Series: model.SeriesDiesel, Date: day, Value: null.FloatFrom(diesel)}},
		model.SeriesCrude:  {{Series: model.SeriesCrude, Date: day, Value: null.FloatFrom(crude)}},
	}
}

func newTestRunner(t *testing.T, fetcher collector.Fetcher, now time.Time) (*Runner, *fakeNotifier) {
	t.Helper()
	dir := t.TempDir()
	tracker := heartbeat.NewTracker(filepath.Join(dir, "heartbeat.json"))
	tracker.Now = func() time.Time { return now }
	fn := &fakeNotifier{}

	r := New(fetcher,
		store.NewExcelStore(filepath.Join(dir, "prices.xlsx")),
		tracker, fn, recorder.NewNoopRecorder(),
		"FRI", 60)
	r.Now = tracker.Now
	return r, fn
}

func TestRun_SuccessOnNonReportDay(t *testing.T) {
	fetcher := &collector.MockFetcher{Data: mockData(model.Day(wednesday), 163.38, 78.20)}
	r, fn := newTestRunner(t, fetcher, wednesday)

	if err := r.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	ds, err := r.Store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(ds.Rows))
	}
	row := ds.Rows[0]
	if !row.Diesel.Valid || !row.Crude.Valid {
		t.Errorf("prices not persisted: %+v", row)
	}
	if !row.Week.Valid {
		t.Errorf("derived columns not recomputed: %+v", row)
	}
	if row.ReportFlag.Valid {
		t.Errorf("report columns stamped on a non-report day")
	}

	rec := r.Tracker.Load()
	if rec.Outcome != model.OutcomeSuccess {
		t.Errorf("expected success heartbeat, got %q (%s)", rec.Outcome, rec.Message)
	}
	if fn.calls != 0 {
		t.Errorf("report sent on a non-report day")
	}
}

func TestRun_ReportDaySendsAndStamps(t *testing.T) {
	fetcher := &collector.MockFetcher{Data: mockData(model.Day(friday), 100.0, 80.0)}
	r, fn := newTestRunner(t, fetcher, friday)

	if err := r.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if fn.calls != 1 {
		t.Fatalf("expected one report, got %d", fn.calls)
	}
	if fn.lastPath != r.Store.Path() {
		t.Errorf("report attached wrong path %q", fn.lastPath)
	}

	ds, _ := r.Store.Load()
	row := ds.Rows[0]
	if !row.ReportFlag.Valid || row.ReportFlag.Int64 != 1 {
		t.Errorf("report flag not stamped: %+v", row.ReportFlag)
	}
	if !row.SpreadAbs.Valid || row.SpreadAbs.Float64 != 20.0 {
		t.Errorf("expected spread 20, got %+v", row.SpreadAbs)
	}

	if rec := r.Tracker.Load(); rec.Outcome != model.OutcomeSuccess {
		t.Errorf("expected success heartbeat, got %q", rec.Outcome)
	}
}

func TestRun_FetchFailureLeavesStoreUntouched(t *testing.T) {
	// seed a committed dataset from an earlier run
	seeded := &collector.MockFetcher{Data: mockData(model.Day(wednesday), 163.38, 78.20)}
	r, fn := newTestRunner(t, seeded, wednesday)
	if err := r.Run(); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	before, _ := r.Store.Load()

	// next run on the report day fails during fetching
	r.Fetcher = &collector.MockFetcher{Err: fmt.Errorf("dial tcp: %w", collector.ErrTransient)}
	tracker := r.Tracker
	tracker.Now = func() time.Time { return friday }
	r.Now = tracker.Now

	err := r.Run()
	if !errors.Is(err, collector.ErrTransient) {
		t.Fatalf("expected transient fetch error, got %v", err)
	}

	after, _ := r.Store.Load()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("failed run modified the spreadsheet")
	}
	rec := tracker.Load()
	if rec.Outcome != model.OutcomeFailure {
		t.Errorf("expected failure heartbeat, got %q", rec.Outcome)
	}
	if rec.LastSuccess != "2024-05-01" {
		t.Errorf("failure lost the previous success date: %q", rec.LastSuccess)
	}
	if fn.calls != 0 {
		t.Errorf("report sent after a failed collection")
	}
}

func TestRun_NotifyFailureIsPartial(t *testing.T) {
	fetcher := &collector.MockFetcher{Data: mockData(model.Day(friday), 100.0, 80.0)}
	r, fn := newTestRunner(t, fetcher, friday)
	fn.err = errors.New("smtp: connection refused")

	// a notify failure does not fail the run: collection is committed
	if err := r.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	ds, err := r.Store.Load()
	if err != nil || len(ds.Rows) != 1 {
		t.Fatalf("collection not committed: %v, %d rows", err, len(ds.Rows))
	}
	rec := r.Tracker.Load()
	if rec.Outcome != model.OutcomePartial {
		t.Errorf("expected partial heartbeat, got %q (%s)", rec.Outcome, rec.Message)
	}
	if rec.LastSuccess != "2024-05-03" {
		t.Errorf("partial run should stamp last_success, got %q", rec.LastSuccess)
	}
}

func TestRunBackfill_InsertsRangeWithoutNotify(t *testing.T) {
	aprilFirst := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	data := map[model.SeriesID][]model.Observation{
		model.SeriesCrude: {
			{Series: model.SeriesCrude, Date: aprilFirst, Value: null.FloatFrom(75.0)},
			{Series: model.SeriesCrude, Date: aprilFirst.AddDate(0, 0, 1), Value: null.FloatFrom(76.0)},
		},
		model.SeriesDiesel: {
			{Series: model.SeriesDiesel, Date: aprilFirst, Value: null.FloatFrom(150.0)},
		},
	}
	r, fn := newTestRunner(t, &collector.MockFetcher{Data: data}, friday)

	if err := r.RunBackfill(aprilFirst, aprilFirst.AddDate(0, 0, 6)); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	ds, _ := r.Store.Load()
	if len(ds.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(ds.Rows))
	}
	if !ds.Rows[0].Date.Before(ds.Rows[1].Date) {
		t.Errorf("backfilled rows not ascending")
	}
	if fn.calls != 0 {
		t.Errorf("backfill must never send the report")
	}
	if rec := r.Tracker.Load(); rec.Outcome != model.OutcomeSuccess {
		t.Errorf("expected success heartbeat, got %q", rec.Outcome)
	}
}

func TestRunBackfill_RejectsInvertedRange(t *testing.T) {
	r, _ := newTestRunner(t, &collector.MockFetcher{}, wednesday)
	if err := r.RunBackfill(friday, wednesday); err == nil {
		t.Errorf("expected error for inverted range")
	}
}

func TestFetchStart_Window(t *testing.T) {
	r, _ := newTestRunner(t, &collector.MockFetcher{}, wednesday)
	today := model.Day(wednesday)

	empty := r.fetchStart(model.Dataset{}, today)
	if got := today.Sub(empty).Hours() / 24; got != 60 {
		t.Errorf("empty store lookback: expected 60 days, got %.0f", got)
	}

	ds := model.Dataset{Rows: []model.Row{{Date: model.Day(wednesday).AddDate(0, 0, -2)}}}
	overlap := r.fetchStart(ds, today)
	want := model.Day(wednesday).AddDate(0, 0, -2-overlapDays)
	if !overlap.Equal(want) {
		t.Errorf("overlap window: expected %s, got %s", model.FormatDay(want), model.FormatDay(overlap))
	}
}
