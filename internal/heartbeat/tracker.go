// Package heartbeat persists the status of the most recent run and
// decides whether today is the configured report day.
package heartbeat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"FuelWatch/internal/model"
)

var weekdays = map[string]time.Weekday{
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
	"SUN": time.Sunday,
}

// ParseWeekday resolves a case-insensitive three-letter weekday code.
func ParseWeekday(code string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday code %q", code)
	}
	return wd, nil
}

// MatchesWeekday reports whether t falls on the coded weekday. Unknown
// codes never match.
func MatchesWeekday(code string, t time.Time) bool {
	wd, err := ParseWeekday(code)
	if err != nil {
		return false
	}
	return t.Weekday() == wd
}

// Tracker owns the heartbeat file. The record is a singleton,
// overwritten in place on every run; it carries no history.
type Tracker struct {
	path string

	// Now is the clock used for timestamps and the notify predicate;
	// overridable in tests.
	Now func() time.Time
}

func NewTracker(path string) *Tracker {
	return &Tracker{path: path, Now: time.Now}
}

func (t *Tracker) Path() string { return t.path }

// Load reads the current record. A missing or unreadable file yields a
// zero record: the heartbeat is best-effort state, never a reason to
// fail a run.
func (t *Tracker) Load() model.RunRecord {
	var rec model.RunRecord
	data, err := os.ReadFile(t.path)
	if err != nil {
		return rec
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.RunRecord{}
	}
	return rec
}

// Record overwrites the heartbeat with the given outcome and message,
// stamped with the current time. The write is durable (temp file +
// rename) before Record returns.
func (t *Tracker) Record(outcome model.RunOutcome, message string) error {
	now := t.Now()
	today := model.FormatDay(now)

	rec := t.Load()
	rec.LastRun = now
	rec.Outcome = outcome
	rec.Message = message
	switch outcome {
	case model.OutcomeFailure:
		rec.LastError = today
	default:
		// partial still means collection was committed
		rec.LastSuccess = today
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode heartbeat: %w", err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create heartbeat dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".heartbeat-*.json")
	if err != nil {
		return fmt.Errorf("create temp heartbeat: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write heartbeat: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close heartbeat: %w", err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace heartbeat: %w", err)
	}
	return nil
}

// ShouldNotifyToday reports whether the current calendar day falls on
// the configured report weekday.
func (t *Tracker) ShouldNotifyToday(weekday string) bool {
	return MatchesWeekday(weekday, t.Now())
}
