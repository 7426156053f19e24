package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// SeriesID names one of the tracked price series.
type SeriesID string

const (
	SeriesDiesel SeriesID = "diesel"
	SeriesCrude  SeriesID = "crude_oil"
)

// Known reports whether the identifier is one of the tracked series.
func (s SeriesID) Known() bool {
	return s == SeriesDiesel || s == SeriesCrude
}

// Observation is one dated value for one series. An invalid Value means
// "no data for this day", which is distinct from zero.
type Observation struct {
	Series SeriesID
	Date   time.Time
	Value  null.Float
}

// DayLayout is the calendar-day format used everywhere: in the FRED API,
// the spreadsheet, and the heartbeat file.
const DayLayout = "2006-01-02"

// Day truncates t to a calendar day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC calendar day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

// FormatDay renders t as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}
