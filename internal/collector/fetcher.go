package collector

import (
	"errors"
	"time"

	"FuelWatch/internal/model"
)

// Fetch failure taxonomy. The runner discriminates with errors.Is; no
// layer below it retries or recovers.
var (
	ErrUnknownSeries  = errors.New("unknown series")
	ErrAuthentication = errors.New("authentication failed")
	ErrTransient      = errors.New("transient network error")
	ErrRateLimited    = errors.New("rate limited")
)

// Fetcher returns dated observations for a series within a date range,
// in ascending date order. Days with no published value are absent from
// the result, not returned as null entries.
type Fetcher interface {
	Fetch(series model.SeriesID, start, end time.Time) ([]model.Observation, error)
	Name() string
}
