package collector

import (
	"time"

	"FuelWatch/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Data map[model.SeriesID][]model.Observation
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(series model.SeriesID, start, end time.Time) ([]model.Observation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []model.Observation
	for _, o := range m.Data[series] {
		if o.Date.Before(start) || o.Date.After(end) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
