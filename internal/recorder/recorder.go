package recorder

import "FuelWatch/internal/model"

// RunEvent holds the audit data for one execution.
type RunEvent struct {
	Outcome      model.RunOutcome
	Message      string
	RowsInserted int
	RowsAmended  int
}

// Recorder persists run and observation history for later analysis.
// Recording is best-effort: failures are logged by callers, never fatal.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	RecordObservations(series model.SeriesID, obs []model.Observation) error
	Close() error
}
