package model

import "time"

// RunOutcome classifies the most recent execution.
type RunOutcome string

const (
	OutcomeSuccess RunOutcome = "success"
	// OutcomePartial means collection was committed but the report
	// email afterwards failed.
	OutcomePartial RunOutcome = "partial"
	OutcomeFailure RunOutcome = "failure"
)

// RunRecord is the heartbeat singleton, overwritten on every run.
type RunRecord struct {
	LastRun     time.Time  `json:"last_run"`
	Outcome     RunOutcome `json:"outcome"`
	Message     string     `json:"message"`
	LastSuccess string     `json:"last_success"`
	LastError   string     `json:"last_error"`
}
