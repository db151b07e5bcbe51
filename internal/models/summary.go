package models

import "time"

// TargetSummary aggregates per-target pipeline statistics. The orchestrator
// is the only writer; components report outcomes through return values.
type TargetSummary struct {
	Target           string
	FilterMode       string
	StartedAt        time.Time
	Duration         time.Duration
	PagesVisited     int
	CandidatesSeen   int
	Kept             int
	SkippedFiltered  int
	SkippedDuplicate int
	ErrorMessages    []string
}

// AddError records a recoverable error without aborting the target.
func (ts *TargetSummary) AddError(msg string) {
	ts.ErrorMessages = append(ts.ErrorMessages, msg)
}

// Errors returns the number of recoverable errors recorded.
func (ts *TargetSummary) Errors() int {
	return len(ts.ErrorMessages)
}
