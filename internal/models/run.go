package models

import "time"

// RunKind identifies which research question an analysis run answered.
type RunKind string

const (
	RunRQ1 RunKind = "rq1"
	RunRQ2 RunKind = "rq2"
	RunRQ3 RunKind = "rq3"
)

// AnalysisRun records one execution of an analyze stage.
type AnalysisRun struct {
	ID         string // ULID
	Kind       RunKind
	StartedAt  time.Time
	FinishedAt time.Time
	Records    int // records in the dataset the run consumed
	Skipped    int // comparisons omitted for insufficient data
}
