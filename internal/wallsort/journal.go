package wallsort

import "time"

// Run status values stored in the journal.
const (
	RunStatusRunning     = "running"
	RunStatusSuccess     = "success"
	RunStatusInterrupted = "interrupted"
)

// Run describes one invocation of the pipeline.
type Run struct {
	ID             string
	SourceDir      string
	DestinationDir string
	RatioThreshold float64
	DryRun         bool
	StartedAt      time.Time
}

// Journal records runs and their per-file outcomes.
// Implementations must be safe for use from a single collector goroutine;
// the service never calls a Journal concurrently.
type Journal interface {
	StartRun(run *Run) error
	RecordOutcome(runID string, o *Outcome, at time.Time) error
	FinishRun(runID string, status string, summary *Summary, at time.Time) error
}

// NopJournal discards everything.
type NopJournal struct{}

func NewNopJournal() *NopJournal { return &NopJournal{} }

func (NopJournal) StartRun(*Run) error                                 { return nil }
func (NopJournal) RecordOutcome(string, *Outcome, time.Time) error     { return nil }
func (NopJournal) FinishRun(string, string, *Summary, time.Time) error { return nil }
