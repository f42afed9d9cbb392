// Package journal persists runs and per-file outcomes so past moves can be
// listed with `wallsort history`.
package journal

import (
	"database/sql"
	"errors"
	"time"

	"wallsort/internal/wallsort"
)

// ErrDisabled is returned by history queries when no journal is configured.
var ErrDisabled = errors.New("journal is disabled (set [journal] type in the config file)")

// Store is a wallsort.Journal that can also answer history queries.
type Store interface {
	wallsort.Journal
	ListRuns(limit int) ([]*RunRecord, error)
	ListOutcomes(runID string) ([]*OutcomeRecord, error)
	Close() error
}

// RunRecord is a stored run with its final counts.
type RunRecord struct {
	ID             string
	SourceDir      string
	DestinationDir string
	RatioThreshold float64
	DryRun         bool
	Status         string
	StartedAt      time.Time
	FinishedAt     sql.NullTime
	Processed      int
	Skipped        int
	Matched        int
	Moved          int
	Failed         int
}

// OutcomeRecord is one stored per-file outcome.
type OutcomeRecord struct {
	ID          int64
	RunID       string
	Path        string
	Destination string
	Kind        string
	Width       int
	Height      int
	Ratio       float64
	Reason      string
	Error       string
	RecordedAt  time.Time
}

// disabledStore is the Store used for journal type "none".
type disabledStore struct {
	wallsort.NopJournal
}

func (disabledStore) ListRuns(int) ([]*RunRecord, error)            { return nil, ErrDisabled }
func (disabledStore) ListOutcomes(string) ([]*OutcomeRecord, error) { return nil, ErrDisabled }
func (disabledStore) Close() error                                  { return nil }
