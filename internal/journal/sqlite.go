package journal

import (
	"database/sql"
	"fmt"
	"time"

	"wallsort/internal/journal/migrations"
	"wallsort/internal/wallsort"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements Store on top of SQLite.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// NewSQLiteJournal opens the journal at path, applying pending migrations.
// path can be a file path or ":memory:".
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}
	if err := migrations.CheckStatus(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal schema out of date: %w", err)
	}
	return &SQLiteJournal{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate PRAGMAs.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// A single connection keeps ":memory:" databases intact and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// Path returns the location the journal was opened from.
func (j *SQLiteJournal) Path() string { return j.path }

func (j *SQLiteJournal) StartRun(run *wallsort.Run) error {
	_, err := j.db.Exec(
		`INSERT INTO runs (id, source_dir, destination_dir, ratio_threshold, dry_run, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceDir, run.DestinationDir, run.RatioThreshold, run.DryRun, wallsort.RunStatusRunning, run.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

func (j *SQLiteJournal) RecordOutcome(runID string, o *wallsort.Outcome, at time.Time) error {
	var errText string
	if o.Err != nil {
		errText = o.Err.Error()
	}
	_, err := j.db.Exec(
		`INSERT INTO outcomes (run_id, path, destination, kind, width, height, ratio, reason, error, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, o.Entry.Path, o.Destination, o.Kind.String(), o.Dimensions.Width, o.Dimensions.Height, o.Ratio, o.Reason, errText, at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting outcome for %s: %w", o.Entry.Path, err)
	}
	return nil
}

func (j *SQLiteJournal) FinishRun(runID string, status string, summary *wallsort.Summary, at time.Time) error {
	res, err := j.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ?, processed = ?, skipped = ?, matched = ?, moved = ?, failed = ?
		 WHERE id = ?`,
		status, at.UTC(), summary.Processed, summary.Skipped, summary.Matched, summary.Moved, summary.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing run: unknown run %s", runID)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit returns all runs.
func (j *SQLiteJournal) ListRuns(limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(
		`SELECT id, source_dir, destination_dir, ratio_threshold, dry_run, status, started_at, finished_at,
		        processed, skipped, matched, moved, failed
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		r := &RunRecord{}
		if err := rows.Scan(&r.ID, &r.SourceDir, &r.DestinationDir, &r.RatioThreshold, &r.DryRun, &r.Status,
			&r.StartedAt, &r.FinishedAt, &r.Processed, &r.Skipped, &r.Matched, &r.Moved, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// ListOutcomes returns the outcomes of a run in the order they were recorded.
func (j *SQLiteJournal) ListOutcomes(runID string) ([]*OutcomeRecord, error) {
	rows, err := j.db.Query(
		`SELECT id, run_id, path, destination, kind, width, height, ratio, reason, error, recorded_at
		 FROM outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing outcomes: %w", err)
	}
	defer rows.Close()

	var out []*OutcomeRecord
	for rows.Next() {
		o := &OutcomeRecord{}
		if err := rows.Scan(&o.ID, &o.RunID, &o.Path, &o.Destination, &o.Kind, &o.Width, &o.Height,
			&o.Ratio, &o.Reason, &o.Error, &o.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing outcomes: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

var _ Store = (*SQLiteJournal)(nil)
