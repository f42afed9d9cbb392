package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"wallsort/internal/config"
	"wallsort/internal/fs"
	"wallsort/internal/imagehdr"
	"wallsort/internal/journal"
	"wallsort/internal/wallsort"
)

// App is the application layer between the CLI and the wallsort Service.
// It constructs all dependencies from config and closes them on Close.
type App struct {
	cfg     *config.Config
	journal journal.Store
	fsmgr   wallsort.FilesystemManager
	reader  wallsort.DimensionReader
	handler *runHandler
	idgen   wallsort.IDGenerator
	logFile *os.File
}

// Options are process-level settings that do not live in the config file.
type Options struct {
	Verbose bool      // log at debug level regardless of log_level
	Stdout  io.Writer // defaults to os.Stdout
	Stderr  io.Writer // defaults to os.Stderr
}

// New creates a fully wired App from the given config.
// The caller must call Close when done.
func New(cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := parseLevel(cfg.LogLevel)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler, logFile, err := newLogger(logOptions{
		Dir:    cfg.LogDir,
		Level:  level,
		OpID:   "-",
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := journal.NewJournalFromConfig(cfg.Journal)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	return &App{
		cfg:     cfg,
		journal: store,
		fsmgr:   fs.NewOSFilesystemManager(cfg.Filesystem.Ignore),
		reader:  imagehdr.NewReader(),
		handler: handler,
		idgen:   wallsort.UUIDGenerator{},
		logFile: logFile,
	}, nil
}

// Run moves every image under opts.SourceDir whose aspect ratio exceeds
// opts.RatioThreshold into opts.DestinationDir. With dryRun the decisions are
// logged and journaled but nothing is moved. Every log line of the run
// carries the run ID that the journal stores.
func (a *App) Run(ctx context.Context, opts *config.Options, dryRun bool) (*wallsort.Summary, error) {
	runID := a.idgen.New()
	logger := &slogAdapter{l: slog.New(a.handler.withOpID(runID))}
	svc := wallsort.NewService(a.fsmgr, a.reader, a.journal, logger, wallsort.RealClock{}, a.idgen)

	return svc.Run(ctx, wallsort.RunRequest{
		RunID:          runID,
		SourceDir:      opts.SourceDir,
		DestinationDir: opts.DestinationDir,
		RatioThreshold: opts.RatioThreshold,
		CreateParents:  a.cfg.Move.CreateParents,
		DryRun:         dryRun,
		Workers:        a.cfg.Move.Workers,
	})
}

// History returns the most recent journaled runs.
func (a *App) History(limit int) ([]*journal.RunRecord, error) {
	return a.journal.ListRuns(limit)
}

// RunOutcomes returns the journaled outcomes of one run.
func (a *App) RunOutcomes(runID string) ([]*journal.OutcomeRecord, error) {
	return a.journal.ListOutcomes(runID)
}

// Close closes the journal and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.journal.Close(); err != nil {
		firstErr = fmt.Errorf("closing journal: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
