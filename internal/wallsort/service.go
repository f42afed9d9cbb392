package wallsort

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"sync"
)

// ErrInvalidDimensions is returned when a header reports a non-positive width or height.
var ErrInvalidDimensions = errors.New("invalid image dimensions")

// Service is the orchestration layer that walks a source tree, classifies
// images by aspect ratio and moves the wide ones into a destination directory.
type Service struct {
	fsmgr   FilesystemManager
	reader  DimensionReader
	journal Journal
	logger  Logger
	clock   Clock
	idgen   IDGenerator
}

// NewService creates a new Service with the provided dependencies.
// A nil journal, logger, clock or idgen falls back to NopJournal, NopLogger,
// RealClock and UUIDGenerator respectively.
func NewService(fsmgr FilesystemManager, reader DimensionReader, journal Journal, logger Logger, clock Clock, idgen IDGenerator) *Service {
	if journal == nil {
		journal = NewNopJournal()
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	return &Service{
		fsmgr:   fsmgr,
		reader:  reader,
		journal: journal,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
	}
}

// ProcessRequest holds the per-file decision inputs.
type ProcessRequest struct {
	DestinationDir string
	RatioThreshold float64
	DryRun         bool
}

// RunRequest describes a full walk-classify-move pass.
type RunRequest struct {
	RunID          string // empty: taken from the IDGenerator
	SourceDir      string
	DestinationDir string
	RatioThreshold float64
	CreateParents  bool
	DryRun         bool
	Workers        int // values below 2 process entries sequentially
}

// Process classifies a single entry and moves it when its aspect ratio is
// strictly greater than the threshold. It never returns nil.
func (s *Service) Process(entry Entry, req ProcessRequest) *Outcome {
	out := &Outcome{Kind: OutcomeIgnored, Entry: entry}

	format, ok := FormatForExt(entry.Ext)
	if !ok {
		return out
	}

	s.logger.Info("processing file", "path", entry.Path)

	f, err := s.fsmgr.Open(entry.Path)
	if err != nil {
		s.logger.Warn("failed to open image file", "path", entry.Path, "error", err)
		return skipped(out, "open failed", err)
	}
	dims, err := s.reader.ReadDimensions(f, format)
	// Close before any rename so the handle never outlives the source path.
	f.Close()
	if err == nil && (dims.Width <= 0 || dims.Height <= 0) {
		err = fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, dims.Width, dims.Height)
	}
	if err != nil {
		s.logger.Warn("failed to read image metadata", "path", entry.Path, "error", err)
		return skipped(out, "unreadable header", err)
	}

	out.Dimensions = dims
	out.Ratio = dims.AspectRatio()
	s.logger.Info("image dimensions", "path", entry.Path, "width", dims.Width, "height", dims.Height, "ratio", out.Ratio)

	if !(out.Ratio > req.RatioThreshold) {
		out.Kind = OutcomeProcessed
		return out
	}

	dst := filepath.Join(req.DestinationDir, entry.Name)
	if s.fsmgr.SameFile(entry.Path, dst) {
		s.logger.Debug("already in destination", "path", entry.Path)
		out.Kind = OutcomeProcessed
		return out
	}

	out.Destination = dst
	if req.DryRun {
		s.logger.Info("would move", "path", entry.Path, "destination", out.Destination)
		out.Kind = OutcomeMatched
		return out
	}

	if err := s.fsmgr.Move(entry.Path, out.Destination); err != nil {
		s.logger.Warn("failed to move file", "path", entry.Path, "destination", out.Destination, "error", err)
		out.Kind = OutcomeFailed
		out.Reason = "move failed"
		out.Err = err
		return out
	}

	s.logger.Info("moved", "name", entry.Name, "destination", out.Destination)
	out.Kind = OutcomeMoved
	return out
}

func skipped(out *Outcome, reason string, err error) *Outcome {
	out.Kind = OutcomeSkipped
	out.Reason = reason
	out.Err = err
	return out
}

// Run ensures the destination exists, then walks the source tree and
// processes every entry. Failing to create the destination is the only error
// that aborts the run before any file is touched; per-file problems are
// reported through the logger and the returned Summary. A dry run never
// creates the destination. If ctx is cancelled the walk stops and ctx.Err()
// is returned along with the partial summary.
func (s *Service) Run(ctx context.Context, req RunRequest) (*Summary, error) {
	if !req.DryRun {
		created, err := s.fsmgr.EnsureDir(req.DestinationDir, req.CreateParents)
		if err != nil {
			return nil, fmt.Errorf("creating destination directory: %w", err)
		}
		if created {
			s.logger.Info("created destination directory", "path", req.DestinationDir)
		}
	}

	runID := req.RunID
	if runID == "" {
		runID = s.idgen.New()
	}
	run := &Run{
		ID:             runID,
		SourceDir:      req.SourceDir,
		DestinationDir: req.DestinationDir,
		RatioThreshold: req.RatioThreshold,
		DryRun:         req.DryRun,
		StartedAt:      s.clock.Now(),
	}
	if err := s.journal.StartRun(run); err != nil {
		return nil, fmt.Errorf("starting journal run: %w", err)
	}
	s.logger.Debug("run started", "run_id", run.ID, "source", req.SourceDir, "destination", req.DestinationDir, "ratio", req.RatioThreshold, "workers", req.Workers)

	preq := ProcessRequest{
		DestinationDir: req.DestinationDir,
		RatioThreshold: req.RatioThreshold,
		DryRun:         req.DryRun,
	}
	summary := &Summary{RunID: run.ID}
	entries := s.fsmgr.Walk(req.SourceDir, req.DestinationDir)

	var runErr error
	if req.Workers > 1 {
		runErr = s.runParallel(ctx, entries, preq, req.Workers, summary)
	} else {
		runErr = s.runSequential(ctx, entries, preq, summary)
	}

	status := RunStatusSuccess
	if runErr != nil {
		status = RunStatusInterrupted
		s.logger.Warn("run interrupted", "run_id", run.ID, "error", runErr)
	}
	if err := s.journal.FinishRun(run.ID, status, summary, s.clock.Now()); err != nil {
		s.logger.Warn("failed to finish journal run", "run_id", run.ID, "error", err)
	}
	s.logger.Debug("run finished", "run_id", run.ID, "status", status, "moved", summary.Moved, "candidates", summary.Candidates())

	return summary, runErr
}

func (s *Service) runSequential(ctx context.Context, entries iter.Seq[Entry], req ProcessRequest, summary *Summary) error {
	for entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.record(s.Process(entry, req), summary)
	}
	return nil
}

// runParallel fans entries out to a fixed pool of workers. The walker hands
// each path to exactly one worker, and only this goroutine touches the
// summary and the journal.
func (s *Service) runParallel(ctx context.Context, entries iter.Seq[Entry], req ProcessRequest, workers int, summary *Summary) error {
	work := make(chan Entry)
	results := make(chan *Outcome)

	var walkErr error
	go func() {
		defer close(work)
		for entry := range entries {
			if err := ctx.Err(); err != nil {
				walkErr = err
				return
			}
			select {
			case work <- entry:
			case <-ctx.Done():
				walkErr = ctx.Err()
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for entry := range work {
				results <- s.Process(entry, req)
			}
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for o := range results {
		s.record(o, summary)
	}
	return walkErr
}

func (s *Service) record(o *Outcome, summary *Summary) {
	summary.Add(o)
	if o.Kind == OutcomeIgnored {
		return
	}
	if err := s.journal.RecordOutcome(summary.RunID, o, s.clock.Now()); err != nil {
		s.logger.Warn("failed to record outcome", "path", o.Entry.Path, "error", err)
	}
}
