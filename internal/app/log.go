package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogFileName is the log written inside log_dir.
const LogFileName = "wallsort.log"

// runHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// During a run opID is the journaled run ID, so `wallsort history show`
// and the log file share a key.
//
// Records below WARN go to out, WARN and above go to errOut. Each record is a
// single Write so lines from concurrent workers never interleave.
type runHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	errOut io.Writer
	level  slog.Leveler
	opID   string
	attrs  []slog.Attr
}

func (h *runHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.level == nil {
		return true
	}
	return level >= h.level.Level()
}

func (h *runHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	fmt.Fprintf(&buf, "%s\t%s\t%s\t%s", ts, r.Level.String(), h.opID, r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&buf, "\t%s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&buf, "\t%s=%v", a.Key, a.Value)
		return true
	})
	buf.WriteByte('\n')

	w := h.out
	if r.Level >= slog.LevelWarn {
		w = h.errOut
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := w.Write(buf.Bytes())
	return err
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runHandler{
		mu:     h.mu,
		out:    h.out,
		errOut: h.errOut,
		level:  h.level,
		opID:   h.opID,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *runHandler) WithGroup(string) slog.Handler { return h }

// withOpID returns a copy of h that stamps records with opID.
func (h *runHandler) withOpID(opID string) *runHandler {
	c := *h
	c.opID = opID
	return &c
}

// logOptions describes logger construction parameters.
type logOptions struct {
	Dir    string // empty: console only
	Level  slog.Level
	OpID   string
	Stdout io.Writer
	Stderr io.Writer
}

// newLogger creates a structured logger that writes to the console and, when
// opts.Dir is set, appends to opts.Dir/wallsort.log. It returns the handler,
// the open log file (nil without a log dir), and any error.
func newLogger(opts logOptions) (*runHandler, *os.File, error) {
	out, errOut := opts.Stdout, opts.Stderr
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	var f *os.File
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(filepath.Join(opts.Dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = io.MultiWriter(f, out)
		errOut = io.MultiWriter(f, errOut)
	}

	handler := &runHandler{mu: &sync.Mutex{}, out: out, errOut: errOut, level: opts.Level, opID: opts.OpID}
	return handler, f, nil
}

// parseLevel maps a config log_level to a slog.Level. Unknown values mean info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// slogAdapter wraps *slog.Logger to satisfy the wallsort.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
