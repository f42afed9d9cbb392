package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wallsort/internal/config"
	"wallsort/internal/journal"
	"wallsort/internal/testutil"
	"wallsort/internal/wallsort"
)

type harness struct {
	app    *App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	a, err := New(cfg, Options{Stdout: h.stdout, Stderr: h.stderr})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	h.app = a
	return h
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestApp_Run_ExampleScenario(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "wide")
	testutil.WriteFile(t, filepath.Join(src, "a.jpg"), testutil.JPEGBytes(t, 400, 200))
	testutil.WriteFile(t, filepath.Join(src, "b.png"), testutil.PNGBytes(t, 100, 100))
	testutil.WriteFile(t, filepath.Join(src, "c.txt"), []byte("notes"))

	h := newHarness(t, &config.Config{})
	summary, err := h.app.Run(context.Background(), &config.Options{SourceDir: src, DestinationDir: dst, RatioThreshold: 1.5}, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !exists(filepath.Join(dst, "a.jpg")) || exists(filepath.Join(src, "a.jpg")) {
		t.Error("a.jpg should have moved to the destination")
	}
	if !exists(filepath.Join(src, "b.png")) || exists(filepath.Join(dst, "b.png")) {
		t.Error("b.png should stay in place")
	}
	if !exists(filepath.Join(src, "c.txt")) {
		t.Error("c.txt should stay in place")
	}
	if summary.Moved != 1 || summary.Processed != 1 || summary.Ignored != 1 {
		t.Errorf("summary = %+v", summary)
	}

	out := h.stdout.String()
	if got := strings.Count(out, "\tprocessing file\t"); got != 2 {
		t.Errorf("processing lines = %d, want 2:\n%s", got, out)
	}
	if strings.Contains(out, "c.txt") {
		t.Errorf("c.txt should never be mentioned:\n%s", out)
	}
	if !strings.Contains(out, "\tmoved\tname=a.jpg") {
		t.Errorf("missing moved line:\n%s", out)
	}
	if h.stderr.Len() != 0 {
		t.Errorf("unexpected warnings:\n%s", h.stderr.String())
	}
}

func TestApp_Run_SecondRunMovesNothing(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "wide")
	testutil.WriteFile(t, filepath.Join(src, "pano.png"), testutil.PNGBytes(t, 90, 30))
	testutil.WriteFile(t, filepath.Join(src, "sub", "square.jpg"), testutil.JPEGBytes(t, 30, 30))
	opts := &config.Options{SourceDir: src, DestinationDir: dst, RatioThreshold: 1.2}

	h := newHarness(t, &config.Config{})
	first, err := h.app.Run(context.Background(), opts, false)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Moved != 1 {
		t.Fatalf("first run moved %d, want 1", first.Moved)
	}

	second, err := h.app.Run(context.Background(), opts, false)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.Moved != 0 || second.Processed != 1 {
		t.Errorf("second run summary = %+v, want 0 moved and 1 processed", second)
	}
}

func TestApp_Run_DestinationCreatedAndContainsOnlyMoves(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "wide")
	testutil.WriteFile(t, filepath.Join(src, "a.png"), testutil.PNGBytes(t, 20, 10))
	testutil.WriteFile(t, filepath.Join(src, "b.png"), testutil.PNGBytes(t, 10, 20))

	h := newHarness(t, &config.Config{})
	if _, err := h.app.Run(context.Background(), &config.Options{SourceDir: src, DestinationDir: dst, RatioThreshold: 1}, false); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	entries, err := os.ReadDir(dst)
	if err != nil {
		t.Fatalf("destination not created: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.png" {
		t.Errorf("destination entries = %v, want [a.png]", entries)
	}
}

func TestApp_Run_DestinationParents(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "out", "wide")
	testutil.WriteFile(t, filepath.Join(src, "a.png"), testutil.PNGBytes(t, 20, 10))
	opts := &config.Options{SourceDir: src, DestinationDir: dst, RatioThreshold: 1}

	t.Run("single level fails before touching files", func(t *testing.T) {
		h := newHarness(t, &config.Config{})
		_, err := h.app.Run(context.Background(), opts, false)
		if err == nil {
			t.Fatal("Run() expected error for missing parent directory")
		}
		if !exists(filepath.Join(src, "a.png")) {
			t.Error("source file touched despite fatal error")
		}
		if strings.Contains(h.stdout.String(), "processing file") {
			t.Error("files processed despite fatal error")
		}
	})

	t.Run("create_parents builds the full path", func(t *testing.T) {
		h := newHarness(t, &config.Config{Move: config.MoveConfig{CreateParents: true}})
		summary, err := h.app.Run(context.Background(), opts, false)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if summary.Moved != 1 || !exists(filepath.Join(dst, "a.png")) {
			t.Errorf("summary = %+v", summary)
		}
	})
}

func TestApp_Run_CorruptFilesAreSkipped(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "wide")
	testutil.WriteFile(t, filepath.Join(src, "empty.jpg"), nil)
	testutil.WriteFile(t, filepath.Join(src, "truncated.jpg"), testutil.JPEGBytes(t, 40, 10)[:16])
	testutil.WriteFile(t, filepath.Join(src, "actually-png.jpg"), testutil.PNGBytes(t, 40, 10))
	testutil.WriteFile(t, filepath.Join(src, "ok.PNG"), testutil.PNGBytes(t, 40, 10))

	h := newHarness(t, &config.Config{})
	summary, err := h.app.Run(context.Background(), &config.Options{SourceDir: src, DestinationDir: dst, RatioThreshold: 2}, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, name := range []string{"empty.jpg", "truncated.jpg", "actually-png.jpg"} {
		if !exists(filepath.Join(src, name)) {
			t.Errorf("%s should remain in the source directory", name)
		}
	}
	if !exists(filepath.Join(dst, "ok.PNG")) {
		t.Error("ok.PNG should have moved")
	}
	if summary.Skipped != 3 || summary.Moved != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if got := strings.Count(h.stderr.String(), "failed to read image metadata"); got != 3 {
		t.Errorf("metadata warnings = %d, want 3:\n%s", got, h.stderr.String())
	}
}

func TestApp_Run_DestinationInsideSource(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(src, "wide")
	testutil.WriteFile(t, filepath.Join(src, "a.png"), testutil.PNGBytes(t, 30, 10))
	testutil.WriteFile(t, filepath.Join(dst, "old.png"), testutil.PNGBytes(t, 30, 10))

	h := newHarness(t, &config.Config{})
	summary, err := h.app.Run(context.Background(), &config.Options{SourceDir: src, DestinationDir: dst, RatioThreshold: 1}, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Moved != 1 || summary.Candidates() != 1 {
		t.Errorf("summary = %+v, destination contents should not be revisited", summary)
	}
}

func TestApp_Run_DryRun(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "wide")
	testutil.WriteFile(t, filepath.Join(src, "a.png"), testutil.PNGBytes(t, 30, 10))

	h := newHarness(t, &config.Config{})
	summary, err := h.app.Run(context.Background(), &config.Options{SourceDir: src, DestinationDir: dst, RatioThreshold: 1}, true)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Matched != 1 || summary.Moved != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if !exists(filepath.Join(src, "a.png")) {
		t.Error("dry run moved a file")
	}
	if exists(dst) {
		t.Error("dry run created the destination directory")
	}
}

func TestApp_Run_SymlinkedSource(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real")
	link := filepath.Join(root, "link")
	testutil.WriteFile(t, filepath.Join(target, "a", "x.png"), testutil.PNGBytes(t, 30, 10))
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	// The source is reached through the link, the destination is not.
	h := newHarness(t, &config.Config{})
	summary, err := h.app.Run(context.Background(), &config.Options{
		SourceDir:      link,
		DestinationDir: filepath.Join(target, "z"),
		RatioThreshold: 1.5,
	}, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Moved != 1 || summary.Candidates() != 1 {
		t.Errorf("summary = %+v, want one file moved once", summary)
	}
	if got := strings.Count(h.stdout.String(), "\tmoved\t"); got != 1 {
		t.Errorf("moved lines = %d, want 1:\n%s", got, h.stdout.String())
	}
	if !exists(filepath.Join(target, "z", "x.png")) {
		t.Error("x.png not in destination")
	}
}

func TestApp_Run_DestinationIsSource(t *testing.T) {
	src := t.TempDir()
	testutil.WriteFile(t, filepath.Join(src, "top.png"), testutil.PNGBytes(t, 30, 10))
	testutil.WriteFile(t, filepath.Join(src, "sub", "deep.png"), testutil.PNGBytes(t, 30, 10))
	opts := &config.Options{SourceDir: src, DestinationDir: src, RatioThreshold: 1.5}

	h := newHarness(t, &config.Config{})
	first, err := h.app.Run(context.Background(), opts, false)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Moved != 1 || first.Processed != 1 {
		t.Errorf("first summary = %+v, want sub/deep.png moved and top.png left alone", first)
	}
	if !exists(filepath.Join(src, "deep.png")) || !exists(filepath.Join(src, "top.png")) {
		t.Error("files missing from the source root")
	}

	second, err := h.app.Run(context.Background(), opts, false)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.Moved != 0 || second.Processed != 2 {
		t.Errorf("second summary = %+v, want nothing moved", second)
	}
}

func TestApp_Run_LogLinesCarryRunID(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	testutil.WriteFile(t, filepath.Join(src, "a.png"), testutil.PNGBytes(t, 30, 10))
	testutil.WriteFile(t, filepath.Join(src, "b.jpg"), nil)

	h := newHarness(t, &config.Config{Journal: config.JournalConfig{Type: config.JournalMemory}})
	summary, err := h.app.Run(context.Background(), &config.Options{SourceDir: src, DestinationDir: filepath.Join(root, "wide"), RatioThreshold: 1}, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	runs, err := h.app.History(1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("History() = %v, %v", runs, err)
	}
	if runs[0].ID != summary.RunID {
		t.Fatalf("journaled run %q, summary run %q", runs[0].ID, summary.RunID)
	}

	out := strings.TrimSuffix(h.stdout.String()+h.stderr.String(), "\n")
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 3 || fields[2] != summary.RunID {
			t.Errorf("line without run ID %s: %q", summary.RunID, line)
		}
	}
}

func TestApp_Run_Workers(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "wide")
	for i := range 12 {
		w := 10
		if i%2 == 0 {
			w = 30
		}
		testutil.WriteFile(t, filepath.Join(src, fmt.Sprintf("d%d", i%3), fmt.Sprintf("img%02d.png", i)), testutil.PNGBytes(t, w, 10))
	}

	h := newHarness(t, &config.Config{Move: config.MoveConfig{Workers: 4}})
	summary, err := h.app.Run(context.Background(), &config.Options{SourceDir: src, DestinationDir: dst, RatioThreshold: 2}, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Moved != 6 || summary.Processed != 6 {
		t.Errorf("summary = %+v, want 6 moved and 6 processed", summary)
	}
	entries, _ := os.ReadDir(dst)
	if len(entries) != 6 {
		t.Errorf("destination has %d files, want 6", len(entries))
	}
}

func TestApp_History(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "wide")
	testutil.WriteFile(t, filepath.Join(src, "a.png"), testutil.PNGBytes(t, 30, 10))
	testutil.WriteFile(t, filepath.Join(src, "b.png"), testutil.PNGBytes(t, 10, 10))
	testutil.WriteFile(t, filepath.Join(src, "notes.txt"), []byte("x"))

	t.Run("journal records runs and outcomes", func(t *testing.T) {
		h := newHarness(t, &config.Config{Journal: config.JournalConfig{Type: config.JournalMemory}})
		summary, err := h.app.Run(context.Background(), &config.Options{SourceDir: src, DestinationDir: dst, RatioThreshold: 1.5}, true)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		runs, err := h.app.History(10)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(runs) != 1 || runs[0].ID != summary.RunID {
			t.Fatalf("runs = %+v, want one run %s", runs, summary.RunID)
		}
		if runs[0].Status != wallsort.RunStatusSuccess || runs[0].Matched != 1 || runs[0].Processed != 1 || !runs[0].DryRun {
			t.Errorf("run = %+v", runs[0])
		}

		outcomes, err := h.app.RunOutcomes(summary.RunID)
		if err != nil {
			t.Fatalf("RunOutcomes() error = %v", err)
		}
		if len(outcomes) != 2 {
			t.Errorf("outcomes = %d, want 2 (ignored files are not journaled)", len(outcomes))
		}
	})

	t.Run("disabled journal", func(t *testing.T) {
		h := newHarness(t, &config.Config{})
		if _, err := h.app.History(10); !errors.Is(err, journal.ErrDisabled) {
			t.Errorf("History() error = %v, want ErrDisabled", err)
		}
	})
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(&config.Config{Journal: config.JournalConfig{Type: "bogus"}}, Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	if err == nil {
		t.Error("New() expected error for unknown journal type")
	}
}
