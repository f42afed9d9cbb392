package testutil

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"wallsort/internal/wallsort"
)

// MockFilesystemManager is an in-memory filesystem for testing. Safe for
// concurrent use so it can back the worker pool.
type MockFilesystemManager struct {
	mu       sync.Mutex
	files    map[string][]byte
	dirs     map[string]bool
	openErrs map[string]error
	moveErrs map[string]error
	opened   []string
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		openErrs: make(map[string]error),
		moveErrs: make(map[string]error),
	}
}

// AddFile adds a file and all of its parent directories.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.files[path] = content
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if dir == filepath.Dir(dir) {
			break
		}
	}
}

// AddDirectory adds a directory.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[filepath.Clean(path)] = true
}

// FailOpen makes Open return err for path.
func (m *MockFilesystemManager) FailOpen(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErrs[filepath.Clean(path)] = err
}

// FailMove makes Move return err when path is the source.
func (m *MockFilesystemManager) FailMove(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveErrs[filepath.Clean(path)] = err
}

// Exists reports whether a file is present at path.
func (m *MockFilesystemManager) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

// DirExists reports whether a directory is present at path.
func (m *MockFilesystemManager) DirExists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[filepath.Clean(path)]
}

// Opened returns every path passed to Open, in call order.
func (m *MockFilesystemManager) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.opened)
}

// FilesUnder returns the sorted file paths below dir.
func (m *MockFilesystemManager) FilesUnder(dir string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filesUnder(filepath.Clean(dir), nil)
}

func (m *MockFilesystemManager) filesUnder(dir string, exclude []string) []string {
	prefix := dir + string(filepath.Separator)
	var out []string
	for p := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		if slices.ContainsFunc(exclude, func(x string) bool {
			// The walk root itself is never pruned.
			return x != "" && filepath.Clean(x) != dir && strings.HasPrefix(p, filepath.Clean(x)+string(filepath.Separator))
		}) {
			continue
		}
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Walk yields a snapshot of the files under root taken when iteration starts.
func (m *MockFilesystemManager) Walk(root string, exclude ...string) iter.Seq[wallsort.Entry] {
	return func(yield func(wallsort.Entry) bool) {
		m.mu.Lock()
		paths := m.filesUnder(filepath.Clean(root), exclude)
		m.mu.Unlock()

		for _, p := range paths {
			if !yield(wallsort.NewEntry(p)) {
				return
			}
		}
	}
}

func (m *MockFilesystemManager) Open(path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.opened = append(m.opened, path)
	if err, ok := m.openErrs[path]; ok {
		return nil, err
	}
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *MockFilesystemManager) Move(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, dst = filepath.Clean(src), filepath.Clean(dst)
	if err, ok := m.moveErrs[src]; ok {
		return err
	}
	content, ok := m.files[src]
	if !ok {
		return fmt.Errorf("file not found: %s", src)
	}
	if !m.dirs[filepath.Dir(dst)] {
		return fmt.Errorf("destination directory missing: %s", filepath.Dir(dst))
	}
	delete(m.files, src)
	m.files[dst] = content
	return nil
}

func (m *MockFilesystemManager) SameFile(a, b string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, b = filepath.Clean(a), filepath.Clean(b)
	_, ok := m.files[a]
	return ok && a == b
}

func (m *MockFilesystemManager) EnsureDir(path string, parents bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if _, ok := m.files[path]; ok {
		return false, fmt.Errorf("destination exists and is not a directory: %s", path)
	}
	if m.dirs[path] {
		return false, nil
	}
	if !parents && !m.dirs[filepath.Dir(path)] {
		return false, fmt.Errorf("parent directory missing: %s", filepath.Dir(path))
	}
	for dir := path; !m.dirs[dir]; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
	return true, nil
}

// Compile-time check
var _ wallsort.FilesystemManager = (*MockFilesystemManager)(nil)
