package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"wallsort/internal/wallsort"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignorePatterns []string
}

// NewOSFilesystemManager creates a new filesystem manager that operates on the real filesystem.
// ignorePatterns are applied in addition to the .wallsortignore file at the walk root.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignorePatterns: ignorePatterns}
}

// Walk yields every regular file under root in lexical order.
// Traversal errors are swallowed: an unreadable directory is not entered and
// a missing root produces an empty sequence. Directories that are the same
// directory as an entry of exclude, however they are spelled, and any path
// matched by the ignore rules are pruned. The root itself is never pruned.
// A root that is a symlink to a directory is followed; symlinks below it are not.
func (m *OSFilesystemManager) Walk(root string, exclude ...string) iter.Seq[wallsort.Entry] {
	return func(yield func(wallsort.Entry) bool) {
		matcher := m.matcherFor(root)
		excluded := statDirs(exclude)
		if info, err := os.Lstat(root); err == nil && info.Mode()&fs.ModeSymlink != 0 {
			// WalkDir lstats its root; a trailing separator makes it resolve the link.
			root += string(filepath.Separator)
		}

		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				// Skip the entry (and the directory contents, if the read failed).
				if d != nil && d.IsDir() && p != root {
					return filepath.SkipDir
				}
				return nil
			}

			if p != root {
				if d.IsDir() && isExcluded(d, excluded) {
					return filepath.SkipDir
				}
				if rel, rerr := filepath.Rel(root, p); rerr == nil && matcher.Match(rel, d.IsDir()) {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}

			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if !yield(wallsort.NewEntry(p)) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (m *OSFilesystemManager) matcherFor(root string) *IgnoreMatcher {
	patterns := append([]string{}, defaultIgnorePatterns...)
	patterns = append(patterns, m.ignorePatterns...)
	// An unreadable ignore file is treated like a missing one.
	if fromFile, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName)); err == nil {
		patterns = append(patterns, fromFile...)
	}
	return NewIgnoreMatcher(patterns)
}

// statDirs stats each existing directory in paths, following symlinks.
// Missing paths are dropped: there is nothing to prune.
func statDirs(paths []string) []fs.FileInfo {
	var out []fs.FileInfo
	for _, p := range paths {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			out = append(out, info)
		}
	}
	return out
}

func isExcluded(d fs.DirEntry, excluded []fs.FileInfo) bool {
	if len(excluded) == 0 {
		return false
	}
	info, err := d.Info()
	if err != nil {
		return false
	}
	for _, x := range excluded {
		if os.SameFile(info, x) {
			return true
		}
	}
	return false
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Move renames src to dst. Cross-device failures are reported as *CrossDeviceError.
func (m *OSFilesystemManager) Move(src, dst string) error {
	return Rename(src, dst)
}

// SameFile reports whether a and b name the same existing file, so that a
// rename from one to the other would be a no-op.
func (m *OSFilesystemManager) SameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// EnsureDir creates path when it is missing. With parents false only the
// last element is created, so missing intermediate directories are an error.
func (m *OSFilesystemManager) EnsureDir(path string, parents bool) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("destination exists and is not a directory: %s", path)
		}
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat destination: %w", err)
	}

	if parents {
		err = os.MkdirAll(path, 0755)
	} else {
		err = os.Mkdir(path, 0755)
	}
	if err != nil {
		return false, fmt.Errorf("creating directory %s: %w", path, err)
	}
	return true, nil
}

// Compile-time check that OSFilesystemManager implements wallsort.FilesystemManager interface
var _ wallsort.FilesystemManager = (*OSFilesystemManager)(nil)
