package wallsort

import (
	"io"
	"iter"
)

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Walk lazily yields every regular file under root. Entries that fail
	// during traversal are omitted. Directories in exclude are not entered.
	Walk(root string, exclude ...string) iter.Seq[Entry]

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// Move renames src to dst in a single call.
	Move(src, dst string) error

	// SameFile reports whether a and b are the same existing file.
	SameFile(a, b string) bool

	// EnsureDir creates path if it does not exist. When parents is false only
	// the final path element is created. Reports whether it created anything.
	EnsureDir(path string, parents bool) (bool, error)
}

// DimensionReader decodes just enough of an image to report its size.
type DimensionReader interface {
	ReadDimensions(r io.Reader, format Format) (Dimensions, error)
}
