package wallsort

import (
	"path/filepath"
	"strings"
)

// Entry is a regular file produced by the directory walker.
type Entry struct {
	Path string // full path as produced by the walk
	Name string // base name
	Ext  string // lowercase extension without the leading dot
}

// NewEntry builds an Entry from a walked path.
func NewEntry(path string) Entry {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	if ext == name {
		// ".png" is a hidden file without an extension.
		ext = ""
	}
	return Entry{
		Path: path,
		Name: name,
		Ext:  strings.ToLower(strings.TrimPrefix(ext, ".")),
	}
}

// Format identifies the header decoder to use for a file.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// FormatForExt maps a lowercase extension to its Format.
// The second return value is false for files that are not candidates.
func FormatForExt(ext string) (Format, bool) {
	switch ext {
	case "jpg", "jpeg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	default:
		return "", false
	}
}

// Dimensions holds the pixel size reported by an image header.
type Dimensions struct {
	Width  int
	Height int
}

// AspectRatio returns width divided by height.
func (d Dimensions) AspectRatio() float64 {
	return float64(d.Width) / float64(d.Height)
}
