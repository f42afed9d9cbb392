// Package imagehdr reads image dimensions from JPEG and PNG headers without
// decoding pixel data.
package imagehdr

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"wallsort/internal/wallsort"
)

// Reader implements wallsort.DimensionReader on top of the standard
// library's DecodeConfig functions. Only a prefix of the stream is consumed:
// the frame header for JPEG and the IHDR chunk for PNG.
type Reader struct{}

// NewReader returns a header reader.
func NewReader() *Reader { return &Reader{} }

// ReadDimensions decodes the header of r as the given format.
// Every failure, including a decoder panic on hostile input, is returned as an error.
func (Reader) ReadDimensions(r io.Reader, format wallsort.Format) (dims wallsort.Dimensions, err error) {
	var decode func(io.Reader) (image.Config, error)
	switch format {
	case wallsort.FormatJPEG:
		decode = jpeg.DecodeConfig
	case wallsort.FormatPNG:
		decode = png.DecodeConfig
	default:
		return wallsort.Dimensions{}, fmt.Errorf("unsupported image format: %q", format)
	}

	defer func() {
		if p := recover(); p != nil {
			dims = wallsort.Dimensions{}
			err = fmt.Errorf("decoding %s header: panic: %v", format, p)
		}
	}()

	cfg, err := decode(bufio.NewReader(r))
	if err != nil {
		return wallsort.Dimensions{}, fmt.Errorf("decoding %s header: %w", format, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return wallsort.Dimensions{}, fmt.Errorf("%w: %dx%d", wallsort.ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	return wallsort.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// Compile-time check that Reader implements wallsort.DimensionReader interface
var _ wallsort.DimensionReader = Reader{}
