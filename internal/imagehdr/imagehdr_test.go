package imagehdr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"

	"wallsort/internal/testutil"
	"wallsort/internal/wallsort"
)

func TestReader_ReadDimensions(t *testing.T) {
	tests := []struct {
		name   string
		data   func(t *testing.T) []byte
		format wallsort.Format
		want   wallsort.Dimensions
	}{
		{
			name:   "landscape png",
			data:   func(t *testing.T) []byte { return testutil.PNGBytes(t, 64, 32) },
			format: wallsort.FormatPNG,
			want:   wallsort.Dimensions{Width: 64, Height: 32},
		},
		{
			name:   "portrait png",
			data:   func(t *testing.T) []byte { return testutil.PNGBytes(t, 9, 16) },
			format: wallsort.FormatPNG,
			want:   wallsort.Dimensions{Width: 9, Height: 16},
		},
		{
			name:   "landscape jpeg",
			data:   func(t *testing.T) []byte { return testutil.JPEGBytes(t, 40, 20) },
			format: wallsort.FormatJPEG,
			want:   wallsort.Dimensions{Width: 40, Height: 20},
		},
		{
			name:   "square jpeg",
			data:   func(t *testing.T) []byte { return testutil.JPEGBytes(t, 17, 17) },
			format: wallsort.FormatJPEG,
			want:   wallsort.Dimensions{Width: 17, Height: 17},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewReader().ReadDimensions(bytes.NewReader(tt.data(t)), tt.format)
			if err != nil {
				t.Fatalf("ReadDimensions() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadDimensions() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReader_ReadDimensions_HeaderOnly(t *testing.T) {
	// Signature (8 bytes) plus the IHDR chunk (4 length + 4 type + 13 data + 4 CRC).
	full := testutil.PNGBytes(t, 300, 100)
	header := full[:8+25]

	got, err := NewReader().ReadDimensions(bytes.NewReader(header), wallsort.FormatPNG)
	if err != nil {
		t.Fatalf("ReadDimensions() on header-only png error = %v", err)
	}
	if got.Width != 300 || got.Height != 100 {
		t.Errorf("ReadDimensions() = %+v, want 300x100", got)
	}
}

func TestReader_ReadDimensions_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   func(t *testing.T) []byte
		format wallsort.Format
	}{
		{
			name:   "zero-byte jpeg",
			data:   func(t *testing.T) []byte { return nil },
			format: wallsort.FormatJPEG,
		},
		{
			name:   "zero-byte png",
			data:   func(t *testing.T) []byte { return nil },
			format: wallsort.FormatPNG,
		},
		{
			name:   "truncated jpeg",
			data:   func(t *testing.T) []byte { return testutil.JPEGBytes(t, 40, 20)[:12] },
			format: wallsort.FormatJPEG,
		},
		{
			name:   "truncated png",
			data:   func(t *testing.T) []byte { return testutil.PNGBytes(t, 40, 20)[:20] },
			format: wallsort.FormatPNG,
		},
		{
			name:   "png bytes with jpeg extension",
			data:   func(t *testing.T) []byte { return testutil.PNGBytes(t, 40, 20) },
			format: wallsort.FormatJPEG,
		},
		{
			name:   "jpeg bytes with png extension",
			data:   func(t *testing.T) []byte { return testutil.JPEGBytes(t, 40, 20) },
			format: wallsort.FormatPNG,
		},
		{
			name:   "text file",
			data:   func(t *testing.T) []byte { return []byte("not an image at all") },
			format: wallsort.FormatJPEG,
		},
		{
			name:   "unknown format",
			data:   func(t *testing.T) []byte { return testutil.PNGBytes(t, 4, 4) },
			format: wallsort.Format("gif"),
		},
		{
			name:   "png with zero height",
			data:   func(t *testing.T) []byte { return pngHeader(40, 0) },
			format: wallsort.FormatPNG,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewReader().ReadDimensions(bytes.NewReader(tt.data(t)), tt.format)
			if err == nil {
				t.Fatalf("ReadDimensions() = %+v, want error", got)
			}
			if got != (wallsort.Dimensions{}) {
				t.Errorf("ReadDimensions() = %+v on error, want zero value", got)
			}
		})
	}
}

func TestReader_ReadDimensions_ReaderError(t *testing.T) {
	_, err := NewReader().ReadDimensions(errReader{}, wallsort.FormatPNG)
	if !errors.Is(err, errBoom) {
		t.Errorf("ReadDimensions() error = %v, want wrapped %v", err, errBoom)
	}
}

var errBoom = errors.New("boom")

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errBoom }

// pngHeader builds a signature and a valid IHDR chunk for an 8-bit RGBA image.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:4], w)
	binary.BigEndian.PutUint32(data[4:8], h)
	data[8] = 8 // bit depth
	data[9] = 6 // color type: truecolor with alpha

	binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	crc := crc32.NewIEEE()
	crc.Write([]byte("IHDR"))
	crc.Write(data)
	buf.WriteString("IHDR")
	buf.Write(data)
	binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}
