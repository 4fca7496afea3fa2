package heightmap

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Format identifies how elevation is encoded in a pixel.
type Format uint8

// Supported pixel encodings.
const (
	FormatUnknown Format = iota
	FormatSRGB8          // 8-bit gamma encoded channel, first byte of the pixel
	FormatR8             // 8-bit linear channel
	FormatR16LE          // 16-bit little-endian channel
)

// String returns a human-readable format name.
func (f Format) String() string {
	switch f {
	case FormatSRGB8:
		return "srgb8"
	case FormatR8:
		return "r8"
	case FormatR16LE:
		return "r16le"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// channelBytes returns the bytes one elevation sample occupies.
func (f Format) channelBytes() int {
	switch f {
	case FormatSRGB8, FormatR8:
		return 1
	case FormatR16LE:
		return 2
	default:
		return 0
	}
}

// PixelBuffer is a decoded rectangular image.
// Data must not be modified while a source built from it is in use.
type PixelBuffer struct {
	Width  int
	Height int
	Format Format
	Data   []byte
}

// BytesPerPixel derives the pixel stride from the buffer length.
func (b PixelBuffer) BytesPerPixel() int {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return len(b.Data) / (b.Width * b.Height)
}

// decodeFunc turns the bytes of one pixel into an elevation.
type decodeFunc func(px []byte) float32

// ImageOption configures an ImageSource.
type ImageOption func(*ImageSource)

// WithLegacyRowStride makes rows advance by the image height instead of its
// width. Older heightmap fixtures were generated this way; the two layouts
// only agree for square images.
func WithLegacyRowStride(legacy bool) ImageOption {
	return func(s *ImageSource) {
		s.legacyStride = legacy
	}
}

// ImageSource samples elevation from a decoded pixel buffer.
type ImageSource struct {
	data          []byte
	width         int
	height        int
	stride        int
	bytesPerPixel int
	legacyStride  bool
	decode        decodeFunc
}

// NewImageSource resolves the decoder for the buffer's format once, so the
// per-sample path never switches on the format.
func NewImageSource(buf PixelBuffer, opts ...ImageOption) (*ImageSource, error) {
	decode, err := decoderFor(buf.Format)
	if err != nil {
		return nil, err
	}
	if buf.Width <= 0 || buf.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d image", ErrEmptyGrid, buf.Width, buf.Height)
	}

	bpp := buf.BytesPerPixel()
	if bpp < buf.Format.channelBytes() {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d %s", ErrTruncatedPixels,
			len(buf.Data), buf.Width, buf.Height, buf.Format)
	}

	s := &ImageSource{
		data:          buf.Data,
		width:         buf.Width,
		height:        buf.Height,
		bytesPerPixel: bpp,
		decode:        decode,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stride = s.width
	if s.legacyStride {
		s.stride = s.height
	}
	return s, nil
}

func decoderFor(f Format) (decodeFunc, error) {
	switch f {
	case FormatSRGB8:
		return decodeSRGB8, nil
	case FormatR8:
		return decodeR8, nil
	case FormatR16LE:
		return decodeR16LE, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// Width returns the image width in pixels.
func (s *ImageSource) Width() int { return s.width }

// Height returns the image height in pixels.
func (s *ImageSource) Height() int { return s.height }

// SampleHeight implements Source.
func (s *ImageSource) SampleHeight(x, y int) float32 {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		panic(fmt.Sprintf("heightmap: sample (%d, %d) outside %dx%d image", x, y, s.width, s.height))
	}
	offset := (x + y*s.stride) * s.bytesPerPixel
	return s.decode(s.data[offset : offset+s.bytesPerPixel])
}

func decodeSRGB8(px []byte) float32 {
	return SRGBToLinear(float32(px[0]) / 255)
}

// 8-bit values are divided by 512, not 255: existing terrain was tuned
// against that scale.
func decodeR8(px []byte) float32 {
	return float32(px[0]) / 512
}

func decodeR16LE(px []byte) float32 {
	v := uint16(px[0]) | uint16(px[1])<<8
	return float32(v) / 131072
}

// SRGBToLinear converts a gamma-encoded channel in [0, 1] to linear light.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}
