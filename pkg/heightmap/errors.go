package heightmap

import "errors"

// Height source errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	ErrTruncatedPixels   = errors.New("pixel data shorter than declared dimensions")
	ErrEmptyGrid         = errors.New("grid must contain at least one sample")
)
