// Package heightmap provides elevation sources and the bounds-checked grid
// that the RTIN triangulation samples from.
package heightmap

import (
	"fmt"
	"math/rand/v2"
)

// Source samples elevation at a grid coordinate.
// Callers only pass coordinates inside the grid the source was built for.
type Source interface {
	SampleHeight(x, y int) float32
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(x, y int) float32

// SampleHeight implements Source.
func (f SourceFunc) SampleHeight(x, y int) float32 {
	return f(x, y)
}

// RandomSource returns an uncorrelated pseudo-random elevation on every call.
// It only exists to exercise the pipeline; output is not reproducible.
type RandomSource struct{}

// SampleHeight implements Source.
func (RandomSource) SampleHeight(_, _ int) float32 {
	return float32(rand.IntN(4)-2) / 100
}

// GridSource serves heights from an in-memory row-major slice.
type GridSource struct {
	Width int
	Data  []float32
}

// NewGridSource wraps data laid out as rows of width elements.
func NewGridSource(width int, data []float32) (*GridSource, error) {
	if width <= 0 || len(data)%width != 0 {
		return nil, fmt.Errorf("%w: %d values do not form rows of %d", ErrEmptyGrid, len(data), width)
	}
	return &GridSource{Width: width, Data: data}, nil
}

// SampleHeight implements Source.
func (g *GridSource) SampleHeight(x, y int) float32 {
	return g.Data[y*g.Width+x]
}
