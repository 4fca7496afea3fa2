package rtin

import (
	"github.com/chewxy/math32"
)

// Sampler is the height grid an ErrorMap is built from.
type Sampler interface {
	Size() int
	Sample(x, y int) float32
}

// ErrorMap holds, for every grid cell, the largest vertical error introduced
// by collapsing any triangle subtree whose hypotenuse midpoint is that cell.
type ErrorMap struct {
	data     []float32
	gridSize int
}

// NewErrorMap computes the error map of hm bottom-up, finest level first, so
// each triangle can fold in the already final errors of its two children.
func NewErrorMap(hm Sampler) (*ErrorMap, error) {
	gridSize := hm.Size()
	if err := ValidateGridSize(gridSize); err != nil {
		return nil, err
	}

	tile := gridSize - 1
	errs := make([]float32, gridSize*gridSize)

	numSmallest := tile * tile
	numTriangles := SplittableCount(gridSize)
	lastLevel := numTriangles - numSmallest

	for i := numTriangles - 1; i >= 0; i-- {
		t := TriangleFromID(i+2, gridSize)
		m := t.Midpoint()
		mi := m.Offset(gridSize)

		interpolated := (hm.Sample(t.A.X, t.A.Y) + hm.Sample(t.B.X, t.B.Y)) / 2
		own := math32.Abs(interpolated - hm.Sample(m.X, m.Y))

		if i >= lastLevel {
			errs[mi] = own
			continue
		}

		left := errs[Midpoint(t.A, t.C).Offset(gridSize)]
		right := errs[Midpoint(t.B, t.C).Offset(gridSize)]
		errs[mi] = math32.Max(math32.Max(errs[mi], own), math32.Max(left, right))
	}

	return &ErrorMap{data: errs, gridSize: gridSize}, nil
}

// GridSize returns the number of cells along one edge.
func (e *ErrorMap) GridSize() int { return e.gridSize }

// At returns the stored error at p.
func (e *ErrorMap) At(p Point) float32 {
	return e.data[p.Offset(e.gridSize)]
}

// Values returns the errors addressed by y*gridSize + x.
// The slice is shared and must not be modified.
func (e *ErrorMap) Values() []float32 {
	return e.data
}

// Max returns the largest stored error, the threshold at or above which the
// mesh collapses to the two root triangles.
func (e *ErrorMap) Max() float32 {
	var m float32
	for _, v := range e.data {
		m = math32.Max(m, v)
	}
	return m
}
