package rtin

import "fmt"

// Builder triangulates one height map at any error threshold.
// It owns the error map and can be queried repeatedly.
type Builder struct {
	errors *ErrorMap
}

// NewBuilder computes the error map for hm.
func NewBuilder(hm Sampler) (*Builder, error) {
	errs, err := NewErrorMap(hm)
	if err != nil {
		return nil, fmt.Errorf("building error map: %w", err)
	}
	return &Builder{errors: errs}, nil
}

// NewBuilderFromErrorMap reuses a precomputed error map.
func NewBuilderFromErrorMap(errs *ErrorMap) *Builder {
	return &Builder{errors: errs}
}

// ErrorMap returns the builder's error map.
func (b *Builder) ErrorMap() *ErrorMap { return b.errors }

// GridSize returns the edge length of the grid in samples.
func (b *Builder) GridSize() int { return b.errors.gridSize }

// Indices returns the triangle list for maxError: every triangle whose
// subtree error exceeds maxError is split, all others are emitted as A, B, C.
// Output is deterministic for a given error map and threshold.
func (b *Builder) Indices(maxError float32) []uint32 {
	ib := newIndexBuilder(b.errors, maxError)
	ib.processRoots()
	return ib.indices
}

// Triangles returns how many triangles Indices would emit for maxError.
func (b *Builder) Triangles(maxError float32) int {
	ib := newIndexBuilder(b.errors, maxError)
	ib.count = true
	ib.processRoots()
	return ib.triangles
}

type indexBuilder struct {
	errors    *ErrorMap
	gridSize  int
	maxError  float32
	indices   []uint32
	count     bool
	triangles int
}

func newIndexBuilder(errs *ErrorMap, maxError float32) *indexBuilder {
	if !(maxError >= 0) {
		panic(fmt.Sprintf("rtin: max error must be non-negative, got %v", maxError))
	}
	return &indexBuilder{
		errors:   errs,
		gridSize: errs.gridSize,
		maxError: maxError,
	}
}

func (ib *indexBuilder) processRoots() {
	tile := ib.gridSize - 1
	if !ib.count {
		// At most 2*tile*tile triangles of 3 indices each.
		ib.indices = make([]uint32, 0, tile*tile*6)
	}
	ib.processTriangle(Triangle{Point{0, 0}, Point{tile, tile}, Point{tile, 0}})
	ib.processTriangle(Triangle{Point{tile, tile}, Point{0, 0}, Point{0, tile}})
}

func (ib *indexBuilder) processTriangle(t Triangle) {
	if t.LegLength() > 1 && ib.errors.At(t.Midpoint()) > ib.maxError {
		left, right := t.Children()
		ib.processTriangle(left)
		ib.processTriangle(right)
		return
	}

	ib.triangles++
	if ib.count {
		return
	}
	ib.indices = append(ib.indices,
		uint32(t.A.Offset(ib.gridSize)),
		uint32(t.B.Offset(ib.gridSize)),
		uint32(t.C.Offset(ib.gridSize)),
	)
}

// FullGridIndices returns the unsimplified triangulation: two triangles per
// grid cell, every vertex used.
func FullGridIndices(gridSize int) []uint32 {
	if gridSize < 2 {
		return nil
	}
	tile := gridSize - 1
	indices := make([]uint32, 0, tile*tile*6)
	for y := range tile {
		for x := range tile {
			i := uint32(y*gridSize + x)
			n := uint32(gridSize)
			indices = append(indices, i, i+1, i+n, i+1, i+1+n, i+n)
		}
	}
	return indices
}
