// Package rtin builds Right-Triangulated Irregular Network meshes.
//
// A (2^k+1)-square grid is covered by two right triangles split along the
// diagonal from (0, 0) to (T, T), T = N-1. Each right triangle splits into
// two halves by joining its right-angle vertex to the midpoint of its
// hypotenuse, down to unit triangles. The resulting binary tree is never
// materialized: every triangle has an integer id whose vertices are recovered
// from its bits. Below the leading marker bit, the lowest bit picks the root
// and each higher bit picks a child on the way down, so ids of one bit length
// form one level and larger ids are never coarser than smaller ones.
package rtin

import (
	"errors"
	"fmt"
)

// ErrInvalidGridSize reports a grid whose tile size is not a power of two.
var ErrInvalidGridSize = errors.New("grid size must be 2^k+1")

// Point is a grid coordinate.
type Point struct {
	X, Y int
}

// Midpoint returns the integer midpoint of a and b.
func Midpoint(a, b Point) Point {
	return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// Offset returns the row-major index of p in a grid of the given size.
func (p Point) Offset(gridSize int) int {
	return p.Y*gridSize + p.X
}

// Triangle is a right isoceles triangle with the right angle at C and the
// hypotenuse from A to B.
type Triangle struct {
	A, B, C Point
}

// Midpoint returns the midpoint of the hypotenuse, the vertex a split adds.
func (t Triangle) Midpoint() Point {
	return Midpoint(t.A, t.B)
}

// Children returns the two halves produced by splitting t.
func (t Triangle) Children() (Triangle, Triangle) {
	m := t.Midpoint()
	return Triangle{t.C, t.A, m}, Triangle{t.B, t.C, m}
}

// LegLength returns the Manhattan length of the leg from A to C.
func (t Triangle) LegLength() int {
	return abs(t.A.X-t.C.X) + abs(t.A.Y-t.C.Y)
}

// ValidateGridSize checks that gridSize-1 is a power of two.
func ValidateGridSize(gridSize int) error {
	tile := gridSize - 1
	if tile < 1 || tile&(tile-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidGridSize, gridSize)
	}
	return nil
}

// FitGridSize returns the largest valid grid size not exceeding n, or 0 if
// n < 2.
func FitGridSize(n int) int {
	if n < 2 {
		return 0
	}
	tile := 1
	for tile*2 <= n-1 {
		tile *= 2
	}
	return tile + 1
}

// SplittableCount returns how many triangles of the tree have a hypotenuse
// midpoint on the grid. Their ids run from 2 to SplittableCount(n)+1; the
// last tile*tile of them form the finest level.
func SplittableCount(gridSize int) int {
	tile := gridSize - 1
	return tile*tile*2 - 2
}

// TriangleFromID reconstructs the triangle with the given id.
//
// The lowest bit seeds one of the two roots (odd: hypotenuse (0,0)-(T,T) with
// the right angle at (T,0); even: (T,T)-(0,0) with the right angle at (0,T)).
// Each following bit descends one level: 1 takes the (C, A, M) half and 0 the
// (B, C, M) half.
func TriangleFromID(id, gridSize int) Triangle {
	tile := gridSize - 1
	var a, b, c Point

	if id&1 == 1 {
		b = Point{tile, tile}
		c = Point{tile, 0}
	} else {
		a = Point{tile, tile}
		c = Point{0, tile}
	}

	for id/2 > 1 {
		id /= 2
		m := Midpoint(a, b)
		if id&1 == 1 {
			b = a
			a = c
		} else {
			a = b
			b = c
		}
		c = m
	}

	return Triangle{a, b, c}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
