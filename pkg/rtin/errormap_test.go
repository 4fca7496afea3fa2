package rtin

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Faultbox/terramesh/pkg/heightmap"
)

// fixtureHeights is a 3x3 row-major grid with a hand-checked triangulation.
var fixtureHeights = []float32{0, 1, 1, 2, 0, 3, 0, 0, 0}

func newGridMap(t testing.TB, size int, data []float32) *heightmap.HeightMap {
	t.Helper()
	src, err := heightmap.NewGridSource(size, data)
	if err != nil {
		t.Fatalf("NewGridSource failed: %v", err)
	}
	hm, err := heightmap.New(src, size, 1)
	if err != nil {
		t.Fatalf("heightmap.New failed: %v", err)
	}
	return hm
}

func newNoiseMap(t testing.TB, size int, seed int64) *heightmap.HeightMap {
	t.Helper()
	cfg := heightmap.DefaultNoiseConfig()
	cfg.Seed = seed
	cfg.Frequency = 0.13
	hm, err := heightmap.New(heightmap.NewPerlinSource(cfg), size, 10)
	if err != nil {
		t.Fatalf("heightmap.New failed: %v", err)
	}
	return hm
}

func TestNewErrorMap_SmallDataset(t *testing.T) {
	hm := newGridMap(t, 3, fixtureHeights)

	em, err := NewErrorMap(hm)
	if err != nil {
		t.Fatalf("NewErrorMap failed: %v", err)
	}

	want := []float32{0, 0.5, 0, 2, 2.5, 2.5, 0, 0, 0}
	got := em.Values()
	if len(got) != len(want) {
		t.Fatalf("expected %d errors, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("error[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if em.At(Point{1, 1}) != 2.5 {
		t.Errorf("At(1,1) = %v, want 2.5", em.At(Point{1, 1}))
	}
	if em.Max() != 2.5 {
		t.Errorf("Max = %v, want 2.5", em.Max())
	}
}

func TestNewErrorMap_InvalidGridSize(t *testing.T) {
	for _, n := range []int{1, 4, 6} {
		hm := newGridMap(t, n, make([]float32, n*n))
		if _, err := NewErrorMap(hm); !errors.Is(err, ErrInvalidGridSize) {
			t.Errorf("size %d: expected ErrInvalidGridSize, got %v", n, err)
		}
	}
}

func TestNewErrorMap_FlatTerrain(t *testing.T) {
	hm := newGridMap(t, 9, make([]float32, 81))
	em, err := NewErrorMap(hm)
	if err != nil {
		t.Fatalf("NewErrorMap failed: %v", err)
	}
	for i, v := range em.Values() {
		if v != 0 {
			t.Fatalf("flat terrain error[%d] = %v, want 0", i, v)
		}
	}
}

// collapseError is the direct error of replacing triangle tri by its
// hypotenuse, ignoring its subtree.
func collapseError(hm Sampler, tri Triangle) float32 {
	m := tri.Midpoint()
	interpolated := (hm.Sample(tri.A.X, tri.A.Y) + hm.Sample(tri.B.X, tri.B.Y)) / 2
	return float32(math.Abs(float64(interpolated - hm.Sample(m.X, m.Y))))
}

// checkDominance walks the subtree of tri and returns the largest direct
// collapse error in it, failing if the stored error at tri's midpoint is lower.
func checkDominance(t *testing.T, hm Sampler, em *ErrorMap, tri Triangle) float32 {
	worst := collapseError(hm, tri)

	first, second := tri.Children()
	for _, child := range []Triangle{first, second} {
		if child.LegLength() > 1 {
			worst = max(worst, checkDominance(t, hm, em, child))
		}
	}

	if stored := em.At(tri.Midpoint()); stored < worst {
		t.Errorf("triangle %v: stored error %v below subtree error %v", tri, stored, worst)
	}
	return worst
}

func TestNewErrorMap_Dominance(t *testing.T) {
	for _, n := range []int{5, 17, 33} {
		hm := newNoiseMap(t, n, int64(n))
		em, err := NewErrorMap(hm)
		if err != nil {
			t.Fatalf("NewErrorMap failed: %v", err)
		}
		checkDominance(t, hm, em, TriangleFromID(2, n))
		checkDominance(t, hm, em, TriangleFromID(3, n))
	}
}

// newRandomMap fills a grid with uncorrelated heights in [0, 1).
func newRandomMap(t testing.TB, size int, seed uint64) *heightmap.HeightMap {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]float32, size*size)
	for i := range data {
		data[i] = rng.Float32()
	}
	return newGridMap(t, size, data)
}

// subtreeErrors computes, for every cell, the largest collapse error over
// the triangles whose hypotenuse midpoint is that cell and over everything
// below them. Cells that are no triangle's midpoint stay zero.
func subtreeErrors(hm Sampler) []float32 {
	n := hm.Size()
	byMidpoint := make(map[Point][]Triangle)
	for id := 2; id < SplittableCount(n)+2; id++ {
		tri := TriangleFromID(id, n)
		m := tri.Midpoint()
		byMidpoint[m] = append(byMidpoint[m], tri)
	}

	memo := make(map[Point]float32)
	var errorAt func(m Point) float32
	errorAt = func(m Point) float32 {
		if v, ok := memo[m]; ok {
			return v
		}
		var worst float32
		for _, tri := range byMidpoint[m] {
			worst = max(worst, collapseError(hm, tri))
			first, second := tri.Children()
			for _, child := range []Triangle{first, second} {
				if child.LegLength() > 1 {
					worst = max(worst, errorAt(child.Midpoint()))
				}
			}
		}
		memo[m] = worst
		return worst
	}

	out := make([]float32, n*n)
	for y := range n {
		for x := range n {
			out[y*n+x] = errorAt(Point{x, y})
		}
	}
	return out
}

// The error at a cell is exactly the subtree maximum: no value comes from a
// triangle below the finest splittable level, whose midpoint is not a grid
// point.
func TestNewErrorMap_ExactSubtreeMaximum(t *testing.T) {
	for _, n := range []int{3, 5, 9, 17, 33} {
		for seed := uint64(1); seed <= 4; seed++ {
			hm := newRandomMap(t, n, seed)
			em, err := NewErrorMap(hm)
			if err != nil {
				t.Fatalf("NewErrorMap failed: %v", err)
			}

			want := subtreeErrors(hm)
			for i, got := range em.Values() {
				if got != want[i] {
					t.Fatalf("n=%d seed=%d: error[%d] = %v, want %v", n, seed, i, got, want[i])
				}
			}
		}
	}
}

// hashedHeights is a deterministic pseudo-random grid in [0, 1).
func hashedHeights(size, k int) []float32 {
	data := make([]float32, size*size)
	for y := range size {
		for x := range size {
			data[y*size+x] = float32(((x*73856093)^(y*19349663)^(k*83492791))%1000) / 1000
		}
	}
	return data
}

// The error map only visits triangles with an on-grid midpoint. Visiting one
// more id past the last level would fold the error of a half-cell triangle,
// measured at a truncated midpoint, into the ancestors sharing that cell.
func TestNewErrorMap_StopsAtFinestLevel(t *testing.T) {
	tests := []struct {
		size, k int
		cell    Point
		want    float32
	}{
		{5, 19, Point{0, 2}, 0.408},
		{17, 112, Point{3, 9}, 0.13},
	}

	for _, tt := range tests {
		hm := newGridMap(t, tt.size, hashedHeights(tt.size, tt.k))
		em, err := NewErrorMap(hm)
		if err != nil {
			t.Fatalf("NewErrorMap failed: %v", err)
		}
		if got := em.At(tt.cell); math.Abs(float64(got-tt.want)) > 1e-4 {
			t.Errorf("n=%d: error at %v = %v, want %v", tt.size, tt.cell, got, tt.want)
		}
		want := subtreeErrors(hm)
		for i, got := range em.Values() {
			if got != want[i] {
				t.Fatalf("n=%d: error[%d] = %v, want %v", tt.size, i, got, want[i])
			}
		}
	}
}

func TestNewErrorMap_Deterministic(t *testing.T) {
	a, _ := NewErrorMap(newNoiseMap(t, 33, 7))
	b, _ := NewErrorMap(newNoiseMap(t, 33, 7))

	for i := range a.Values() {
		if a.Values()[i] != b.Values()[i] {
			t.Fatalf("error maps differ at %d", i)
		}
	}
}
