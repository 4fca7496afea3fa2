package heightmap

import "fmt"

// HeightMap pairs a Source with the grid it is sampled on and the world-space
// edge length the resulting mesh will occupy.
type HeightMap struct {
	source    Source
	size      int
	worldSize float32
}

// New creates a height map of gridSize x gridSize samples.
func New(source Source, gridSize int, worldSize float32) (*HeightMap, error) {
	if source == nil {
		return nil, fmt.Errorf("heightmap: nil source")
	}
	if gridSize < 1 {
		return nil, fmt.Errorf("%w: grid size %d", ErrEmptyGrid, gridSize)
	}
	return &HeightMap{
		source:    source,
		size:      gridSize,
		worldSize: worldSize,
	}, nil
}

// Size returns the number of samples along one edge.
func (h *HeightMap) Size() int { return h.size }

// WorldSize returns the edge length of the terrain in world units.
func (h *HeightMap) WorldSize() float32 { return h.worldSize }

// Source returns the underlying elevation source.
func (h *HeightMap) Source() Source { return h.source }

// Sample returns the elevation at (x, y).
// Coordinates outside the grid are a caller bug and panic.
func (h *HeightMap) Sample(x, y int) float32 {
	if x < 0 || y < 0 || x >= h.size || y >= h.size {
		panic(fmt.Sprintf("heightmap: sample (%d, %d) outside %d grid", x, y, h.size))
	}
	return h.source.SampleHeight(x, y)
}

// AltitudeRange returns the minimum and maximum sampled elevation.
func (h *HeightMap) AltitudeRange() (min, max float32) {
	min = h.Sample(0, 0)
	max = min
	for y := range h.size {
		for x := range h.size {
			v := h.Sample(x, y)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}
