package terrain

import (
	"github.com/Faultbox/terramesh/pkg/heightmap"
	"github.com/Faultbox/terramesh/pkg/math"
)

// Assemble builds the vertex attributes for every grid sample of hm and
// attaches the given triangle indices.
//
// Positions are centered on the origin: grid coordinates in [0, N) map to
// [-S/2, S/2) at S/N world units per sample, lifted by the sampled height.
// UVs reuse the planar world coordinates without normalizing them.
func Assemble(hm *heightmap.HeightMap, indices []uint32) *Mesh {
	n := hm.Size()
	count := n * n
	scale := hm.WorldSize() / float32(n)
	half := float32(n) / 2

	mesh := &Mesh{
		GridSize:  n,
		Positions: make([][3]float32, 0, count),
		Normals:   make([][3]float32, 0, count),
		UVs:       make([][2]float32, 0, count),
		Indices:   indices,
		Bounds: Bounds{
			Min: [3]float32{1e10, 1e10, 1e10},
			Max: [3]float32{-1e10, -1e10, -1e10},
		},
	}

	for y := range n {
		for x := range n {
			lx := (float32(x) - half) * scale
			ly := (float32(y) - half) * scale

			pos := [3]float32{lx, hm.Sample(x, y), ly}
			mesh.Positions = append(mesh.Positions, pos)
			mesh.UVs = append(mesh.UVs, [2]float32{lx, ly})
			mesh.Normals = append(mesh.Normals, Normal(hm, x, y))
			updateBounds(&mesh.Bounds, pos)
		}
	}

	return mesh
}

// Compact returns a copy of m holding only vertices referenced by the index
// list. Vertices keep the order of their first reference, so the result no
// longer follows the grid layout.
func (m *Mesh) Compact() *Mesh {
	remap := make(map[uint32]uint32, len(m.Indices)/2)
	out := &Mesh{
		GridSize: m.GridSize,
		Indices:  make([]uint32, len(m.Indices)),
		Bounds:   m.Bounds,
	}

	for i, idx := range m.Indices {
		newIdx, ok := remap[idx]
		if !ok {
			newIdx = uint32(len(out.Positions))
			remap[idx] = newIdx
			out.Positions = append(out.Positions, m.Positions[idx])
			out.Normals = append(out.Normals, m.Normals[idx])
			out.UVs = append(out.UVs, m.UVs[idx])
		}
		out.Indices[i] = newIdx
	}

	return out
}

// UsedVertices counts distinct vertices referenced by the index list.
func (m *Mesh) UsedVertices() int {
	seen := make([]bool, len(m.Positions))
	used := 0
	for _, idx := range m.Indices {
		if !seen[idx] {
			seen[idx] = true
			used++
		}
	}
	return used
}

// Stats reports how far the triangulation is simplified.
func (m *Mesh) Stats() Stats {
	full := 2 * (m.GridSize - 1) * (m.GridSize - 1)
	s := Stats{
		GridSize:      m.GridSize,
		Triangles:     m.TriangleCount(),
		FullTriangles: full,
		UsedVertices:  m.UsedVertices(),
	}
	if full > 0 {
		s.Reduction = 1 - float32(s.Triangles)/float32(full)
	}
	return s
}

func updateBounds(b *Bounds, p [3]float32) {
	v := math.Vec3FromArray(p)
	b.Min = math.Vec3FromArray(b.Min).Min(v).Array()
	b.Max = math.Vec3FromArray(b.Max).Max(v).Array()
}
