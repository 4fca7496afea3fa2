// Package terrain turns height maps into renderer-agnostic triangle meshes.
package terrain

// Mesh holds the generated terrain ready for an external renderer.
// Vertex attributes are parallel arrays with one entry per grid sample,
// addressed by x + y*GridSize, the same layout the indices use.
type Mesh struct {
	GridSize  int
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
	Bounds    Bounds
}

// TriangleCount returns the number of triangles in the index list.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of vertices in the attribute arrays.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Bounds holds the axis-aligned bounding box of the terrain.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Stats summarizes a triangulation.
type Stats struct {
	GridSize      int
	Triangles     int
	FullTriangles int     // triangles of the unsimplified grid
	Reduction     float32 // 1 - Triangles/FullTriangles
	UsedVertices  int     // vertices referenced by at least one triangle
}
