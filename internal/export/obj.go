package export

import (
	"fmt"
	"io"

	"github.com/Faultbox/terramesh/pkg/terrain"
)

// WriteOBJ writes m as a Wavefront OBJ with positions, texture coordinates
// and normals sharing one index per corner.
func WriteOBJ(w io.Writer, m *terrain.Mesh) error {
	if _, err := fmt.Fprintf(w, "# terramesh grid %d, %d vertices, %d triangles\n",
		m.GridSize, m.VertexCount(), m.TriangleCount()); err != nil {
		return fmt.Errorf("writing obj header: %w", err)
	}

	for _, p := range m.Positions {
		if _, err := fmt.Fprintf(w, "v %g %g %g\n", p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("writing obj vertex: %w", err)
		}
	}
	for _, uv := range m.UVs {
		if _, err := fmt.Fprintf(w, "vt %g %g\n", uv[0], uv[1]); err != nil {
			return fmt.Errorf("writing obj uv: %w", err)
		}
	}
	for _, n := range m.Normals {
		if _, err := fmt.Fprintf(w, "vn %g %g %g\n", n[0], n[1], n[2]); err != nil {
			return fmt.Errorf("writing obj normal: %w", err)
		}
	}

	// OBJ indices are 1-based
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1
		if _, err := fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n",
			a, a, a, b, b, b, c, c, c); err != nil {
			return fmt.Errorf("writing obj face: %w", err)
		}
	}
	return nil
}
