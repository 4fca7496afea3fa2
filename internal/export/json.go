package export

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/Faultbox/terramesh/pkg/terrain"
)

var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

type jsonBounds struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

type jsonMesh struct {
	GridSize  int          `json:"grid_size"`
	Bounds    jsonBounds   `json:"bounds"`
	Positions [][3]float32 `json:"positions"`
	Normals   [][3]float32 `json:"normals"`
	UVs       [][2]float32 `json:"uvs"`
	Indices   []uint32     `json:"indices"`
}

// WriteJSON writes m as a single JSON object.
func WriteJSON(w io.Writer, m *terrain.Mesh) error {
	doc := jsonMesh{
		GridSize:  m.GridSize,
		Bounds:    jsonBounds{Min: m.Bounds.Min, Max: m.Bounds.Max},
		Positions: m.Positions,
		Normals:   m.Normals,
		UVs:       m.UVs,
		Indices:   m.Indices,
	}
	if err := json.NewEncoder(w).Encode(&doc); err != nil {
		return fmt.Errorf("encoding json mesh: %w", err)
	}
	return nil
}

// ReadJSON decodes a mesh written by WriteJSON.
func ReadJSON(r io.Reader) (*terrain.Mesh, error) {
	var doc jsonMesh
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding json mesh: %w", err)
	}
	return &terrain.Mesh{
		GridSize:  doc.GridSize,
		Positions: doc.Positions,
		Normals:   doc.Normals,
		UVs:       doc.UVs,
		Indices:   doc.Indices,
		Bounds:    terrain.Bounds{Min: doc.Bounds.Min, Max: doc.Bounds.Max},
	}, nil
}
