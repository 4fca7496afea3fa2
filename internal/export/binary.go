package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/terramesh/pkg/terrain"
)

// Binary mesh errors.
var (
	ErrInvalidMeshMagic       = errors.New("invalid mesh magic: expected 'TMSH'")
	ErrUnsupportedMeshVersion = errors.New("unsupported mesh version")
	ErrTruncatedMeshData      = errors.New("truncated mesh data")
)

const (
	meshMagic        = "TMSH"
	meshVersionMajor = 1
	meshVersionMinor = 0
)

// binaryHeader follows the 4-byte magic. Version is stored as [minor, major].
type binaryHeader struct {
	VersionMinor uint8
	VersionMajor uint8
	_            uint16
	GridSize     uint32
	VertexCount  uint32
	IndexCount   uint32
	BoundsMin    [3]float32
	BoundsMax    [3]float32
}

// WriteBinary writes m in the little-endian TMSH layout: magic, header,
// positions, normals, uvs, indices.
func WriteBinary(w io.Writer, m *terrain.Mesh) error {
	if _, err := io.WriteString(w, meshMagic); err != nil {
		return fmt.Errorf("writing mesh magic: %w", err)
	}

	hdr := binaryHeader{
		VersionMinor: meshVersionMinor,
		VersionMajor: meshVersionMajor,
		GridSize:     uint32(m.GridSize),
		VertexCount:  uint32(len(m.Positions)),
		IndexCount:   uint32(len(m.Indices)),
		BoundsMin:    m.Bounds.Min,
		BoundsMax:    m.Bounds.Max,
	}
	sections := []struct {
		name string
		data any
	}{
		{"header", &hdr},
		{"positions", m.Positions},
		{"normals", m.Normals},
		{"uvs", m.UVs},
		{"indices", m.Indices},
	}
	for _, s := range sections {
		if err := binary.Write(w, binary.LittleEndian, s.data); err != nil {
			return fmt.Errorf("writing mesh %s: %w", s.name, err)
		}
	}
	return nil
}

// ReadBinary parses a mesh written by WriteBinary.
func ReadBinary(data []byte) (*terrain.Mesh, error) {
	if len(data) < 4 {
		return nil, ErrTruncatedMeshData
	}
	if string(data[0:4]) != meshMagic {
		return nil, ErrInvalidMeshMagic
	}

	r := bytes.NewReader(data[4:])
	var hdr binaryHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedMeshData)
	}
	if hdr.VersionMajor != meshVersionMajor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedMeshVersion, hdr.VersionMajor, hdr.VersionMinor)
	}

	// Reject counts the remaining bytes cannot hold before allocating.
	vertexBytes := uint64(hdr.VertexCount) * (12 + 12 + 8)
	if vertexBytes+uint64(hdr.IndexCount)*4 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d vertices, %d indices", ErrTruncatedMeshData, hdr.VertexCount, hdr.IndexCount)
	}

	m := &terrain.Mesh{
		GridSize:  int(hdr.GridSize),
		Positions: make([][3]float32, hdr.VertexCount),
		Normals:   make([][3]float32, hdr.VertexCount),
		UVs:       make([][2]float32, hdr.VertexCount),
		Indices:   make([]uint32, hdr.IndexCount),
		Bounds:    terrain.Bounds{Min: hdr.BoundsMin, Max: hdr.BoundsMax},
	}
	for _, dst := range []any{m.Positions, m.Normals, m.UVs, m.Indices} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedMeshData, err)
		}
	}
	return m, nil
}
