// Package export writes terrain meshes and error maps to files.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/terramesh/pkg/terrain"
)

// Mesh output formats.
const (
	FormatJSON   = "json"
	FormatOBJ    = "obj"
	FormatBinary = "bin"
)

// ErrUnknownFormat is returned for an output format with no writer.
var ErrUnknownFormat = errors.New("unknown output format")

// Write encodes m to w in the named format.
func Write(w io.Writer, m *terrain.Mesh, format string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, m)
	case FormatOBJ:
		return WriteOBJ(w, m)
	case FormatBinary:
		return WriteBinary(w, m)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile encodes m into a new file at path.
func WriteFile(path string, m *terrain.Mesh, format string) error {
	return writeFile(path, func(w io.Writer) error {
		return Write(w, m, format)
	})
}

func writeFile(path string, encode func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing output: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := encode(bw); err != nil {
		return err
	}
	return bw.Flush()
}
