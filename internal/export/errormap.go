package export

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/Faultbox/terramesh/pkg/rtin"
)

// ErrorMapImage maps the error map onto a 16-bit grayscale image, scaled
// so the largest error is white. A flat map renders black.
func ErrorMapImage(e *rtin.ErrorMap) *image.Gray16 {
	n := e.GridSize()
	img := image.NewGray16(image.Rect(0, 0, n, n))

	peak := e.Max()
	if peak <= 0 {
		return img
	}
	for y := range n {
		for x := range n {
			v := e.At(rtin.Point{X: x, Y: y}) / peak
			img.SetGray16(x, y, color.Gray16{Y: uint16(v*0xFFFF + 0.5)})
		}
	}
	return img
}

// WriteErrorMapPNG encodes the error map as a 16-bit grayscale PNG.
func WriteErrorMapPNG(w io.Writer, e *rtin.ErrorMap) error {
	return png.Encode(w, ErrorMapImage(e))
}

// WriteErrorMapFile writes the error map PNG to path.
func WriteErrorMapFile(path string, e *rtin.ErrorMap) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteErrorMapPNG(w, e)
	})
}
