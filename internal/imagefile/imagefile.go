// Package imagefile decodes heightmap image files into pixel buffers.
package imagefile

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/Faultbox/terramesh/pkg/heightmap"
)

// Load reads and decodes an image file.
func Load(path string) (heightmap.PixelBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return heightmap.PixelBuffer{}, fmt.Errorf("reading image: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode decodes image bytes. TGA has no magic number, so it is selected by
// the ".tga" extension; everything else goes through image.Decode.
func Decode(data []byte, ext string) (heightmap.PixelBuffer, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(ext, ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return heightmap.PixelBuffer{}, fmt.Errorf("decoding image: %w", err)
	}
	return FromImage(img), nil
}

// FromImage converts a decoded image to the pixel buffer the height sources
// read. 8-bit gray becomes FormatR8, 16-bit gray becomes FormatR16LE and any
// other model is flattened to 4-byte FormatSRGB8 pixels.
func FromImage(img image.Image) heightmap.PixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		data := make([]byte, 0, w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.PixOffset(b.Min.X, y)
			data = append(data, src.Pix[row:row+w]...)
		}
		return heightmap.PixelBuffer{Width: w, Height: h, Format: heightmap.FormatR8, Data: data}

	case *image.Gray16:
		// image.Gray16 is big-endian.
		data := make([]byte, 0, w*h*2)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.PixOffset(b.Min.X, y)
			for x := 0; x < w; x++ {
				hi, lo := src.Pix[row+2*x], src.Pix[row+2*x+1]
				data = append(data, lo, hi)
			}
		}
		return heightmap.PixelBuffer{Width: w, Height: h, Format: heightmap.FormatR16LE, Data: data}
	}

	// A sub-image can share the parent's Pix past its last row.
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != w*4 || b.Min != (image.Point{}) || len(nrgba.Pix) != w*h*4 {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	return heightmap.PixelBuffer{Width: w, Height: h, Format: heightmap.FormatSRGB8, Data: nrgba.Pix}
}
