package export

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/fogleman/gg"

	"github.com/Faultbox/terramesh/pkg/terrain"
)

// WireframeOptions controls RenderWireframe.
type WireframeOptions struct {
	Size      int // longest image edge in pixels
	LineWidth float64
	Margin    float64
}

// DefaultWireframeOptions returns a 1024 pixel render with hairline strokes.
func DefaultWireframeOptions() WireframeOptions {
	return WireframeOptions{Size: 1024, LineWidth: 1, Margin: 8}
}

// RenderWireframe draws the triangulation seen from above. The mesh x/z
// extent is fitted into the image; strokes are tinted from low (blue) to
// high (brown) by the triangle's mean height.
func RenderWireframe(m *terrain.Mesh, opts WireframeOptions) image.Image {
	if opts.Size <= 0 {
		opts.Size = DefaultWireframeOptions().Size
	}

	minX, maxX := float64(m.Bounds.Min[0]), float64(m.Bounds.Max[0])
	minZ, maxZ := float64(m.Bounds.Min[2]), float64(m.Bounds.Max[2])
	minH, maxH := float64(m.Bounds.Min[1]), float64(m.Bounds.Max[1])
	spanX, spanZ := maxX-minX, maxZ-minZ

	width, height := opts.Size, opts.Size
	switch {
	case spanX > spanZ && spanX > 0:
		height = max(1, int(float64(opts.Size)*spanZ/spanX))
	case spanZ > spanX && spanZ > 0:
		width = max(1, int(float64(opts.Size)*spanX/spanZ))
	}

	ctx := gg.NewContext(width, height)
	ctx.DrawRectangle(0, 0, float64(width), float64(height))
	ctx.SetRGBA(1, 1, 1, 1)
	ctx.Fill()

	scale := 0.0
	if span := max(spanX, spanZ); span > 0 {
		scale = (float64(max(width, height)) - 2*opts.Margin) / span
	}
	project := func(p [3]float32) (float64, float64) {
		return opts.Margin + (float64(p[0])-minX)*scale, opts.Margin + (float64(p[2])-minZ)*scale
	}

	ctx.SetLineWidth(opts.LineWidth)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		p0 := m.Positions[m.Indices[i]]
		p1 := m.Positions[m.Indices[i+1]]
		p2 := m.Positions[m.Indices[i+2]]

		x0, y0 := project(p0)
		x1, y1 := project(p1)
		x2, y2 := project(p2)

		t := 0.0
		if maxH > minH {
			t = (float64(p0[1]+p1[1]+p2[1])/3 - minH) / (maxH - minH)
		}

		ctx.Push()
		ctx.MoveTo(x0, y0)
		ctx.LineTo(x1, y1)
		ctx.LineTo(x2, y2)
		ctx.ClosePath()
		ctx.SetStrokeStyle(gg.NewSolidPattern(heightColor(t)))
		ctx.Stroke()
		ctx.Pop()
	}

	return ctx.Image()
}

// WriteWireframePNG renders m and encodes it as PNG.
func WriteWireframePNG(w io.Writer, m *terrain.Mesh, opts WireframeOptions) error {
	return png.Encode(w, RenderWireframe(m, opts))
}

// WriteWireframeFile renders m into a PNG file at path.
func WriteWireframeFile(path string, m *terrain.Mesh, opts WireframeOptions) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteWireframePNG(w, m, opts)
	})
}

func heightColor(t float64) color.RGBA {
	low := [3]float64{30, 90, 200}
	high := [3]float64{120, 70, 30}
	lerp := func(i int) uint8 { return uint8(low[i] + (high[i]-low[i])*t) }
	return color.RGBA{R: lerp(0), G: lerp(1), B: lerp(2), A: 255}
}
