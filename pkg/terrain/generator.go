package terrain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terramesh/pkg/heightmap"
	"github.com/Faultbox/terramesh/pkg/rtin"
)

// Default generation parameters.
const (
	DefaultWorldSize float32 = 5.0
	DefaultMaxError  float32 = 0.01
)

// Generator runs the height map to mesh pipeline.
// A Generator holds no per-call state and may be shared between goroutines.
type Generator struct {
	log       *zap.Logger
	worldSize float32
	maxError  float32
	fitGrid   bool
	gridSize  int
	legacy    bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for timing and summary output.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log
		}
	}
}

// WithWorldSize sets the edge length of the mesh in world units.
func WithWorldSize(size float32) Option {
	return func(g *Generator) { g.worldSize = size }
}

// WithMaxError sets the simplification threshold.
func WithMaxError(maxError float32) Option {
	return func(g *Generator) { g.maxError = maxError }
}

// WithFitGrid snaps image-derived grid sizes down to the nearest 2^k+1
// instead of rejecting them.
func WithFitGrid(fit bool) Option {
	return func(g *Generator) { g.fitGrid = fit }
}

// WithGridSize overrides the grid size derived from image dimensions.
// Zero keeps the derived size.
func WithGridSize(size int) Option {
	return func(g *Generator) { g.gridSize = size }
}

// WithLegacyRowStride is forwarded to image sources, see
// heightmap.WithLegacyRowStride.
func WithLegacyRowStride(legacy bool) Option {
	return func(g *Generator) { g.legacy = legacy }
}

// NewGenerator creates a Generator with defaults overridden by opts.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		log:       zap.NewNop(),
		worldSize: DefaultWorldSize,
		maxError:  DefaultMaxError,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MaxError returns the configured simplification threshold.
func (g *Generator) MaxError() float32 { return g.maxError }

// WorldSize returns the configured world size.
func (g *Generator) WorldSize() float32 { return g.worldSize }

// Generate triangulates hm at the configured error threshold.
// ctx is checked between the error map and triangulation passes.
func (g *Generator) Generate(ctx context.Context, hm *heightmap.HeightMap) (*Mesh, error) {
	if !(g.maxError >= 0) {
		return nil, fmt.Errorf("max error must be non-negative, got %v", g.maxError)
	}

	start := time.Now()

	builder, err := rtin.NewBuilder(hm)
	if err != nil {
		return nil, err
	}
	errorMapTime := time.Since(start)
	g.log.Debug("error map built",
		zap.Int("grid_size", hm.Size()),
		zap.Duration("elapsed", errorMapTime))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation cancelled: %w", err)
	}

	indices := builder.Indices(g.maxError)
	indexTime := time.Since(start) - errorMapTime
	g.log.Debug("indices built",
		zap.Int("indices", len(indices)),
		zap.Duration("elapsed", indexTime))

	mesh := Assemble(hm, indices)

	g.log.Info("terrain generated",
		zap.Int("grid_size", hm.Size()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Float32("max_error", g.maxError),
		zap.Duration("elapsed", time.Since(start)))

	return mesh, nil
}

// GridSizeFor returns the grid size used for an image of the given
// dimensions: the configured override, or min(width, height), snapped to
// 2^k+1 when fitting is enabled.
func (g *Generator) GridSizeFor(width, height int) (int, error) {
	size := g.gridSize
	if size == 0 {
		size = min(width, height)
	}
	if size > min(width, height) {
		return 0, fmt.Errorf("%w: grid size %d exceeds %dx%d image",
			rtin.ErrInvalidGridSize, size, width, height)
	}
	if g.fitGrid {
		size = rtin.FitGridSize(size)
	}
	if err := rtin.ValidateGridSize(size); err != nil {
		return 0, err
	}
	return size, nil
}

// HeightMapFromPixels wraps a decoded image as a height map sized for RTIN.
func (g *Generator) HeightMapFromPixels(buf heightmap.PixelBuffer) (*heightmap.HeightMap, error) {
	src, err := heightmap.NewImageSource(buf, heightmap.WithLegacyRowStride(g.legacy))
	if err != nil {
		return nil, fmt.Errorf("creating image source: %w", err)
	}

	size, err := g.GridSizeFor(buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}

	return heightmap.New(src, size, g.worldSize)
}

// FromPixels generates a mesh from a decoded image.
func (g *Generator) FromPixels(ctx context.Context, buf heightmap.PixelBuffer) (*Mesh, error) {
	hm, err := g.HeightMapFromPixels(buf)
	if err != nil {
		return nil, err
	}
	g.log.Debug("image source ready",
		zap.Int("width", buf.Width),
		zap.Int("height", buf.Height),
		zap.Stringer("format", buf.Format),
		zap.Int("grid_size", hm.Size()))

	return g.Generate(ctx, hm)
}
