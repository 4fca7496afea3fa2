// terramesh builds adaptive triangle meshes from heightmap images.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Faultbox/terramesh/internal/config"
	"github.com/Faultbox/terramesh/internal/export"
	"github.com/Faultbox/terramesh/internal/imagefile"
	"github.com/Faultbox/terramesh/internal/logger"
	"github.com/Faultbox/terramesh/pkg/heightmap"
	"github.com/Faultbox/terramesh/pkg/rtin"
	"github.com/Faultbox/terramesh/pkg/terrain"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command, rest := args[0], args[1:]
	switch command {
	case "build":
		err = cmdBuild(ctx, cfg, rest)
	case "bench":
		err = cmdBench(ctx, cfg, rest)
	case "wireframe":
		err = cmdWireframe(ctx, cfg, rest)
	case "errormap":
		err = cmdErrorMap(cfg, rest)
	case "info":
		err = cmdInfo(cfg, rest)
	case "init":
		err = cmdInit(cfg, rest)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func printUsage() {
	fmt.Println(`terramesh - adaptive terrain meshes from heightmaps

Usage:
  terramesh [flags] <command> [options]

Commands:
  build <image> <out>          Generate a mesh and export it ("-" writes to stdout)
  build -noise <out>           Generate a mesh from procedural noise
  bench [-n runs] <image>      Time repeated mesh generation
  wireframe <image> <out.png>  Render the triangulation seen from above
  errormap <image> <out.png>   Dump the error map as a 16-bit grayscale PNG
  info <image>                 Show image, grid and triangle counts
  init [path]                  Write the effective config (default: user config dir)

Flags:
  -config <path>      Config file (default ./terramesh.yaml or user config dir)
  -debug              Enable debug logging
  -max-error <v>      Simplification error threshold
  -world-size <v>     Mesh edge length in world units
  -grid-size <n>      Grid size override (2^k+1)
  -fit-grid           Snap the grid down to the nearest 2^k+1
  -legacy-stride      Address image rows by height
  -format <f>         Output format: json, obj or bin
  -compact            Drop vertices no triangle references
  -seed <n>           Noise seed

Examples:
  terramesh build terrain.png terrain.json
  terramesh -max-error 0.05 -format obj build terrain.png terrain.obj
  terramesh -fit-grid wireframe photo.jpg wire.png`)
}

func fatal(err error) {
	logger.Error("command failed", zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func newGenerator(cfg *config.Config) *terrain.Generator {
	return terrain.NewGenerator(
		terrain.WithLogger(logger.Named("terrain")),
		terrain.WithWorldSize(cfg.Mesh.WorldSize),
		terrain.WithMaxError(cfg.Mesh.MaxError),
		terrain.WithGridSize(cfg.Mesh.GridSize),
		terrain.WithFitGrid(cfg.Mesh.FitGrid),
		terrain.WithLegacyRowStride(cfg.Mesh.LegacyRowStride),
	)
}

func loadImage(path string) (heightmap.PixelBuffer, error) {
	buf, err := imagefile.Load(path)
	if err != nil {
		return buf, err
	}
	logger.Debug("image loaded",
		zap.String("path", path),
		zap.Int("width", buf.Width),
		zap.Int("height", buf.Height),
		zap.Stringer("format", buf.Format))
	if buf.Width != buf.Height {
		logger.Warn("image is not square, extra rows or columns are ignored",
			zap.String("path", path),
			zap.Int("width", buf.Width),
			zap.Int("height", buf.Height))
	}
	return buf, nil
}

func noiseHeightMap(cfg *config.Config) (*heightmap.HeightMap, error) {
	size := cfg.Noise.Size
	if cfg.Mesh.FitGrid {
		size = rtin.FitGridSize(size)
	}
	src := heightmap.NewPerlinSource(heightmap.NoiseConfig{
		Seed:      cfg.Noise.Seed,
		Alpha:     cfg.Noise.Alpha,
		Beta:      cfg.Noise.Beta,
		Octaves:   cfg.Noise.Octaves,
		Frequency: cfg.Noise.Frequency,
		Amplitude: cfg.Noise.Amplitude,
	})
	return heightmap.New(src, size, cfg.Mesh.WorldSize)
}

func cmdBuild(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	noise := fs.Bool("noise", false, "Use procedural noise instead of an image")
	fs.Parse(args)

	want := 2
	if *noise {
		want = 1
	}
	if fs.NArg() != want {
		fmt.Fprintln(os.Stderr, "Usage: terramesh build <image> <out> | build -noise <out>")
		os.Exit(1)
	}

	gen := newGenerator(cfg)
	var (
		mesh *terrain.Mesh
		err  error
	)
	if *noise {
		hm, herr := noiseHeightMap(cfg)
		if herr != nil {
			return herr
		}
		mesh, err = gen.Generate(ctx, hm)
	} else {
		buf, lerr := loadImage(fs.Arg(0))
		if lerr != nil {
			return lerr
		}
		mesh, err = gen.FromPixels(ctx, buf)
	}
	if err != nil {
		return err
	}

	if cfg.Output.Compact {
		mesh = mesh.Compact()
	}

	out := fs.Arg(want - 1)
	if out == "-" {
		if cfg.Output.Format == export.FormatBinary && term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("refusing to write binary mesh to a terminal")
		}
		w := bufio.NewWriter(os.Stdout)
		if err := export.Write(w, mesh, cfg.Output.Format); err != nil {
			return err
		}
		return w.Flush()
	}
	if err := export.WriteFile(out, mesh, cfg.Output.Format); err != nil {
		return err
	}

	st := mesh.Stats()
	logger.Info("mesh exported",
		zap.String("path", out),
		zap.String("format", cfg.Output.Format),
		zap.Int("triangles", st.Triangles),
		zap.Int("vertices", mesh.VertexCount()))
	fmt.Fprintf(os.Stderr, "%s: %d triangles (%.1f%% of %d), %d vertices\n",
		out, st.Triangles, 100*(1-st.Reduction), st.FullTriangles, mesh.VertexCount())
	return nil
}

func cmdBench(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	runs := fs.Int("n", 10, "Number of runs")
	fs.Parse(args)

	if fs.NArg() < 1 || *runs < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terramesh bench [-n runs] <image>")
		os.Exit(1)
	}

	buf, err := loadImage(fs.Arg(0))
	if err != nil {
		return err
	}

	res, err := runBench(ctx, newGenerator(cfg), buf, *runs)
	if err != nil {
		return err
	}

	fmt.Printf("Image:     %s (%dx%d %s)\n", fs.Arg(0), buf.Width, buf.Height, buf.Format)
	fmt.Printf("Grid:      %d\n", res.gridSize)
	fmt.Printf("Runs:      %d\n", *runs)
	fmt.Println()
	fmt.Printf("%-10s %10s %12s %12s %12s %12s\n", "mesh", "triangles", "min", "median", "mean", "max")
	for _, r := range []benchRow{res.adaptive, res.fullGrid} {
		fmt.Printf("%-10s %10d %12v %12v %12v %12v\n",
			r.name, r.triangles, r.min(), r.median(), r.mean(), r.max())
	}
	return nil
}

type benchRow struct {
	name      string
	triangles int
	timings   []time.Duration // sorted
}

func (r benchRow) min() time.Duration    { return r.timings[0] }
func (r benchRow) max() time.Duration    { return r.timings[len(r.timings)-1] }
func (r benchRow) median() time.Duration { return r.timings[len(r.timings)/2] }

func (r benchRow) mean() time.Duration {
	var total time.Duration
	for _, d := range r.timings {
		total += d
	}
	return total / time.Duration(len(r.timings))
}

type benchResult struct {
	gridSize int
	adaptive benchRow
	fullGrid benchRow
}

// runBench times the adaptive pipeline against the brute-force mesh that
// emits every grid cell as two triangles.
func runBench(ctx context.Context, gen *terrain.Generator, buf heightmap.PixelBuffer, runs int) (benchResult, error) {
	hm, err := gen.HeightMapFromPixels(buf)
	if err != nil {
		return benchResult{}, err
	}
	res := benchResult{
		gridSize: hm.Size(),
		adaptive: benchRow{name: "adaptive", timings: make([]time.Duration, 0, runs)},
		fullGrid: benchRow{name: "full-grid", timings: make([]time.Duration, 0, runs)},
	}

	for range runs {
		start := time.Now()
		mesh, err := gen.FromPixels(ctx, buf)
		if err != nil {
			return benchResult{}, err
		}
		res.adaptive.timings = append(res.adaptive.timings, time.Since(start))
		res.adaptive.triangles = mesh.TriangleCount()

		start = time.Now()
		full := terrain.Assemble(hm, rtin.FullGridIndices(hm.Size()))
		res.fullGrid.timings = append(res.fullGrid.timings, time.Since(start))
		res.fullGrid.triangles = full.TriangleCount()
	}

	slices.Sort(res.adaptive.timings)
	slices.Sort(res.fullGrid.timings)
	return res, nil
}

func cmdWireframe(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: terramesh wireframe <image> <out.png>")
		os.Exit(1)
	}

	buf, err := loadImage(args[0])
	if err != nil {
		return err
	}
	mesh, err := newGenerator(cfg).FromPixels(ctx, buf)
	if err != nil {
		return err
	}

	opts := export.DefaultWireframeOptions()
	opts.Size = cfg.Output.WireframeSize
	if err := export.WriteWireframeFile(args[1], mesh, opts); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d triangles)\n", args[1], mesh.TriangleCount())
	return nil
}

func cmdErrorMap(cfg *config.Config, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: terramesh errormap <image> <out.png>")
		os.Exit(1)
	}

	buf, err := loadImage(args[0])
	if err != nil {
		return err
	}
	hm, err := newGenerator(cfg).HeightMapFromPixels(buf)
	if err != nil {
		return err
	}
	errs, err := rtin.NewErrorMap(hm)
	if err != nil {
		return err
	}
	if err := export.WriteErrorMapFile(args[1], errs); err != nil {
		return err
	}
	triangles := rtin.NewBuilderFromErrorMap(errs).Triangles(cfg.Mesh.MaxError)
	fmt.Printf("Wrote %s (grid %d, max error %g, %d triangles at %g)\n",
		args[1], errs.GridSize(), errs.Max(), triangles, cfg.Mesh.MaxError)
	return nil
}

var infoThresholds = []float32{0, 0.001, 0.005, 0.01, 0.05, 0.1}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: terramesh info <image>")
		os.Exit(1)
	}

	buf, err := loadImage(args[0])
	if err != nil {
		return err
	}
	hm, err := newGenerator(cfg).HeightMapFromPixels(buf)
	if err != nil {
		return err
	}
	builder, err := rtin.NewBuilder(hm)
	if err != nil {
		return err
	}

	lo, hi := hm.AltitudeRange()
	tile := hm.Size() - 1
	full := 2 * tile * tile
	fmt.Printf("Image:     %s\n", args[0])
	fmt.Printf("Size:      %dx%d\n", buf.Width, buf.Height)
	fmt.Printf("Format:    %s (%d bytes/pixel)\n", buf.Format, buf.BytesPerPixel())
	fmt.Printf("Grid:      %d\n", hm.Size())
	fmt.Printf("Altitude:  %g .. %g\n", lo, hi)
	fmt.Printf("Max error: %g\n", builder.ErrorMap().Max())
	fmt.Println()
	fmt.Println("Triangles by threshold:")
	for _, t := range infoThresholds {
		n := builder.Triangles(t)
		fmt.Printf("  %-8g %8d  (%.1f%%)\n", t, n, 100*float64(n)/float64(full))
	}
	return nil
}

func cmdInit(cfg *config.Config, args []string) error {
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "Usage: terramesh init [path]")
		os.Exit(1)
	}

	if len(args) == 0 {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}

	if err := cfg.SaveTo(args[0]); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Wrote %s\n", args[0])
	return nil
}
