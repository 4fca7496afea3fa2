package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagMaxError  = flag.Float64("max-error", 0, "Simplification error threshold")
	flagWorldSize = flag.Float64("world-size", 0, "Mesh edge length in world units")
	flagGridSize  = flag.Int("grid-size", 0, "Grid size override (2^k+1)")
	flagFitGrid   = flag.Bool("fit-grid", false, "Snap the grid down to the nearest 2^k+1")
	flagLegacy    = flag.Bool("legacy-stride", false, "Address image rows by height (square-image fixtures)")
	flagFormat    = flag.String("format", "", "Output format: json, obj or bin")
	flagCompact   = flag.Bool("compact", false, "Drop vertices no triangle references")
	flagSeed      = flag.Int64("seed", 0, "Noise seed for procedural terrain")
)

// visitFlags reports the flags given on the command line.
var visitFlags = flag.Visit

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// setFlags returns the names of the flags given on the command line.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	visitFlags(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFlags copies every flag in set onto cfg. Values are taken as given;
// Validate rejects the ones the pipeline cannot use.
func applyFlags(cfg *Config, set map[string]bool) {
	if set["debug"] && *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if set["max-error"] {
		cfg.Mesh.MaxError = float32(*flagMaxError)
	}
	if set["world-size"] {
		cfg.Mesh.WorldSize = float32(*flagWorldSize)
	}
	if set["grid-size"] {
		cfg.Mesh.GridSize = *flagGridSize
	}
	if set["fit-grid"] {
		cfg.Mesh.FitGrid = *flagFitGrid
	}
	if set["legacy-stride"] {
		cfg.Mesh.LegacyRowStride = *flagLegacy
	}
	if set["format"] {
		cfg.Output.Format = *flagFormat
	}
	if set["compact"] {
		cfg.Output.Compact = *flagCompact
	}
	if set["seed"] {
		cfg.Noise.Seed = *flagSeed
	}
}
