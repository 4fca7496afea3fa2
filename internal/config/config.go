// Package config handles terramesh configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/terramesh/internal/export"
)

// Config holds all settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Noise   NoiseConfig   `yaml:"noise"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig holds triangulation settings.
type MeshConfig struct {
	WorldSize       float32 `yaml:"world_size"`        // Edge length of the mesh in world units
	MaxError        float32 `yaml:"max_error"`         // Simplification threshold
	GridSize        int     `yaml:"grid_size"`         // 0 derives the grid from the image
	FitGrid         bool    `yaml:"fit_grid"`          // Snap the grid down to 2^k+1
	LegacyRowStride bool    `yaml:"legacy_row_stride"` // Address image rows by height
}

// NoiseConfig holds procedural terrain settings.
type NoiseConfig struct {
	Seed      int64   `yaml:"seed"`
	Size      int     `yaml:"size"`
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
	Alpha     float64 `yaml:"alpha"`
	Beta      float64 `yaml:"beta"`
	Octaves   int32   `yaml:"octaves"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Format        string `yaml:"format"`         // json, obj or bin
	Compact       bool   `yaml:"compact"`        // Drop unreferenced vertices
	WireframeSize int    `yaml:"wireframe_size"` // Edge length of wireframe images in pixels
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			WorldSize: 5.0,
			MaxError:  0.01,
		},
		Noise: NoiseConfig{
			Seed:      56,
			Size:      257,
			Frequency: 0.02,
			Amplitude: 0.5,
			Alpha:     2.0,
			Beta:      2.0,
			Octaves:   4,
		},
		Output: OutputConfig{
			Format:        export.FormatJSON,
			WireframeSize: 1024,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Mesh.WorldSize <= 0 {
		errs = append(errs, fmt.Errorf("mesh.world_size must be positive, got %v", c.Mesh.WorldSize))
	}
	if !(c.Mesh.MaxError >= 0) {
		errs = append(errs, fmt.Errorf("mesh.max_error must be non-negative, got %v", c.Mesh.MaxError))
	}
	if c.Mesh.GridSize < 0 {
		errs = append(errs, fmt.Errorf("mesh.grid_size must be non-negative, got %d", c.Mesh.GridSize))
	}
	if c.Noise.Size < 2 {
		errs = append(errs, fmt.Errorf("noise.size must be at least 2, got %d", c.Noise.Size))
	}
	switch c.Output.Format {
	case export.FormatJSON, export.FormatOBJ, export.FormatBinary:
	default:
		errs = append(errs, fmt.Errorf("output.format %q is not one of json, obj, bin", c.Output.Format))
	}
	if c.Output.WireframeSize <= 0 {
		errs = append(errs, fmt.Errorf("output.wireframe_size must be positive, got %d", c.Output.WireframeSize))
	}
	return errors.Join(errs...)
}
