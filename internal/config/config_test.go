package config

import (
	"flag"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/terramesh/internal/export"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Mesh.WorldSize != 5.0 {
		t.Errorf("expected world size 5, got %v", cfg.Mesh.WorldSize)
	}
	if cfg.Mesh.MaxError != 0.01 {
		t.Errorf("expected max error 0.01, got %v", cfg.Mesh.MaxError)
	}
	if cfg.Mesh.GridSize != 0 {
		t.Errorf("expected derived grid size, got %d", cfg.Mesh.GridSize)
	}
	if cfg.Mesh.FitGrid || cfg.Mesh.LegacyRowStride {
		t.Error("expected fit_grid and legacy_row_stride to be off by default")
	}

	if cfg.Noise.Size != 257 {
		t.Errorf("expected noise size 257, got %d", cfg.Noise.Size)
	}

	if cfg.Output.Format != export.FormatJSON {
		t.Errorf("expected output format json, got %s", cfg.Output.Format)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
mesh:
  world_size: 12.5
  max_error: 0.25
  grid_size: 129
  fit_grid: true
  legacy_row_stride: true

noise:
  seed: 7
  size: 65
  octaves: 6

output:
  format: obj
  compact: true
  wireframe_size: 512

logging:
  level: "debug"
  log_file: "terramesh.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Mesh.WorldSize != 12.5 {
		t.Errorf("expected world size 12.5, got %v", cfg.Mesh.WorldSize)
	}
	if cfg.Mesh.MaxError != 0.25 {
		t.Errorf("expected max error 0.25, got %v", cfg.Mesh.MaxError)
	}
	if cfg.Mesh.GridSize != 129 {
		t.Errorf("expected grid size 129, got %d", cfg.Mesh.GridSize)
	}
	if !cfg.Mesh.FitGrid || !cfg.Mesh.LegacyRowStride {
		t.Error("expected fit_grid and legacy_row_stride to be true")
	}

	if cfg.Noise.Seed != 7 || cfg.Noise.Size != 65 || cfg.Noise.Octaves != 6 {
		t.Errorf("unexpected noise config: %+v", cfg.Noise)
	}
	// Unset keys keep their defaults.
	if cfg.Noise.Frequency != 0.02 {
		t.Errorf("expected default frequency 0.02, got %v", cfg.Noise.Frequency)
	}

	if cfg.Output.Format != export.FormatOBJ || !cfg.Output.Compact || cfg.Output.WireframeSize != 512 {
		t.Errorf("unexpected output config: %+v", cfg.Output)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "terramesh.log" {
		t.Errorf("expected log file 'terramesh.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
mesh:
  world_size: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative max error", func(c *Config) { c.Mesh.MaxError = -0.1 }, "max_error"},
		{"NaN max error", func(c *Config) { c.Mesh.MaxError = float32(math.NaN()) }, "max_error"},
		{"zero world size", func(c *Config) { c.Mesh.WorldSize = 0 }, "world_size"},
		{"negative grid size", func(c *Config) { c.Mesh.GridSize = -3 }, "grid_size"},
		{"tiny noise", func(c *Config) { c.Noise.Size = 1 }, "noise.size"},
		{"unknown format", func(c *Config) { c.Output.Format = "stl" }, "output.format"},
		{"zero wireframe", func(c *Config) { c.Output.WireframeSize = 0 }, "wireframe_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("terramesh.yaml", []byte("mesh:\n  max_error: 0.5\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find terramesh.yaml in current directory")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Mesh.MaxError = 0.125
	cfg.Output.Format = export.FormatBinary
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config failed: %v", err)
	}
	if loaded.Mesh.MaxError != 0.125 || loaded.Output.Format != export.FormatBinary {
		t.Errorf("saved config not restored: %+v", loaded)
	}
}

// withSetFlags makes the named flags look as if they were given on the
// command line.
func withSetFlags(t *testing.T, names ...string) {
	t.Helper()
	orig := visitFlags
	visitFlags = func(fn func(*flag.Flag)) {
		for _, name := range names {
			fn(flag.Lookup(name))
		}
	}
	t.Cleanup(func() { visitFlags = orig })
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		set      []string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			set:   []string{"debug"},
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "max error flag",
			set:   []string{"max-error"},
			setup: func() { *flagMaxError = 0 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.MaxError != 0 {
					t.Errorf("expected max error 0 from flag, got %v", cfg.Mesh.MaxError)
				}
			},
			teardown: func() { *flagMaxError = 0 },
		},
		{
			name:  "negative max error is kept for validation",
			set:   []string{"max-error"},
			setup: func() { *flagMaxError = -0.5 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.MaxError != -0.5 {
					t.Errorf("expected max error -0.5 from flag, got %v", cfg.Mesh.MaxError)
				}
				if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "max_error") {
					t.Errorf("expected max_error validation error, got %v", err)
				}
			},
			teardown: func() { *flagMaxError = 0 },
		},
		{
			name:  "unset flags keep config values",
			set:   nil,
			setup: func() { *flagMaxError = 0.3; *flagFormat = export.FormatOBJ },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.MaxError != Default().Mesh.MaxError || cfg.Output.Format != export.FormatJSON {
					t.Errorf("unset flags changed config: %+v %+v", cfg.Mesh, cfg.Output)
				}
			},
			teardown: func() { *flagMaxError = 0; *flagFormat = "" },
		},
		{
			name:  "world size and grid flags",
			set:   []string{"world-size", "grid-size", "fit-grid"},
			setup: func() { *flagWorldSize = 100; *flagGridSize = 65; *flagFitGrid = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.WorldSize != 100 {
					t.Errorf("expected world size 100, got %v", cfg.Mesh.WorldSize)
				}
				if cfg.Mesh.GridSize != 65 || !cfg.Mesh.FitGrid {
					t.Errorf("unexpected grid settings: %+v", cfg.Mesh)
				}
			},
			teardown: func() { *flagWorldSize = 0; *flagGridSize = 0; *flagFitGrid = false },
		},
		{
			name:  "output flags",
			set:   []string{"format", "compact"},
			setup: func() { *flagFormat = export.FormatOBJ; *flagCompact = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Output.Format != export.FormatOBJ || !cfg.Output.Compact {
					t.Errorf("unexpected output settings: %+v", cfg.Output)
				}
			},
			teardown: func() { *flagFormat = ""; *flagCompact = false },
		},
		{
			name:  "legacy stride and seed",
			set:   []string{"legacy-stride", "seed"},
			setup: func() { *flagLegacy = true; *flagSeed = 99 },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Mesh.LegacyRowStride {
					t.Error("expected legacy row stride")
				}
				if cfg.Noise.Seed != 99 {
					t.Errorf("expected seed 99, got %d", cfg.Noise.Seed)
				}
			},
			teardown: func() { *flagLegacy = false; *flagSeed = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			set := make(map[string]bool)
			for _, name := range tt.set {
				set[name] = true
			}

			cfg := Default()
			applyFlags(cfg, set)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
mesh:
  world_size: 8
  max_error: 0.2
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagMaxError = 0.05
	withSetFlags(t, "config", "max-error")
	defer func() {
		*flagConfig = ""
		*flagMaxError = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Max error comes from the flag, world size from the file.
	if cfg.Mesh.MaxError != 0.05 {
		t.Errorf("expected max error 0.05 from flag, got %v", cfg.Mesh.MaxError)
	}
	if cfg.Mesh.WorldSize != 8 {
		t.Errorf("expected world size 8 from file, got %v", cfg.Mesh.WorldSize)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  format: stl\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject an unknown output format")
	}
}

func TestLoadRejectsNegativeMaxErrorFlag(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagMaxError = -0.5
	withSetFlags(t, "config", "max-error")
	defer func() {
		*flagConfig = ""
		*flagMaxError = 0
	}()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject -max-error -0.5")
	}
}

func TestLoadRejectsNaNMaxError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("mesh:\n  max_error: .nan\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "max_error") {
		t.Errorf("expected max_error validation error, got %v", err)
	}
}
