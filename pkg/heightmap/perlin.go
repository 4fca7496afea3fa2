package heightmap

import (
	"github.com/aquilax/go-perlin"
)

// NoiseConfig parameterizes a PerlinSource.
type NoiseConfig struct {
	Seed      int64
	Alpha     float64 // weight falloff between octaves
	Beta      float64 // frequency multiplier between octaves
	Octaves   int32
	Frequency float64 // noise cycles per grid cell
	Amplitude float64 // output is scaled to roughly [-Amplitude, Amplitude]
}

// DefaultNoiseConfig returns rolling-hills settings.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Seed:      56,
		Alpha:     2.0,
		Beta:      2.0,
		Octaves:   4,
		Frequency: 0.02,
		Amplitude: 0.5,
	}
}

// PerlinSource produces deterministic, spatially coherent noise terrain.
// Two sources with the same config return identical heights.
type PerlinSource struct {
	noise     *perlin.Perlin
	frequency float64
	amplitude float64
}

// NewPerlinSource creates a seeded noise source.
func NewPerlinSource(cfg NoiseConfig) *PerlinSource {
	return &PerlinSource{
		noise:     perlin.NewPerlin(cfg.Alpha, cfg.Beta, cfg.Octaves, cfg.Seed),
		frequency: cfg.Frequency,
		amplitude: cfg.Amplitude,
	}
}

// SampleHeight implements Source.
func (p *PerlinSource) SampleHeight(x, y int) float32 {
	n := p.noise.Noise2D(float64(x)*p.frequency, float64(y)*p.frequency)
	return float32(n * p.amplitude)
}
