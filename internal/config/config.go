package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEpsilon      = 1.0
	DefaultDelta        = 0.001
	DefaultParticles    = 100
	DefaultTransDiff    = 1.0
	DefaultRotDiff      = 1.0
	DefaultPropulsion   = 5.0
	DefaultWall         = 10.0
	DefaultHeight       = 10.0
	DefaultSteps        = 100000
	DefaultInterval     = 1000
	DefaultDiameter     = 1.0
	DefaultGPUThreshold = 500
)

type Config struct {
	Epsilon        float64 `yaml:"epsilon"`         // interaction strength
	Delta          float64 `yaml:"delta"`           // timestep
	Particles      int     `yaml:"particles"`       // particle count
	TransDiffusion float64 `yaml:"dt"`              // translational diffusion coefficient
	RotDiffusion   float64 `yaml:"de"`              // rotational diffusion coefficient
	SelfPropulsion float64 `yaml:"vs"`              // self-propulsion speed
	Wall           float64 `yaml:"wall"`            // cylinder radius
	Height         float64 `yaml:"height"`          // half-height of the cylinder
	Steps          int     `yaml:"steps"`           // total iterations
	OutputInterval int     `yaml:"output_interval"` // emit a frame every this many steps
	Threads        int     `yaml:"threads"`         // worker count, 0 = all CPUs
	OutputFormat   string  `yaml:"output_format"`   // csv or binary
	Seed           int64   `yaml:"seed"`
	Diameter       float64 `yaml:"diameter"`      // particle diameter
	CutoffRadius   float64 `yaml:"cutoff"`        // interaction cutoff, 0 = 5*diameter
	GPUThreshold   int     `yaml:"gpu_threshold"` // below this count the cpu backend is always used
}

func DefaultConfig() *Config {
	return &Config{
		Epsilon:        DefaultEpsilon,
		Delta:          DefaultDelta,
		Particles:      DefaultParticles,
		TransDiffusion: DefaultTransDiff,
		RotDiffusion:   DefaultRotDiff,
		SelfPropulsion: DefaultPropulsion,
		Wall:           DefaultWall,
		Height:         DefaultHeight,
		Steps:          DefaultSteps,
		OutputInterval: DefaultInterval,
		OutputFormat:   "csv",
		Seed:           42,
		Diameter:       DefaultDiameter,
		GPUThreshold:   DefaultGPUThreshold,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every bound. A violation is a configuration error: the run
// must not start.
func (c *Config) Validate() error {
	if c.Epsilon < 0 {
		return fmt.Errorf("epsilon must be non-negative, got %g", c.Epsilon)
	}
	if c.Delta <= 0 {
		return fmt.Errorf("delta (timestep) must be positive, got %g", c.Delta)
	}
	if c.Particles <= 0 {
		return fmt.Errorf("particle count must be positive, got %d", c.Particles)
	}
	if c.TransDiffusion < 0 {
		return fmt.Errorf("translational diffusion must be non-negative, got %g", c.TransDiffusion)
	}
	if c.RotDiffusion < 0 {
		return fmt.Errorf("rotational diffusion must be non-negative, got %g", c.RotDiffusion)
	}
	if c.SelfPropulsion < 0 {
		return fmt.Errorf("self-propulsion speed must be non-negative, got %g", c.SelfPropulsion)
	}
	if c.Wall <= 0 {
		return fmt.Errorf("cylinder radius must be positive, got %g", c.Wall)
	}
	if c.Height <= 0 {
		return fmt.Errorf("cylinder height must be positive, got %g", c.Height)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("step count must be positive, got %d", c.Steps)
	}
	if c.OutputInterval <= 0 {
		return fmt.Errorf("output interval must be positive, got %d", c.OutputInterval)
	}
	if c.Diameter <= 0 {
		return fmt.Errorf("particle diameter must be positive, got %g", c.Diameter)
	}
	if c.CutoffRadius < 0 {
		return fmt.Errorf("cutoff radius must be non-negative, got %g", c.CutoffRadius)
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "binary" {
		return fmt.Errorf("output format must be csv or binary, got %q", c.OutputFormat)
	}
	return nil
}

// Warnings reports suspicious but legal settings.
func (c *Config) Warnings() []string {
	var w []string
	if c.Particles > 10000 {
		w = append(w, fmt.Sprintf("large particle count (%d) may be slow at O(N^2)", c.Particles))
	}
	if c.OutputInterval > c.Steps {
		w = append(w, fmt.Sprintf("output interval (%d) exceeds total steps (%d): only the initial frame is written", c.OutputInterval, c.Steps))
	}
	return w
}

// Prefactor is the interaction scale of the Lennard-Jones split.
func (c *Config) Prefactor() float64 { return 48 * c.Epsilon }

// Cutoff resolves the interaction radius; unset means five diameters.
func (c *Config) Cutoff() float64 {
	if c.CutoffRadius > 0 {
		return c.CutoffRadius
	}
	return 5 * c.Diameter
}

// FrameCount is the number of frames a full run emits.
func (c *Config) FrameCount() int {
	return (c.Steps + c.OutputInterval - 1) / c.OutputInterval
}
