package config

import "sort"

// Presets are ready-made parameter sets for common regimes.
var Presets = map[string]*Config{
	"dilute": {
		Epsilon: 1.0, Delta: 0.001, Particles: 50,
		TransDiffusion: 1.0, RotDiffusion: 1.0, SelfPropulsion: 5.0,
		Wall: 20.0, Height: 20.0, Steps: 100000, OutputInterval: 1000,
		OutputFormat: "csv", Seed: 42, Diameter: 1.0, GPUThreshold: DefaultGPUThreshold,
	},
	"dense": {
		Epsilon: 1.0, Delta: 0.0005, Particles: 800,
		TransDiffusion: 0.5, RotDiffusion: 1.0, SelfPropulsion: 5.0,
		Wall: 12.0, Height: 12.0, Steps: 200000, OutputInterval: 2000,
		OutputFormat: "binary", Seed: 42, Diameter: 1.0, GPUThreshold: DefaultGPUThreshold,
	},
	"active": {
		Epsilon: 1.0, Delta: 0.001, Particles: 200,
		TransDiffusion: 0.1, RotDiffusion: 0.5, SelfPropulsion: 20.0,
		Wall: 10.0, Height: 10.0, Steps: 100000, OutputInterval: 1000,
		OutputFormat: "csv", Seed: 42, Diameter: 1.0, GPUThreshold: DefaultGPUThreshold,
	},
	"passive": {
		Epsilon: 1.0, Delta: 0.001, Particles: 200,
		TransDiffusion: 1.0, RotDiffusion: 1.0, SelfPropulsion: 0.0,
		Wall: 10.0, Height: 10.0, Steps: 100000, OutputInterval: 1000,
		OutputFormat: "csv", Seed: 42, Diameter: 1.0, GPUThreshold: DefaultGPUThreshold,
	},
}

// GetPreset returns a copy so callers can adjust fields freely.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
