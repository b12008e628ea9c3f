// Package config loads and validates the per-frame simulation configuration:
// world size, per-pass enable/iteration counts, the global friction
// amplifier, ambient-heat parameters, and the force-bleed rate.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// StepConfig is one pass kind's {enabled, pass_count} pair.
type StepConfig struct {
	Enabled   bool `yaml:"enabled"`
	PassCount int  `yaml:"pass_count"`
}

// StepsConfig maps every pass kind to its step configuration.
type StepsConfig struct {
	Margolus       StepConfig `yaml:"margolus"`
	LiquidSpread   StepConfig `yaml:"liquid_spread"`
	Archimedes     StepConfig `yaml:"archimedes"`
	ParticleHeat   StepConfig `yaml:"particle_heat"`
	PhaseTransition StepConfig `yaml:"phase_transition"`
	AmbientHeat    StepConfig `yaml:"ambient_heat"`
}

// AmbientHeatConfig parameterizes the ambient heat-transfer pass.
type AmbientHeatConfig struct {
	EmissionMultiplier     float64 `yaml:"emission_multiplier"`
	DiffusionMultiplier    float64 `yaml:"diffusion_multiplier"`
	EquilibriumEnabled     bool    `yaml:"equilibrium_enabled"`
	EquilibriumStrength    float64 `yaml:"equilibrium_strength"`
	EquilibriumTemperature float64 `yaml:"equilibrium_temperature"`
	EquilibriumMaxDelta    float64 `yaml:"equilibrium_max_delta"`
	EquilibriumInterval    int     `yaml:"equilibrium_interval"`
}

// Config holds every recognized simulation configuration option.
type Config struct {
	WorldSize         int               `yaml:"world_size"`
	Steps             StepsConfig       `yaml:"steps"`
	FrictionAmplifier float64           `yaml:"friction_amplifier"`
	AmbientHeat       AmbientHeatConfig `yaml:"ambient_heat"`
	ForceBleed        float64           `yaml:"force_bleed"`
}

// Load parses YAML config data and validates it. A malformed or
// out-of-range value is rejected at ingest time; it must never reach the
// pipeline driver.
func Load(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing config: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads and validates a YAML config file, merged over embedded
// defaults. An empty path uses the embedded defaults unmodified.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Load(data)
}

// MustLoadDefault loads the embedded defaults, panicking on error - a
// malformed embedded file is a build defect, not a runtime condition.
func MustLoadDefault() *Config {
	cfg, err := Load(nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func (c *Config) validate() error {
	if !isPowerOfTwo(c.WorldSize) {
		return fmt.Errorf("config: world_size %d is not a positive power of two", c.WorldSize)
	}
	for name, step := range map[string]StepConfig{
		"margolus":         c.Steps.Margolus,
		"liquid_spread":    c.Steps.LiquidSpread,
		"archimedes":       c.Steps.Archimedes,
		"particle_heat":    c.Steps.ParticleHeat,
		"phase_transition": c.Steps.PhaseTransition,
		"ambient_heat":     c.Steps.AmbientHeat,
	} {
		if step.PassCount < 0 {
			return fmt.Errorf("config: steps.%s.pass_count %d is negative", name, step.PassCount)
		}
	}
	if c.ForceBleed < 0 || c.ForceBleed > 1 {
		return fmt.Errorf("config: force_bleed %f is outside [0, 1]", c.ForceBleed)
	}
	if c.AmbientHeat.EquilibriumInterval < 1 {
		return fmt.Errorf("config: ambient_heat.equilibrium_interval %d must be at least 1", c.AmbientHeat.EquilibriumInterval)
	}
	return nil
}
