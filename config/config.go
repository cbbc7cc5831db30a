// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Strategy names accepted by simulation.strategy.
const (
	StrategyBruteForce     = "brute"
	StrategyScattered      = "scattered"
	StrategyCoherent       = "coherent"
	StrategyCoherentCached = "coherent_cached"
)

// Neighborhood names accepted by simulation.neighborhood.
const (
	NeighborhoodCells8  = "cells8"
	NeighborhoodCells27 = "cells27"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Rules      RulesConfig      `yaml:"rules"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Memory     MemoryConfig     `yaml:"memory"`
	Screen     ScreenConfig     `yaml:"screen"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds the population and domain setup.
type SimulationConfig struct {
	Population   int     `yaml:"population"`
	DT           float64 `yaml:"dt"`
	SceneScale   float64 `yaml:"scene_scale"`  // Half-width of the toroidal cube
	Strategy     string  `yaml:"strategy"`     // brute, scattered, coherent, coherent_cached
	Neighborhood string  `yaml:"neighborhood"` // cells8 (cell = 2x radius) or cells27 (cell = 1x radius)
	Seed         int64   `yaml:"seed"`         // 0 = time-based
}

// RulesConfig holds the flocking rule parameters.
type RulesConfig struct {
	Rule1Distance float64 `yaml:"rule1_distance"` // Cohesion radius
	Rule2Distance float64 `yaml:"rule2_distance"` // Separation radius
	Rule3Distance float64 `yaml:"rule3_distance"` // Alignment radius
	Rule1Scale    float64 `yaml:"rule1_scale"`
	Rule2Scale    float64 `yaml:"rule2_scale"`
	Rule3Scale    float64 `yaml:"rule3_scale"`
	MaxSpeed      float64 `yaml:"max_speed"`
}

// ParallelConfig holds worker fleet parameters.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // Below this item count a stage runs inline
}

// MemoryConfig bounds buffer allocation at init.
type MemoryConfig struct {
	MaxBufferBytes int64 `yaml:"max_buffer_bytes"` // 0 = unlimited
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	PointSize float64 `yaml:"point_size"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow       int     `yaml:"stats_window"`       // Ticks per flock stats window
	PerfWindow        int     `yaml:"perf_window"`        // Ticks averaged by the perf collector
	ValidateEvery     int     `yaml:"validate_every"`     // Cross-check grid vs brute force every N ticks (0 = off)
	ValidateTolerance float64 `yaml:"validate_tolerance"` // Max allowed per-component velocity deviation
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxRadius float64 // Largest of the three rule distances
	Workers   int     // Effective worker count
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects configurations the engine cannot size buffers for.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.Population < 1 {
		return fmt.Errorf("simulation.population must be positive, got %d", s.Population)
	}
	if s.DT <= 0 {
		return fmt.Errorf("simulation.dt must be positive, got %g", s.DT)
	}
	if s.SceneScale <= 0 {
		return fmt.Errorf("simulation.scene_scale must be positive, got %g", s.SceneScale)
	}
	switch s.Strategy {
	case StrategyBruteForce, StrategyScattered, StrategyCoherent, StrategyCoherentCached:
	default:
		return fmt.Errorf("simulation.strategy: unknown strategy %q", s.Strategy)
	}
	switch s.Neighborhood {
	case NeighborhoodCells8, NeighborhoodCells27:
	default:
		return fmt.Errorf("simulation.neighborhood: unknown neighborhood %q", s.Neighborhood)
	}

	r := c.Rules
	if r.Rule1Distance <= 0 || r.Rule2Distance <= 0 || r.Rule3Distance <= 0 {
		return fmt.Errorf("rules: distances must be positive (%g, %g, %g)",
			r.Rule1Distance, r.Rule2Distance, r.Rule3Distance)
	}
	if r.MaxSpeed <= 0 {
		return fmt.Errorf("rules.max_speed must be positive, got %g", r.MaxSpeed)
	}
	if c.Memory.MaxBufferBytes < 0 {
		return fmt.Errorf("memory.max_buffer_bytes must not be negative, got %d", c.Memory.MaxBufferBytes)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Callers that mutate a loaded Config must call it again.
func (c *Config) ComputeDerived() {
	r := c.Rules
	c.Derived.MaxRadius = max(r.Rule1Distance, r.Rule2Distance, r.Rule3Distance)

	c.Derived.Workers = c.Parallel.Workers
	if c.Derived.Workers <= 0 {
		c.Derived.Workers = runtime.GOMAXPROCS(0)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
