// Package config provides configuration loading and access for the plume
// search simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
	"gonum.org/v1/gonum/floats"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Plume       PlumeConfig       `yaml:"plume"`
	Searcher    SearcherConfig    `yaml:"searcher"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// AxisConfig describes evenly spaced bin edges along one axis.
type AxisConfig struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Edges int     `yaml:"edges"` // number of edges = cells + 1
}

// EnvironmentConfig holds the grid extents.
type EnvironmentConfig struct {
	X AxisConfig `yaml:"x"`
	Y AxisConfig `yaml:"y"`
	Z AxisConfig `yaml:"z"`
}

// PlumeConfig selects and parameterizes the odor field.
type PlumeConfig struct {
	Type          string             `yaml:"type"`
	DT            float64            `yaml:"dt"`
	Source        [3]float64         `yaml:"source"`
	SourceIsIndex bool               `yaml:"source_is_index"` // Source holds integer cell indices
	Params        map[string]float64 `yaml:"params"`
}

// SearcherConfig holds cast-and-surge searcher parameters.
type SearcherConfig struct {
	Count         int        `yaml:"count"`
	Speed         float64    `yaml:"speed"`          // Flight speed (m/s)
	SurgeDuration float64    `yaml:"surge_duration"` // Seconds of upwind surge after a hit
	CastAmplitude float64    `yaml:"cast_amplitude"` // Crosswind half-width of casting (m)
	CastPeriod    float64    `yaml:"cast_period"`    // Seconds per cast cycle
	Noise         float64    `yaml:"noise"`          // Positional jitter std per step (m)
	Start         [3]float64 `yaml:"start"`
	StartJitter   float64    `yaml:"start_jitter"`
	FoundRadius   float64    `yaml:"found_radius"` // Distance to source counted as arrival
}

// SimulationConfig holds episode control parameters.
type SimulationConfig struct {
	MaxTicks int    `yaml:"max_ticks"`
	Episodes int    `yaml:"episodes"`
	Workers  int    `yaml:"workers"` // 0 = GOMAXPROCS
	Seed     uint64 `yaml:"seed"`    // 0 = time-based
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	XBins, YBins, ZBins []float64
	TicksPerWindow      int
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
		if err := cfg.overlay(data); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse is Load for in-memory YAML.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := cfg.overlay(data); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay unmarshals data over c. Only fields present in data change, except
// plume.params, which is replaced as a whole so parameters of the default
// variant do not leak into another variant.
func (c *Config) overlay(data []byte) error {
	var probe struct {
		Plume struct {
			Params map[string]float64 `yaml:"params"`
		} `yaml:"plume"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Plume.Params != nil {
		c.Plume.Params = nil
	}
	return yaml.Unmarshal(data, c)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	axes := []struct {
		name string
		ax   AxisConfig
		dst  *[]float64
	}{
		{"x", c.Environment.X, &c.Derived.XBins},
		{"y", c.Environment.Y, &c.Derived.YBins},
		{"z", c.Environment.Z, &c.Derived.ZBins},
	}
	for _, a := range axes {
		if a.ax.Edges < 2 || !(a.ax.Max > a.ax.Min) {
			return fmt.Errorf("environment.%s: need edges >= 2 and max > min, got %+v", a.name, a.ax)
		}
		*a.dst = floats.Span(make([]float64, a.ax.Edges), a.ax.Min, a.ax.Max)
	}

	c.Derived.TicksPerWindow = 1
	if c.Plume.DT > 0 {
		if n := int(math.Round(c.Telemetry.StatsWindow / c.Plume.DT)); n > 1 {
			c.Derived.TicksPerWindow = n
		}
	}
	return nil
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
