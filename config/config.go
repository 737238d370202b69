// Package config provides configuration loading for antenna placement runs.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/Ksonar262/RFID"
	"github.com/Ksonar262/RFID/grid"
	"github.com/Ksonar262/RFID/swarm"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all run configuration parameters.
type Config struct {
	// Layout is the floor plan, one string per row.
	Layout   []string       `yaml:"layout"`
	Swarm    SwarmConfig    `yaml:"swarm"`
	Coverage CoverageConfig `yaml:"coverage"`
	Output   OutputConfig   `yaml:"output"`
}

type SwarmConfig struct {
	NumAnts      int     `yaml:"num_ants"`
	NumParticles int     `yaml:"num_particles"`
	NumIters     int     `yaml:"num_iters"`
	Inertia      float64 `yaml:"inertia"`
	Cognition    float64 `yaml:"cognition"`
	Social       float64 `yaml:"social"`
	Vmax         float64 `yaml:"vmax"`
	Rule         string  `yaml:"rule"`
	Seed         int64   `yaml:"seed"`
	Workers      int     `yaml:"workers"`
	Cache        bool    `yaml:"cache"`
}

type CoverageConfig struct {
	SignalRange        float64 `yaml:"signal_range"`
	RepulsionWeight    float64 `yaml:"repulsion_weight"`
	CriticalZoneWeight float64 `yaml:"critical_zone_weight"`
}

// OutputConfig selects which reports are written and where.
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	PNG     bool   `yaml:"png"`
	HTML    bool   `yaml:"html"`
	CSV     bool   `yaml:"csv"`
	Trace   string `yaml:"trace"`
	Metrics bool   `yaml:"metrics"`
	Elite   int    `yaml:"elite"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: parsing embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.  A layout given in the
// file replaces the default layout entirely.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %v: %w", path, err, rfid.ErrConfig)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks everything that can be checked without running: the
// layout parses and has free cells, and the swarm and coverage parameters
// are in range.
func (c *Config) Validate() error {
	if _, err := c.Grid(); err != nil {
		return err
	}
	s, err := c.Settings()
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	switch {
	case !(c.Coverage.SignalRange > 0):
		return fmt.Errorf("config: coverage.signal_range %v must be positive: %w", c.Coverage.SignalRange, rfid.ErrConfig)
	case c.Coverage.RepulsionWeight < 0:
		return fmt.Errorf("config: coverage.repulsion_weight %v must be non-negative: %w", c.Coverage.RepulsionWeight, rfid.ErrConfig)
	case c.Coverage.CriticalZoneWeight < 0:
		return fmt.Errorf("config: coverage.critical_zone_weight %v must be non-negative: %w", c.Coverage.CriticalZoneWeight, rfid.ErrConfig)
	case c.Swarm.Workers < 0:
		return fmt.Errorf("config: swarm.workers %d must not be negative: %w", c.Swarm.Workers, rfid.ErrConfig)
	case c.Output.Elite < 0:
		return fmt.Errorf("config: output.elite %d must not be negative: %w", c.Output.Elite, rfid.ErrConfig)
	}
	return nil
}

// Grid parses the layout.  It fails if the layout has no free cells.
func (c *Config) Grid() (*grid.Grid, error) {
	g, err := grid.Parse(c.Layout)
	if err != nil {
		return nil, fmt.Errorf("config: layout: %w", err)
	}
	if g.NumFree() == 0 {
		return nil, fmt.Errorf("config: layout has no free cells: %w", rfid.ErrConfig)
	}
	return g, nil
}

// Settings converts the swarm and coverage sections for swarm.Optimize.
func (c *Config) Settings() (swarm.Settings, error) {
	rule, err := swarm.ParseRule(c.Swarm.Rule)
	if err != nil {
		return swarm.Settings{}, fmt.Errorf("config: swarm.rule: %w", err)
	}
	return swarm.Settings{
		NumAnts:            c.Swarm.NumAnts,
		NumParticles:       c.Swarm.NumParticles,
		NumIters:           c.Swarm.NumIters,
		Inertia:            c.Swarm.Inertia,
		Cognition:          c.Swarm.Cognition,
		Social:             c.Swarm.Social,
		Rule:               rule,
		Vmax:               c.Swarm.Vmax,
		SignalRange:        c.Coverage.SignalRange,
		RepulsionWeight:    c.Coverage.RepulsionWeight,
		CriticalZoneWeight: c.Coverage.CriticalZoneWeight,
		Seed:               c.Swarm.Seed,
		Workers:            c.Swarm.Workers,
		Cache:              c.Swarm.Cache,
	}, nil
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
