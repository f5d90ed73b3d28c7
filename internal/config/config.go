package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/san-kum/mcsim/internal/compute"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/particles"
	"github.com/san-kum/mcsim/internal/potential"
	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBoxSize      = 10.0
	DefaultDistToEdge   = 1.0
	DefaultStep         = 1.0
	DefaultParticles    = 500
	DefaultTemperature  = 1.0
	DefaultMaxDeviation = 0.007
	DefaultNMax         = 1000
	DefaultTotalIt      = 10000
	DefaultCutoff       = 2.5
)

var ErrInvalid = errors.New("config: invalid value")

// Config is one run's settings. A zero Seed means seed from the clock.
type Config struct {
	BoxSize      float64 `yaml:"box_size" toml:"box_size" json:"box_size" gcfg:"box-size"`
	DistToEdge   float64 `yaml:"initial_dist_to_edge" toml:"initial_dist_to_edge" json:"initial_dist_to_edge" gcfg:"initial-dist-to-edge"`
	Step         float64 `yaml:"initial_dist_by_one_axis" toml:"initial_dist_by_one_axis" json:"initial_dist_by_one_axis" gcfg:"initial-dist-by-one-axis"`
	Particles    int     `yaml:"particles" toml:"particles" json:"particles" gcfg:"particles"`
	Temperature  float64 `yaml:"temperature" toml:"temperature" json:"temperature" gcfg:"temperature"`
	MaxDeviation float64 `yaml:"max_deviation" toml:"max_deviation" json:"max_deviation" gcfg:"max-deviation"`
	NMax         int     `yaml:"nmax" toml:"nmax" json:"nmax" gcfg:"nmax"`
	TotalIt      int     `yaml:"total_it" toml:"total_it" json:"total_it" gcfg:"total-it"`
	Cutoff       float64 `yaml:"rc" toml:"rc" json:"rc" gcfg:"rc"`
	Potential    string  `yaml:"potential" toml:"potential" json:"potential" gcfg:"potential"`
	Backend      string  `yaml:"backend" toml:"backend" json:"backend" gcfg:"backend"`
	Device       string  `yaml:"device" toml:"device" json:"device" gcfg:"device"`
	Workers      int     `yaml:"workers" toml:"workers" json:"workers" gcfg:"workers"`
	Seed         int64   `yaml:"seed" toml:"seed" json:"seed" gcfg:"seed"`
	TrialMode    string  `yaml:"trial_mode" toml:"trial_mode" json:"trial_mode" gcfg:"trial-mode"`
	Acceptance   string  `yaml:"acceptance" toml:"acceptance" json:"acceptance" gcfg:"acceptance"`
}

// iniFile is the gcfg layout: every key lives under [simulation].
type iniFile struct {
	Simulation Config
}

func DefaultConfig() *Config {
	return &Config{
		BoxSize:      DefaultBoxSize,
		DistToEdge:   DefaultDistToEdge,
		Step:         DefaultStep,
		Particles:    DefaultParticles,
		Temperature:  DefaultTemperature,
		MaxDeviation: DefaultMaxDeviation,
		NMax:         DefaultNMax,
		TotalIt:      DefaultTotalIt,
		Cutoff:       DefaultCutoff,
		Potential:    potential.LennardJones.String(),
		Backend:      string(compute.KindCPU),
		Device:       "host",
		Workers:      runtime.NumCPU(),
		TrialMode:    mc.IndependentAxes.String(),
		Acceptance:   mc.AcceptLiteral.String(),
	}
}

// Load reads path on top of the defaults. The format follows the extension:
// .yaml/.yml, .toml, or .ini/.gcfg with a [simulation] section.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := toml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".ini", ".gcfg", ".cfg":
		wrap := iniFile{Simulation: *cfg}
		if err := gcfg.ReadFileInto(&wrap, path); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		*cfg = wrap.Simulation
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, ext)
	}
	return cfg, nil
}

// Save writes TOML for a .toml path and YAML otherwise.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		data, err = toml.Marshal(*cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case !(c.BoxSize > 0):
		return fmt.Errorf("%w: box_size must be positive, got %g", ErrInvalid, c.BoxSize)
	case !(c.Step > 0):
		return fmt.Errorf("%w: initial_dist_by_one_axis must be positive, got %g", ErrInvalid, c.Step)
	case c.Particles <= 0:
		return fmt.Errorf("%w: particles must be positive, got %d", ErrInvalid, c.Particles)
	case !(c.Temperature > 0):
		return fmt.Errorf("%w: temperature must be positive, got %g", ErrInvalid, c.Temperature)
	case !(c.MaxDeviation >= 0):
		return fmt.Errorf("%w: max_deviation must be non-negative, got %g", ErrInvalid, c.MaxDeviation)
	case c.NMax < 0:
		return fmt.Errorf("%w: nmax must be non-negative, got %d", ErrInvalid, c.NMax)
	case c.TotalIt < 0:
		return fmt.Errorf("%w: total_it must be non-negative, got %d", ErrInvalid, c.TotalIt)
	case !(c.Cutoff > 0):
		return fmt.Errorf("%w: rc must be positive, got %g", ErrInvalid, c.Cutoff)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalid, c.Workers)
	}

	if _, err := c.PotentialKind(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.BackendKind(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.Params(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c *Config) Box() (particles.Box, error) {
	return particles.NewBox(c.BoxSize)
}

func (c *Config) Lattice() particles.LatticeSpec {
	return particles.LatticeSpec{
		DistToEdge: c.DistToEdge,
		Step:       c.Step,
		Count:      c.Particles,
	}
}

func (c *Config) PotentialKind() (potential.Kind, error) {
	return potential.ParseKind(c.Potential)
}

func (c *Config) BackendKind() (compute.Kind, error) {
	return compute.ParseKind(c.Backend)
}

func (c *Config) NewPotential() (potential.Potential, error) {
	kind, err := c.PotentialKind()
	if err != nil {
		return nil, err
	}
	return potential.New(kind, c.Cutoff)
}

func (c *Config) BackendOptions() compute.Options {
	return compute.Options{Workers: c.Workers, Device: c.Device}
}

func (c *Config) Params() (mc.Params, error) {
	acceptance, err := mc.ParseAcceptanceMode(c.Acceptance)
	if err != nil {
		return mc.Params{}, err
	}
	trial, err := mc.ParseTrialMode(c.TrialMode)
	if err != nil {
		return mc.Params{}, err
	}
	p := mc.Params{
		Temperature:  c.Temperature,
		MaxDeviation: c.MaxDeviation,
		NMax:         c.NMax,
		TotalIt:      c.TotalIt,
		Acceptance:   acceptance,
		TrialMode:    trial,
	}
	return p, p.Validate()
}
