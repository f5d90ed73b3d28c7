package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/san-kum/mcsim/internal/analysis"
	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/experiment"
	"github.com/san-kum/mcsim/internal/logging"
	"github.com/san-kum/mcsim/internal/mc"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs. Each step is decoded on top of
// the scenario's preset (or the defaults), so a step only names what it
// changes.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Preset      string      `yaml:"preset"`
	Steps       []yaml.Node `yaml:"steps"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Configs resolves every step to a full configuration.
func (s *Scenario) Configs() ([]*config.Config, error) {
	base := config.DefaultConfig()
	if s.Preset != "" {
		if base = config.GetPreset(s.Preset); base == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}

	configs := make([]*config.Config, 0, len(s.Steps))
	for i := range s.Steps {
		cfg := *base
		if err := s.Steps[i].Decode(&cfg); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		configs = append(configs, &cfg)
	}
	return configs, nil
}

// StepResult pairs a finished run with the experiment that produced it.
type StepResult struct {
	Experiment *experiment.Experiment
	Result     *mc.Result
}

// RunScenario executes all steps in order. out receives one progress line
// per step and may be nil.
func RunScenario(ctx context.Context, scenario *Scenario, log logging.Logger, out io.Writer) ([]StepResult, error) {
	configs, err := scenario.Configs()
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = io.Discard
	}

	results := make([]StepResult, 0, len(configs))
	for i, cfg := range configs {
		fmt.Fprintf(out, "running step %d/%d: %s T=%g N=%d\n", i+1, len(configs), cfg.Potential, cfg.Temperature, cfg.Particles)

		res, exp, err := runOne(ctx, cfg, log)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, StepResult{Experiment: exp, Result: res})
	}

	return results, nil
}

func runOne(ctx context.Context, cfg *config.Config, log logging.Logger) (*mc.Result, *experiment.Experiment, error) {
	exp := experiment.New(cfg, log)
	if err := exp.Setup(); err != nil {
		return nil, nil, err
	}
	defer exp.Close()

	res, err := exp.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return res, exp, nil
}

// ParameterSweep varies one numeric configuration key linearly.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue        float64
	EnergyPerParticle float64
	MeanEnergy        float64
	StdErr            float64
	AcceptanceRatio   float64
}

var sweepParams = map[string]func(*config.Config, float64){
	"temperature":   func(c *config.Config, v float64) { c.Temperature = v },
	"max_deviation": func(c *config.Config, v float64) { c.MaxDeviation = v },
	"rc":            func(c *config.Config, v float64) { c.Cutoff = v },
	"box_size":      func(c *config.Config, v float64) { c.BoxSize = v },
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, log logging.Logger, out io.Writer) ([]SweepResult, error) {
	set, ok := sweepParams[sweep.ParamName]
	if !ok {
		return nil, fmt.Errorf("parameter %s cannot be swept", sweep.ParamName)
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if out == nil {
		out = io.Discard
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := *sweep.Base
		set(&cfg, paramVal)

		res, _, err := runOne(ctx, &cfg, log)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		sr := SweepResult{
			ParamValue:        paramVal,
			EnergyPerParticle: res.EnergyPerParticle,
			MeanEnergy:        res.EnergyPerParticle,
			AcceptanceRatio:   res.AcceptanceRatio,
		}
		if s, err := analysis.Summarize(perParticle(res), 10); err == nil {
			sr.MeanEnergy = s.Mean
			sr.StdErr = s.BlockStdErr
		}
		results = append(results, sr)

		fmt.Fprintf(out, "sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// ReplicaResult is one independently seeded run of the same configuration.
type ReplicaResult struct {
	Seed              int64
	EnergyPerParticle float64
	AcceptanceRatio   float64
}

// RunReplicas repeats cfg with seeds seed, seed+1, ... so the spread of the
// final energy can be compared against its in-run error estimate. A zero
// seed starts from the clock.
func RunReplicas(ctx context.Context, cfg *config.Config, n int, seed int64, log logging.Logger) ([]ReplicaResult, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	results := make([]ReplicaResult, 0, n)
	for i := 0; i < n; i++ {
		c := *cfg
		c.Seed = seed + int64(i)

		res, _, err := runOne(ctx, &c, log)
		if err != nil {
			return results, fmt.Errorf("replica %d: %w", i, err)
		}
		results = append(results, ReplicaResult{
			Seed:              c.Seed,
			EnergyPerParticle: res.EnergyPerParticle,
			AcceptanceRatio:   res.AcceptanceRatio,
		})
	}
	return results, nil
}

// Spread returns the mean final energy per particle across replicas and its
// sample standard deviation. ok is false with fewer than two replicas, where
// the spread is undefined.
func Spread(results []ReplicaResult) (mean, spread float64, ok bool) {
	if len(results) == 0 {
		return 0, 0, false
	}
	energies := make([]float64, len(results))
	for i, r := range results {
		energies[i] = r.EnergyPerParticle
	}
	if len(energies) < 2 {
		return energies[0], 0, false
	}
	mean, spread = stat.MeanStdDev(energies, nil)
	return mean, spread, true
}

func perParticle(res *mc.Result) []float64 {
	n := float64(res.Final.Len())
	out := make([]float64, len(res.History))
	for i, e := range res.History {
		out[i] = e / n
	}
	return out
}
