package config

import (
	"runtime"
	"sort"
)

var Presets = map[string]*Config{
	"small": {
		BoxSize: 5, DistToEdge: 1, Step: 1, Particles: 64,
		Temperature: 1.0, MaxDeviation: 0.007, NMax: 200, TotalIt: 2000, Cutoff: 2.5,
		Potential: "lj", Backend: "cpu", Device: "host",
		TrialMode: "independent", Acceptance: "literal",
	},
	"default": DefaultConfig(),
	"dense": {
		BoxSize: 8, DistToEdge: 0.5, Step: 0.9, Particles: 512,
		Temperature: 0.8, MaxDeviation: 0.005, NMax: 2000, TotalIt: 20000, Cutoff: 2.5,
		Potential: "lj", Backend: "cpu", Device: "host",
		TrialMode: "independent", Acceptance: "literal",
	},
	"coulomb": {
		BoxSize: 10, DistToEdge: 1, Step: 1, Particles: 500,
		Temperature: 1.0, MaxDeviation: 0.007, NMax: 1000, TotalIt: 10000, Cutoff: 2.5,
		Potential: "coulomb", Backend: "device", Device: "host",
		TrialMode: "shared", Acceptance: "literal",
	},
}

// GetPreset returns a copy of the named preset, or nil. Presets that leave
// Workers unset get one worker per CPU.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
