package metrics

import (
	"math"

	"github.com/san-kum/mcsim/internal/mc"
	"gonum.org/v1/gonum/stat"
)

// EnergyMean is the mean accepted energy per particle.
type EnergyMean struct {
	name      string
	particles float64
	accepted  []float64
}

func NewEnergyMean(particles int) *EnergyMean {
	return &EnergyMean{
		name:      "energy_mean",
		particles: float64(particles),
	}
}

func (e *EnergyMean) Name() string { return e.name }

func (e *EnergyMean) Observe(s mc.StepInfo) {
	if s.Commit {
		e.accepted = append(e.accepted, s.U2/e.particles)
	}
}

func (e *EnergyMean) Value() float64 {
	if len(e.accepted) == 0 {
		return 0
	}
	return stat.Mean(e.accepted, nil)
}

func (e *EnergyMean) Reset() {
	e.accepted = e.accepted[:0]
}

// EnergyStdDev is the sample standard deviation of accepted energy per particle.
type EnergyStdDev struct {
	EnergyMean
}

func NewEnergyStdDev(particles int) *EnergyStdDev {
	return &EnergyStdDev{EnergyMean{name: "energy_stddev", particles: float64(particles)}}
}

func (e *EnergyStdDev) Value() float64 {
	if len(e.accepted) < 2 {
		return 0
	}
	_, std := stat.MeanStdDev(e.accepted, nil)
	return std
}

// EnergyDrift is the relative change of the current energy from the first
// observed one.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s mc.StepInfo) {
	if e.samples == 0 {
		e.initialEnergy = s.U1
		e.currentEnergy = s.U1
	}
	if s.Commit {
		e.currentEnergy = s.U2
	}
	e.samples++
}

func (e *EnergyDrift) Value() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return math.Abs(e.currentEnergy-e.initialEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.samples = 0
}
