package metrics

import "github.com/san-kum/mcsim/internal/mc"

// Acceptance is the fraction of attempted moves that were accepted.
type Acceptance struct {
	name     string
	accepted int
	samples  int
}

func NewAcceptance() *Acceptance {
	return &Acceptance{name: "acceptance"}
}

func (a *Acceptance) Name() string {
	return a.name
}

func (a *Acceptance) Observe(s mc.StepInfo) {
	a.samples++
	if s.Commit {
		a.accepted++
	}
}

func (a *Acceptance) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.samples)
}

func (a *Acceptance) Reset() {
	a.accepted = 0
	a.samples = 0
}

// Defaults are the metrics attached to every run.
func Defaults(particles int) []mc.Metric {
	return []mc.Metric{
		NewAcceptance(),
		NewEnergyMean(particles),
		NewEnergyStdDev(particles),
		NewEnergyDrift(),
	}
}
