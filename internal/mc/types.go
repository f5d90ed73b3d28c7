package mc

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/san-kum/mcsim/internal/particles"
)

var (
	// ErrInvalidParams indicates sampler parameters outside their valid range.
	ErrInvalidParams = errors.New("mc: invalid sampler parameters")

	// ErrFinished indicates Step was called after a termination counter hit its bound.
	ErrFinished = errors.New("mc: sampler finished")
)

// AcceptanceMode selects the comparison between the Boltzmann factor and the
// uniform draw once a trial has not lowered the energy.
type AcceptanceMode int

const (
	// AcceptLiteral accepts when probability <= draw. This is the rule the
	// reference program uses and the default.
	AcceptLiteral AcceptanceMode = iota
	// AcceptMetropolis accepts when draw <= probability.
	AcceptMetropolis
)

func (m AcceptanceMode) String() string {
	switch m {
	case AcceptLiteral:
		return "literal"
	case AcceptMetropolis:
		return "metropolis"
	default:
		return fmt.Sprintf("acceptance(%d)", int(m))
	}
}

func ParseAcceptanceMode(s string) (AcceptanceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "literal":
		return AcceptLiteral, nil
	case "metropolis", "textbook":
		return AcceptMetropolis, nil
	default:
		return 0, fmt.Errorf("%w: acceptance %q", ErrInvalidParams, s)
	}
}

// Accept reports whether a trial with energy u2 replaces the state at u1.
// A lower energy is always accepted regardless of r.
func Accept(mode AcceptanceMode, u1, u2, temperature, r float64) bool {
	if u2 < u1 {
		return true
	}
	probability := math.Exp((u1 - u2) / temperature)
	if mode == AcceptMetropolis {
		return r <= probability
	}
	return probability <= r
}

type Params struct {
	Temperature  float64
	MaxDeviation float64
	// NMax caps accepted moves, TotalIt caps attempts.
	NMax       int
	TotalIt    int
	Acceptance AcceptanceMode
	TrialMode  TrialMode
}

func (p Params) Validate() error {
	if !(p.Temperature > 0) || math.IsInf(p.Temperature, 0) {
		return fmt.Errorf("%w: temperature must be positive, got %g", ErrInvalidParams, p.Temperature)
	}
	if p.MaxDeviation < 0 || math.IsNaN(p.MaxDeviation) {
		return fmt.Errorf("%w: max_deviation must be non-negative, got %g", ErrInvalidParams, p.MaxDeviation)
	}
	if p.NMax < 0 {
		return fmt.Errorf("%w: nmax must be non-negative, got %d", ErrInvalidParams, p.NMax)
	}
	if p.TotalIt < 0 {
		return fmt.Errorf("%w: total_it must be non-negative, got %d", ErrInvalidParams, p.TotalIt)
	}
	return nil
}

// StepInfo describes one finished iteration.
type StepInfo struct {
	Iteration   int
	Accepted    int
	U1          float64
	U2          float64
	Probability float64
	Draw        float64
	Commit      bool
}

type Metric interface {
	Name() string
	Observe(s StepInfo)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s StepInfo)
}

type Result struct {
	InitialEnergy     float64
	Energy            float64
	EnergyPerParticle float64
	Attempts          int
	Accepted          int
	AcceptanceRatio   float64
	History           []float64
	Final             *particles.System
	WallTime          time.Duration
	DeviceTime        time.Duration
	Metrics           map[string]float64
}
