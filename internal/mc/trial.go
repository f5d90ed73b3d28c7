package mc

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/san-kum/mcsim/internal/particles"
)

type TrialMode int

const (
	// IndependentAxes displaces x, y and z by three separate draws.
	IndependentAxes TrialMode = iota
	// SharedOffset draws three offsets per particle but applies the first to
	// every axis, so each particle moves along the (1,1,1) diagonal.
	SharedOffset
)

func (m TrialMode) String() string {
	switch m {
	case IndependentAxes:
		return "independent"
	case SharedOffset:
		return "shared"
	default:
		return fmt.Sprintf("trial(%d)", int(m))
	}
}

func ParseTrialMode(s string) (TrialMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "independent":
		return IndependentAxes, nil
	case "shared", "shared-offset":
		return SharedOffset, nil
	default:
		return 0, fmt.Errorf("%w: trial mode %q", ErrInvalidParams, s)
	}
}

// TrialGenerator displaces every particle by offsets drawn uniformly from
// [-MaxDeviation/2, MaxDeviation/2) using the run's single generator.
type TrialGenerator struct {
	rng          *rand.Rand
	maxDeviation float64
	mode         TrialMode
}

func NewTrialGenerator(rng *rand.Rand, maxDeviation float64, mode TrialMode) *TrialGenerator {
	return &TrialGenerator{rng: rng, maxDeviation: maxDeviation, mode: mode}
}

func (g *TrialGenerator) offset() float64 {
	return g.rng.Float64()*g.maxDeviation - g.maxDeviation/2
}

// Propose writes a displaced copy of current into dst. dst must have the
// same length and must not share its position buffer with current.
func (g *TrialGenerator) Propose(dst, current *particles.System) error {
	if dst.Len() != current.Len() {
		return fmt.Errorf("mc: trial buffer holds %d particles, state has %d", dst.Len(), current.Len())
	}
	dst.Box = current.Box
	dst.Charges = current.Charges

	for i, p := range current.Positions {
		ex := g.offset()
		ey := g.offset()
		ez := g.offset()
		if g.mode == SharedOffset {
			ey, ez = ex, ex
		}
		p.X += ex
		p.Y += ey
		p.Z += ez
		dst.Positions[i] = p
	}
	return nil
}
