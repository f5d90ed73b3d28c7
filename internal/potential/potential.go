// Package potential defines the pairwise interactions scored by the sampler.
//
// The set of potentials is closed: [LennardJones] and [Coulomb]. A potential
// is chosen once from configuration with [New] and passed explicitly to the
// evaluator and the compute backends.
package potential

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownKind = errors.New("potential: unknown kind")

type Kind int

const (
	LennardJones Kind = iota
	Coulomb
)

func (k Kind) String() string {
	switch k {
	case LennardJones:
		return "lj"
	case Coulomb:
		return "coulomb"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lj", "lennard-jones", "lennardjones", "lennard_jones":
		return LennardJones, nil
	case "coulomb":
		return Coulomb, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Potential scores one unique pair from its squared wrapped distance.
type Potential interface {
	Kind() Kind
	// Pair returns the energy of a pair at squared distance d2 with charges
	// qi and qj. Potentials without charge dependence ignore them.
	Pair(d2 float64, qi, qj int) float64
	// Cutoff is the interaction radius; +Inf when unbounded.
	Cutoff() float64
	NeedsCharges() bool

	sealed()
}

// New builds the potential for kind. rc is used by Lennard-Jones only.
func New(kind Kind, rc float64) (Potential, error) {
	switch kind {
	case LennardJones:
		if !(rc > 0) {
			return nil, fmt.Errorf("potential: cutoff must be positive, got %g", rc)
		}
		return NewLennardJones(rc), nil
	case Coulomb:
		return NewCoulomb(), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}

// LennardJonesPotential is 4*(r^-12 - r^-6) in reduced units, truncated
// (not shifted) at the cutoff.
type LennardJonesPotential struct {
	rc  float64
	rc2 float64
}

func NewLennardJones(rc float64) *LennardJonesPotential {
	return &LennardJonesPotential{rc: rc, rc2: rc * rc}
}

func (p *LennardJonesPotential) Kind() Kind         { return LennardJones }
func (p *LennardJonesPotential) Cutoff() float64    { return p.rc }
func (p *LennardJonesPotential) NeedsCharges() bool { return false }
func (p *LennardJonesPotential) sealed()            {}

func (p *LennardJonesPotential) Pair(d2 float64, _, _ int) float64 {
	if d2 >= p.rc2 {
		return 0
	}
	r6 := d2 * d2 * d2
	r12 := r6 * r6
	return 4 * (1/r12 - 1/r6)
}

// CoulombPotential is the unscreened q_i*q_j/r interaction.
type CoulombPotential struct{}

func NewCoulomb() *CoulombPotential { return &CoulombPotential{} }

func (p *CoulombPotential) Kind() Kind         { return Coulomb }
func (p *CoulombPotential) Cutoff() float64    { return math.Inf(1) }
func (p *CoulombPotential) NeedsCharges() bool { return true }
func (p *CoulombPotential) sealed()            {}

func (p *CoulombPotential) Pair(d2 float64, qi, qj int) float64 {
	return float64(qi*qj) / math.Sqrt(d2)
}
