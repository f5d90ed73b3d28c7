package particles

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is identified only by its index in a System.
type Particle struct {
	Position r3.Vec
	Charge   int
}

// System is a fixed-size ordered set of particles in a Box.
//
// Positions are stored unwrapped: accepted moves may carry a particle outside
// the box and the periodic image is recomputed on every evaluation. Charges
// are fixed for the run and shared between clones; nil means uncharged.
type System struct {
	Box       Box
	Positions []r3.Vec
	Charges   []int
}

func (s *System) Len() int { return len(s.Positions) }

func (s *System) At(i int) Particle {
	p := Particle{Position: s.Positions[i]}
	if s.Charges != nil {
		p.Charge = s.Charges[i]
	}
	return p
}

// Clone copies the positions. Charges are shared.
func (s *System) Clone() *System {
	pos := make([]r3.Vec, len(s.Positions))
	copy(pos, s.Positions)
	return &System{Box: s.Box, Positions: pos, Charges: s.Charges}
}

// CopyFrom overwrites the positions of s with those of src.
func (s *System) CopyFrom(src *System) error {
	if len(s.Positions) != len(src.Positions) {
		return fmt.Errorf("particles: size mismatch %d != %d", len(s.Positions), len(src.Positions))
	}
	copy(s.Positions, src.Positions)
	return nil
}

// Images writes the minimum image of every position into dst, growing it if
// needed, and returns it.
func (s *System) Images(dst []r3.Vec) []r3.Vec {
	n := len(s.Positions)
	if cap(dst) < n {
		dst = make([]r3.Vec, n)
	}
	dst = dst[:n]
	for i, p := range s.Positions {
		dst[i] = s.Box.Image(p)
	}
	return dst
}
