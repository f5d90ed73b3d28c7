package particles

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBox indicates a non-positive or non-finite box edge.
	ErrInvalidBox = errors.New("particles: invalid box size")

	// ErrInvalidLattice indicates a lattice spec that cannot enumerate points.
	ErrInvalidLattice = errors.New("particles: invalid lattice parameters")

	// ErrLatticeTooSmall indicates the grid holds fewer points than requested.
	ErrLatticeTooSmall = errors.New("particles: lattice too small for particle count")
)

// LatticeError reports a lattice that ran out of grid points.
type LatticeError struct {
	Count      int
	Want       int
	BoxSize    float64
	DistToEdge float64
	Step       float64
}

func (e *LatticeError) Error() string {
	return fmt.Sprintf("error decrease initial_dist parameter, count is %d particles_count is %d (box_size=%g initial_dist_to_edge=%g initial_dist_by_one_axis=%g)",
		e.Count, e.Want, e.BoxSize, e.DistToEdge, e.Step)
}

func (e *LatticeError) Unwrap() error {
	return ErrLatticeTooSmall
}
