package particles

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// LatticeSpec describes the initial cubic grid.
type LatticeSpec struct {
	DistToEdge float64
	Step       float64
	Count      int
}

// NewLattice places Count particles on a regular grid spanning
// [-(Size-DistToEdge)/2, (Size-DistToEdge)/2) on each axis, x outermost and z
// innermost. Grid coordinates are produced by repeated addition of Step so
// the enumeration is reproducible bit for bit. Charged systems alternate -1
// (even index) and +1 (odd index).
func NewLattice(box Box, spec LatticeSpec, charged bool) (*System, error) {
	if !(spec.Step > 0) {
		return nil, fmt.Errorf("%w: initial_dist_by_one_axis=%g", ErrInvalidLattice, spec.Step)
	}
	if spec.Count <= 0 {
		return nil, fmt.Errorf("%w: particles=%d", ErrInvalidLattice, spec.Count)
	}

	lo := -(box.Size - spec.DistToEdge) / 2
	hi := (box.Size - spec.DistToEdge) / 2

	positions := make([]r3.Vec, 0, spec.Count)
fill:
	for x := lo; x < hi; x += spec.Step {
		for y := lo; y < hi; y += spec.Step {
			for z := lo; z < hi; z += spec.Step {
				if len(positions) == spec.Count {
					break fill
				}
				positions = append(positions, r3.Vec{X: x, Y: y, Z: z})
			}
		}
	}

	if len(positions) < spec.Count {
		return nil, &LatticeError{
			Count:      len(positions),
			Want:       spec.Count,
			BoxSize:    box.Size,
			DistToEdge: spec.DistToEdge,
			Step:       spec.Step,
		}
	}

	sys := &System{Box: box, Positions: positions}
	if charged {
		sys.Charges = make([]int, spec.Count)
		for i := range sys.Charges {
			if i&1 == 1 {
				sys.Charges[i] = 1
			} else {
				sys.Charges[i] = -1
			}
		}
	}
	return sys, nil
}
