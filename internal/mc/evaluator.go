package mc

import (
	"github.com/san-kum/mcsim/internal/compute"
	"github.com/san-kum/mcsim/internal/particles"
	"github.com/san-kum/mcsim/internal/potential"
	"gonum.org/v1/gonum/spatial/r3"
)

// Evaluator scores a system: it images every raw position into the box and
// hands the images to the backend. Not safe for concurrent use.
type Evaluator struct {
	pot     potential.Potential
	backend compute.Backend
	images  []r3.Vec
}

func NewEvaluator(pot potential.Potential, backend compute.Backend) *Evaluator {
	return &Evaluator{pot: pot, backend: backend}
}

func (e *Evaluator) Potential() potential.Potential { return e.pot }
func (e *Evaluator) Backend() compute.Backend       { return e.backend }

func (e *Evaluator) Energy(sys *particles.System) (float64, error) {
	e.images = sys.Images(e.images)
	return e.backend.Energy(compute.Request{
		Images:    e.images,
		Charges:   sys.Charges,
		Box:       sys.Box,
		Potential: e.pot,
	})
}
