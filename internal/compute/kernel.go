package compute

import (
	"math"

	"github.com/san-kum/mcsim/internal/potential"
)

// KernelParams are the scalar arguments of the energy kernel.
type KernelParams struct {
	Kind    potential.Kind
	BoxSize float32
	HalfBox float32
	Cutoff  float32
}

func kernelParams(req Request) KernelParams {
	p := KernelParams{
		Kind:    req.Potential.Kind(),
		BoxSize: float32(req.Box.Size),
		HalfBox: float32(req.Box.Half),
	}
	if rc := req.Potential.Cutoff(); !math.IsInf(rc, 1) {
		p.Cutoff = float32(rc)
	}
	return p
}

func wrap32(d, size, half float32) float32 {
	if d > half {
		return d - size
	}
	if d < -half {
		return d + size
	}
	return d
}

// energyKernel is the work item for particle gid: it sums the interaction of
// gid with every other particle into out[gid]. Each pair is therefore seen
// twice across the whole dispatch. nearest is packed xyz in single precision
// as on the device.
func energyKernel(gid int, nearest, charges, out []float32, n int, p KernelParams) {
	xi, yi, zi := nearest[gid*3], nearest[gid*3+1], nearest[gid*3+2]
	rc2 := p.Cutoff * p.Cutoff

	var e float32
	for j := 0; j < n; j++ {
		if j == gid {
			continue
		}
		x := wrap32(nearest[j*3]-xi, p.BoxSize, p.HalfBox)
		y := wrap32(nearest[j*3+1]-yi, p.BoxSize, p.HalfBox)
		z := wrap32(nearest[j*3+2]-zi, p.BoxSize, p.HalfBox)
		d2 := x*x + y*y + z*z

		switch p.Kind {
		case potential.LennardJones:
			if d2 < rc2 {
				r6 := d2 * d2 * d2
				r12 := r6 * r6
				e += 4 * (1/r12 - 1/r6)
			}
		case potential.Coulomb:
			e += charges[gid] * charges[j] / float32(math.Sqrt(float64(d2)))
		}
	}
	out[gid] = e
}
