package compute

import (
	"fmt"
	"runtime"
	"time"

	"github.com/san-kum/mcsim/internal/potential"
	"golang.org/x/sync/errgroup"
)

const workGroupSize = 64

// HostDevice executes the energy kernel in process. It keeps its own copies
// of the input and output buffers so the transfer steps behave as they do on
// a discrete device.
type HostDevice struct {
	workers int
	nearest []float32
	charges []float32
	output  []float32
}

func NewHostDevice(workers int) (*HostDevice, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &HostDevice{workers: workers}, nil
}

func (h *HostDevice) Name() string { return fmt.Sprintf("host (%d compute units)", h.workers) }

func (h *HostDevice) Release() {
	h.nearest, h.charges, h.output = nil, nil, nil
}

func (h *HostDevice) Write(nearest, charges []float32) error {
	if len(nearest)%3 != 0 {
		return fmt.Errorf("%w: %d position floats", ErrSizeMismatch, len(nearest))
	}
	n := len(nearest) / 3
	if charges != nil && len(charges) != n {
		return fmt.Errorf("%w: %d charges for %d particles", ErrSizeMismatch, len(charges), n)
	}
	h.nearest = append(h.nearest[:0], nearest...)
	if charges != nil {
		h.charges = append(h.charges[:0], charges...)
	}
	if cap(h.output) < n {
		h.output = make([]float32, n)
	}
	h.output = h.output[:n]
	return nil
}

func (h *HostDevice) Dispatch(n int, p KernelParams) (time.Duration, error) {
	if n*3 != len(h.nearest) {
		return 0, fmt.Errorf("%w: dispatch of %d over %d uploaded particles", ErrSizeMismatch, n, len(h.nearest)/3)
	}
	if p.Kind == potential.Coulomb && len(h.charges) != n {
		return 0, fmt.Errorf("%w: charges not uploaded", ErrSizeMismatch)
	}

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(h.workers)
	for base := 0; base < n; base += workGroupSize {
		lo, hi := base, min(base+workGroupSize, n)
		g.Go(func() error {
			for gid := lo; gid < hi; gid++ {
				energyKernel(gid, h.nearest, h.charges, h.output, n, p)
			}
			return nil
		})
	}
	err := g.Wait()
	return time.Since(start), err
}

func (h *HostDevice) Read(partial []float32) error {
	if len(partial) != len(h.output) {
		return fmt.Errorf("%w: read %d of %d partials", ErrSizeMismatch, len(partial), len(h.output))
	}
	copy(partial, h.output)
	return nil
}
