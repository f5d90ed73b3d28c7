package compute

import (
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
)

// OffloadBackend evaluates energy on a Device. Every particle sums against
// all others, so the host halves the grand total. One evaluation is exactly
// one write, one dispatch and one blocking read; evaluations never overlap.
type OffloadBackend struct {
	mu         sync.Mutex
	dev        Device
	name       string
	nearest    []float32
	charges    []float32
	partial    []float32
	sum        []float64
	deviceTime time.Duration
}

func NewOffloadBackend(dev Device) *OffloadBackend {
	return &OffloadBackend{dev: dev, name: "device: " + dev.Name()}
}

func (o *OffloadBackend) Name() string { return o.name }

func (o *OffloadBackend) Available() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dev != nil
}

func (o *OffloadBackend) DeviceTime() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deviceTime
}

func (o *OffloadBackend) Cleanup() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dev != nil {
		o.dev.Release()
		o.dev = nil
	}
}

func (o *OffloadBackend) Energy(req Request) (float64, error) {
	if err := req.validate(); err != nil {
		return 0, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dev == nil {
		return 0, ErrClosed
	}

	n := len(req.Images)
	o.resize(n)
	for i, v := range req.Images {
		o.nearest[i*3] = float32(v.X)
		o.nearest[i*3+1] = float32(v.Y)
		o.nearest[i*3+2] = float32(v.Z)
	}

	var charges []float32
	if req.Potential.NeedsCharges() {
		for i, q := range req.Charges {
			o.charges[i] = float32(q)
		}
		charges = o.charges
	}

	if err := o.dev.Write(o.nearest, charges); err != nil {
		return 0, fmt.Errorf("write positions: %w", err)
	}
	elapsed, err := o.dev.Dispatch(n, kernelParams(req))
	o.deviceTime += elapsed
	if err != nil {
		return 0, fmt.Errorf("dispatch kernel: %w", err)
	}
	if err := o.dev.Read(o.partial); err != nil {
		return 0, fmt.Errorf("read partial energies: %w", err)
	}

	for i, e := range o.partial {
		o.sum[i] = float64(e)
	}
	return floats.Sum(o.sum) / 2, nil
}

func (o *OffloadBackend) resize(n int) {
	if len(o.partial) == n {
		return
	}
	o.nearest = make([]float32, n*3)
	o.charges = make([]float32, n)
	o.partial = make([]float32, n)
	o.sum = make([]float64, n)
}
