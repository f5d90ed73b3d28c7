package compute

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/san-kum/mcsim/internal/particles"
	"github.com/san-kum/mcsim/internal/potential"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrDeviceNotFound = errors.New("compute: no compute device found")
	ErrKernelBuild    = errors.New("compute: kernel build failed")
	ErrSizeMismatch   = errors.New("compute: buffer size mismatch")
	ErrClosed         = errors.New("compute: backend closed")
	ErrUnknownBackend = errors.New("compute: unknown backend")
)

// Request is one energy evaluation. Images must already be minimum images.
type Request struct {
	Images    []r3.Vec
	Charges   []int
	Box       particles.Box
	Potential potential.Potential
}

func (r Request) validate() error {
	if r.Potential == nil {
		return errors.New("compute: request has no potential")
	}
	if r.Potential.NeedsCharges() && len(r.Charges) != len(r.Images) {
		return fmt.Errorf("%w: %d charges for %d particles", ErrSizeMismatch, len(r.Charges), len(r.Images))
	}
	return nil
}

// Backend sums pair energies. Energy blocks until the total is known.
type Backend interface {
	Name() string
	Available() bool
	Energy(req Request) (float64, error)
	// DeviceTime is the accumulated time spent inside device dispatches.
	DeviceTime() time.Duration
	Cleanup()
}

type Kind string

const (
	KindCPU    Kind = "cpu"
	KindDevice Kind = "device"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindCPU:
		return KindCPU, nil
	case KindDevice:
		return KindDevice, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

type Options struct {
	Workers int
	Device  string
}

// Select builds the backend for kind. Device bring-up failures are returned
// unwrapped from OpenDevice and are fatal to the caller.
func Select(kind Kind, opts Options) (Backend, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	switch kind {
	case KindCPU, "":
		return NewCPUBackend(opts.Workers), nil
	case KindDevice:
		dev, err := OpenDevice(opts.Device, opts.Workers)
		if err != nil {
			return nil, err
		}
		return NewOffloadBackend(dev), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}
