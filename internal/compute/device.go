package compute

import (
	"fmt"
	"strings"
	"time"
)

// Device is an accelerator with a built energy kernel. Calls are issued in
// the order Write, Dispatch, Read and each one completes before returning.
type Device interface {
	Name() string
	// Write uploads packed xyz minimum images and, when non-nil, charges.
	Write(nearest, charges []float32) error
	// Dispatch runs one work item per particle and returns the kernel time.
	Dispatch(n int, p KernelParams) (time.Duration, error)
	// Read downloads the per-particle partial energies into partial.
	Read(partial []float32) error
	Release()
}

// OpenDevice discovers the named platform and builds the energy kernel on it.
func OpenDevice(name string, workers int) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "host":
		return NewHostDevice(workers)
	case "cuda":
		return openCUDADevice()
	default:
		return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
}
