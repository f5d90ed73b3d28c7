//go:build !cuda

package compute

import "fmt"

func openCUDADevice() (Device, error) {
	return nil, fmt.Errorf("%w: cuda support not built (rebuild with -tags cuda)", ErrDeviceNotFound)
}
