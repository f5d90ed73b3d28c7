//go:build cuda

package compute

/*
#cgo CFLAGS: -I/opt/cuda/include
#cgo LDFLAGS: -L/opt/cuda/lib64 -L${SRCDIR} -lcudart -lmckernels -lstdc++
#include <stdlib.h>

extern int mc_device_count();
extern const char* mc_device_name_get();
extern int mc_kernel_build();
extern int mc_write(float* nearest, float* charges, int n);
extern int mc_dispatch(int n, int kind, float box, float half, float rc, float* elapsed_ms);
extern int mc_read(float* partial, int n);
extern void mc_release();
*/
import "C"

import (
	"fmt"
	"time"
	"unsafe"
)

type CUDADevice struct {
	name string
	n    int
}

func openCUDADevice() (Device, error) {
	if int(C.mc_device_count()) == 0 {
		return nil, fmt.Errorf("%w: no cuda device", ErrDeviceNotFound)
	}
	name := C.GoString(C.mc_device_name_get())
	if status := int(C.mc_kernel_build()); status != 0 {
		return nil, fmt.Errorf("%w: cuda status %d", ErrKernelBuild, status)
	}
	return &CUDADevice{name: name}, nil
}

func (c *CUDADevice) Name() string { return "cuda (" + c.name + ")" }
func (c *CUDADevice) Release()     { C.mc_release() }

func (c *CUDADevice) Write(nearest, charges []float32) error {
	n := len(nearest) / 3
	if n == 0 {
		return fmt.Errorf("%w: empty upload", ErrSizeMismatch)
	}
	var q *C.float
	if charges != nil {
		q = (*C.float)(unsafe.Pointer(&charges[0]))
	}
	if status := int(C.mc_write((*C.float)(unsafe.Pointer(&nearest[0])), q, C.int(n))); status != 0 {
		return fmt.Errorf("cuda write: status %d", status)
	}
	c.n = n
	return nil
}

func (c *CUDADevice) Dispatch(n int, p KernelParams) (time.Duration, error) {
	if n != c.n {
		return 0, fmt.Errorf("%w: dispatch of %d over %d uploaded particles", ErrSizeMismatch, n, c.n)
	}
	var ms C.float
	status := int(C.mc_dispatch(C.int(n), C.int(p.Kind), C.float(p.BoxSize), C.float(p.HalfBox), C.float(p.Cutoff), &ms))
	elapsed := time.Duration(float64(ms) * float64(time.Millisecond))
	if status != 0 {
		return elapsed, fmt.Errorf("cuda dispatch: status %d", status)
	}
	return elapsed, nil
}

func (c *CUDADevice) Read(partial []float32) error {
	if len(partial) != c.n {
		return fmt.Errorf("%w: read %d of %d partials", ErrSizeMismatch, len(partial), c.n)
	}
	if status := int(C.mc_read((*C.float)(unsafe.Pointer(&partial[0])), C.int(c.n))); status != 0 {
		return fmt.Errorf("cuda read: status %d", status)
	}
	return nil
}
