package compute

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/floats"
)

const serialThreshold = 16

type cpuJob struct {
	req    *Request
	worker int
	out    []float64
	wg     *sync.WaitGroup
}

// CPUBackend reduces over unique pairs i>j with a fixed pool of workers
// started once and reused by every Energy call. Worker w owns outer indices
// w, w+workers, ...; partial sums are combined in worker order so a given
// worker count always yields the same total.
type CPUBackend struct {
	workers int
	jobs    chan cpuJob
	closed  atomic.Bool
	once    sync.Once
	// mu is held for reading while jobs are sent so Cleanup cannot close
	// the channel under an in-flight Energy call.
	mu sync.RWMutex
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	c := &CPUBackend{
		workers: workers,
		jobs:    make(chan cpuJob, workers),
	}
	for w := 0; w < workers; w++ {
		go c.work()
	}
	return c
}

func (c *CPUBackend) Name() string              { return fmt.Sprintf("cpu (%d workers)", c.workers) }
func (c *CPUBackend) Available() bool           { return !c.closed.Load() }
func (c *CPUBackend) DeviceTime() time.Duration { return 0 }
func (c *CPUBackend) Workers() int              { return c.workers }

func (c *CPUBackend) Cleanup() {
	c.once.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed.Store(true)
		close(c.jobs)
	})
}

func (c *CPUBackend) work() {
	for job := range c.jobs {
		job.out[job.worker] = pairSum(job.req, job.worker, c.workers)
		job.wg.Done()
	}
}

func (c *CPUBackend) Energy(req Request) (float64, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	if err := req.validate(); err != nil {
		return 0, err
	}

	if len(req.Images) < serialThreshold || c.workers == 1 {
		return pairSum(&req, 0, 1), nil
	}

	c.mu.RLock()
	if c.closed.Load() {
		c.mu.RUnlock()
		return 0, ErrClosed
	}
	partial := make([]float64, c.workers)
	var wg sync.WaitGroup
	wg.Add(c.workers)
	for w := 0; w < c.workers; w++ {
		c.jobs <- cpuJob{req: &req, worker: w, out: partial, wg: &wg}
	}
	c.mu.RUnlock()
	wg.Wait()

	return floats.Sum(partial), nil
}

// pairSum adds every pair (i, j<i) for i = start, start+stride, ...
func pairSum(req *Request, start, stride int) float64 {
	images := req.Images
	box := req.Box
	pot := req.Potential
	charged := pot.NeedsCharges()

	energy := 0.0
	for i := start; i < len(images); i += stride {
		qi := 0
		if charged {
			qi = req.Charges[i]
		}
		for j := 0; j < i; j++ {
			d := box.Separation(images[i], images[j])
			d2 := d.X*d.X + d.Y*d.Y + d.Z*d.Z

			qj := 0
			if charged {
				qj = req.Charges[j]
			}
			energy += pot.Pair(d2, qi, qj)
		}
	}
	return energy
}
