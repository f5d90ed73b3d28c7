package experiment

import (
	"fmt"

	"github.com/san-kum/mcsim/internal/compute"
)

// Registry names the backend configurations the bench command compares.
type Registry struct {
	backends map[string]func(workers int) (compute.Backend, error)
	order    []string
}

func NewRegistry() *Registry {
	r := &Registry{
		backends: make(map[string]func(int) (compute.Backend, error)),
	}

	r.add("cpu-serial", func(int) (compute.Backend, error) {
		return compute.NewCPUBackend(1), nil
	})
	r.add("cpu", func(workers int) (compute.Backend, error) {
		return compute.NewCPUBackend(workers), nil
	})
	r.add("device-host", func(workers int) (compute.Backend, error) {
		return compute.Select(compute.KindDevice, compute.Options{Workers: workers, Device: "host"})
	})
	r.add("device-cuda", func(workers int) (compute.Backend, error) {
		return compute.Select(compute.KindDevice, compute.Options{Workers: workers, Device: "cuda"})
	})

	return r
}

func (r *Registry) add(name string, fn func(int) (compute.Backend, error)) {
	r.backends[name] = fn
	r.order = append(r.order, name)
}

func (r *Registry) GetBackend(name string, workers int) (compute.Backend, error) {
	fn, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	return fn(workers)
}

// ListBackends returns names in registration order.
func (r *Registry) ListBackends() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
