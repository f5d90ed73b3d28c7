package mc

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// PositionPool recycles position buffers of a fixed particle count so trial
// snapshots do not allocate every iteration.
type PositionPool struct {
	pool sync.Pool
	size int
}

func NewPositionPool(n int) *PositionPool {
	return &PositionPool{
		size: n,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]r3.Vec, n)
			},
		},
	}
}

func (p *PositionPool) Get() []r3.Vec {
	return p.pool.Get().([]r3.Vec)
}

// Put drops buffers of the wrong size.
func (p *PositionPool) Put(s []r3.Vec) {
	if len(s) == p.size {
		p.pool.Put(s)
	}
}

func (p *PositionPool) GetAndCopy(src []r3.Vec) []r3.Vec {
	dst := p.Get()
	copy(dst, src)
	return dst
}
