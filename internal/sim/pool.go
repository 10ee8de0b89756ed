package sim

import "sync"

// StatePool recycles pose buffers of one fixed size.
type StatePool struct {
	pool sync.Pool
	size int
}

func NewStatePool(stateSize int) *StatePool {
	return &StatePool{
		size: stateSize,
		pool: sync.Pool{
			New: func() any {
				return make(State, stateSize)
			},
		},
	}
}

func (p *StatePool) Get() State {
	return p.pool.Get().(State)
}

// Put zeroes s and returns it to the pool. Buffers of the wrong size are
// dropped.
func (p *StatePool) Put(s State) {
	if len(s) != p.size {
		return
	}
	clear(s)
	p.pool.Put(s)
}
