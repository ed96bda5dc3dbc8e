package buffer

import "sync"

// Pool provides sync.Pool-based Block reuse to reduce GC pressure
// in real-time processing loops.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &Block{}
			},
		},
	}
}

// Get returns a silent Block with the requested shape.
// Callers must return it via Put when done.
func (p *Pool) Get(channels, frames int) *Block {
	b := p.pool.Get().(*Block)
	b.Resize(channels, frames)
	return b
}

// Put returns a Block to the pool for reuse.
// The caller must not use the block after calling Put. Blocks built with
// FromChannels wrap caller memory and are not pooled.
func (p *Pool) Put(b *Block) {
	if b == nil || b.wrapped {
		return
	}
	p.pool.Put(b)
}
