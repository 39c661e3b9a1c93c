// Package pool provides type-safe object pooling for fixgen.
// It wraps sync.Pool with a reset hook and ships a global byte buffer pool
// used by record serialization and archive assembly to keep allocations
// off the hot path.
package pool

import (
	"bytes"
	"sync"
)

// Pool represents a generic object pool with type safety.
// The pool is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

// New creates a new typed pool with custom allocation and reset functions.
// The reset function, if non-nil, is called before an object is returned
// to the pool.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool, allocating a fresh one if the
// pool is empty.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	p.pool.Put(obj)
}

// bufferPool holds reusable byte buffers for serialization and zip assembly.
var bufferPool = New(
	func() *bytes.Buffer { return &bytes.Buffer{} },
	func(b *bytes.Buffer) { b.Reset() },
)

// GetBuffer retrieves a reset byte buffer from the global pool.
func GetBuffer() *bytes.Buffer {
	return bufferPool.Get()
}

// PutBuffer returns a byte buffer to the global pool.
func PutBuffer(b *bytes.Buffer) {
	if b == nil {
		return
	}
	bufferPool.Put(b)
}
