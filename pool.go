package cursescell

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

const (
	minClassShift = 6 // 64 bytes
	poolClasses   = 16
)

// BufferPool rents zeroed byte regions for transient cell buffers.
// Regions are grouped by power-of-two size class; requests larger than the
// biggest class are allocated directly and dropped on return.
// It is safe for concurrent use.
type BufferPool struct {
	classes     [poolClasses]sync.Pool
	outstanding atomic.Int64
	metrics     *Metrics
}

// NewBufferPool creates an empty pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{}
}

// Outstanding returns the number of regions rented and not yet returned.
func (p *BufferPool) Outstanding() int64 {
	return p.outstanding.Load()
}

// sizeClass returns the class whose capacity fits size, or -1 if none does.
func sizeClass(size int) int {
	if size <= 1<<minClassShift {
		return 0
	}
	c := bits.Len(uint(size-1)) - minClassShift
	if c >= poolClasses {
		return -1
	}
	return c
}

func (p *BufferPool) rent(size int) []byte {
	p.outstanding.Add(1)
	p.metrics.bufferRented()

	class := sizeClass(size)
	if class < 0 {
		return make([]byte, size)
	}
	if v, ok := p.classes[class].Get().(*[]byte); ok {
		b := (*v)[:size]
		clear(b)
		return b
	}
	return make([]byte, size, 1<<(class+minClassShift))
}

func (p *BufferPool) put(b []byte) {
	p.outstanding.Add(-1)
	p.metrics.bufferReturned()

	class := sizeClass(cap(b))
	if class < 0 || cap(b) != 1<<(class+minClassShift) {
		return
	}
	b = b[:0]
	p.classes[class].Put(&b)
}
