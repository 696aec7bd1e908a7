package cursescell

import (
	"fmt"
	"runtime"
	"unsafe"
)

type bufferKind uint8

const (
	// bufferOwned memory was allocated here and is dropped on release.
	bufferOwned bufferKind = iota
	// bufferPooled memory was rented from a BufferPool and goes back on release.
	bufferPooled
	// bufferBorrowed memory belongs to the caller or the native library.
	bufferBorrowed
)

func (k bufferKind) String() string {
	switch k {
	case bufferOwned:
		return "owned"
	case bufferPooled:
		return "pooled"
	default:
		return "borrowed"
	}
}

// BufferState is the memory backing a cell or cell string.
// It holds room for Capacity cells, plus one terminator cell when Terminated
// is true. The region must not be touched after Release.
type BufferState struct {
	data       []byte
	cellSize   int
	capacity   int
	terminated bool
	kind       bufferKind
	pool       *BufferPool
	released   bool
}

func newBufferState(data []byte, cellSize, capacity int, terminated bool, kind bufferKind, pool *BufferPool) *BufferState {
	return &BufferState{
		data:       data,
		cellSize:   cellSize,
		capacity:   capacity,
		terminated: terminated,
		kind:       kind,
		pool:       pool,
	}
}

// regionSize returns the bytes needed for capacity cells and an optional terminator.
func regionSize(cellSize, capacity int, terminated bool) int {
	n := capacity
	if terminated {
		n++
	}
	return n * cellSize
}

// ForeignBuffer borrows a native region of capacity cells (plus the terminator cell when terminated).
// The caller keeps ownership; Release only detaches the view.
func ForeignBuffer(p unsafe.Pointer, cellSize, capacity int, terminated bool) (*BufferState, error) {
	if p == nil || cellSize <= 0 || capacity < 0 {
		return nil, fmt.Errorf("%w: invalid foreign region", ErrBufferTooSmall)
	}
	data := unsafe.Slice((*byte)(p), regionSize(cellSize, capacity, terminated))
	return newBufferState(data, cellSize, capacity, terminated, bufferBorrowed, nil), nil
}

// Capacity returns the number of cells the buffer holds, excluding the terminator.
func (b *BufferState) Capacity() int {
	return b.capacity
}

// Terminated returns true if a terminator cell is reserved after Capacity cells.
func (b *BufferState) Terminated() bool {
	return b.terminated
}

// CellSize returns the size of one cell in bytes.
func (b *BufferState) CellSize() int {
	return b.cellSize
}

// Len returns the region size in bytes, or 0 after release.
func (b *BufferState) Len() int {
	return len(b.Bytes())
}

// Bytes returns the whole region, or nil after release.
func (b *BufferState) Bytes() []byte {
	if b == nil || b.released {
		return nil
	}
	return b.data
}

// Owned returns true if the region was allocated by this package.
func (b *BufferState) Owned() bool {
	return b.kind == bufferOwned
}

// Pooled returns true if the region was rented from a BufferPool.
func (b *BufferState) Pooled() bool {
	return b.kind == bufferPooled
}

// Released returns true once Release has been called.
func (b *BufferState) Released() bool {
	return b.released
}

// Release gives the region back to its owner. It is safe to call more than once.
func (b *BufferState) Release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	if b.kind == bufferPooled && b.pool != nil {
		b.pool.put(b.data)
	}
	b.data = nil
}

// Borrow pins the region and passes its address to fn for the duration of one
// foreign call. The pin is dropped on every return path, including panics.
func (b *BufferState) Borrow(fn func(p unsafe.Pointer, n int) error) error {
	if b == nil || b.released {
		return ErrBufferReleased
	}
	if len(b.data) == 0 {
		return fn(nil, 0)
	}
	var pinner runtime.Pinner
	defer pinner.Unpin()
	p := unsafe.Pointer(&b.data[0])
	pinner.Pin(p)
	return fn(p, len(b.data))
}

// cell returns the native image of cell i; i may address the terminator slot.
func (b *BufferState) cell(i int) []byte {
	off := i * b.cellSize
	return b.data[off : off+b.cellSize]
}

// slots returns the number of cell slots including the terminator.
func (b *BufferState) slots() int {
	if b.terminated {
		return b.capacity + 1
	}
	return b.capacity
}
