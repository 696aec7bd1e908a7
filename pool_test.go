package cursescell

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	tests := []struct {
		size  int
		class int
	}{
		{0, 0},
		{1, 0},
		{64, 0},
		{65, 1},
		{128, 1},
		{129, 2},
		{1 << 21, 15},
		{1<<21 + 1, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.class, sizeClass(tt.size), "size %d", tt.size)
	}
}

func TestPoolRentsZeroedMemory(t *testing.T) {
	p := NewBufferPool()

	b := p.rent(100)
	require.Len(t, b, 100)
	for i := range b {
		b[i] = 0xff
	}
	p.put(b)

	b = p.rent(90)
	require.Len(t, b, 90)
	assert.Equal(t, make([]byte, 90), b)
	p.put(b)

	assert.Zero(t, p.Outstanding())
}

func TestPoolOversizedRegions(t *testing.T) {
	p := NewBufferPool()
	b := p.rent(1<<21 + 10)
	assert.Len(t, b, 1<<21+10)
	assert.EqualValues(t, 1, p.Outstanding())
	p.put(b)
	assert.Zero(t, p.Outstanding())
}

func TestPoolConcurrentUse(t *testing.T) {
	f, err := NewFactory(Wide32)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s, err := f.Text("concurrent", AttrBold, ColorPair(i))
				if !assert.NoError(t, err) {
					return
				}
				text, err := s.Text()
				assert.NoError(t, err)
				assert.Equal(t, "concurrent", text)
				s.Release()
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, f.Pool().Outstanding())
}

func TestBufferStateRelease(t *testing.T) {
	f, err := NewFactory(Narrow)
	require.NoError(t, err)

	buf, err := f.CreateBuffer(4, true)
	require.NoError(t, err)
	assert.True(t, buf.Pooled())
	assert.Equal(t, 20, buf.Len())
	assert.EqualValues(t, 1, f.Pool().Outstanding())

	buf.Release()
	buf.Release()
	assert.True(t, buf.Released())
	assert.Nil(t, buf.Bytes())
	assert.Zero(t, buf.Len())
	assert.Zero(t, f.Pool().Outstanding(), "returned exactly once")

	err = buf.Borrow(func(unsafe.Pointer, int) error { return nil })
	assert.ErrorIs(t, err, ErrBufferReleased)

	_, err = f.BuildFromText(buf, "a", AttrNormal, 0)
	assert.ErrorIs(t, err, ErrBufferReleased)
}

func TestBufferStateKinds(t *testing.T) {
	f, err := NewFactory(Wide16)
	require.NoError(t, err)

	owned, err := f.OwnedBuffer(2, false)
	require.NoError(t, err)
	assert.True(t, owned.Owned())
	assert.Equal(t, 40, owned.Len())

	raw := make([]byte, 65)
	wrapped, err := f.WrapBuffer(raw, true)
	require.NoError(t, err)
	assert.False(t, wrapped.Owned())
	assert.False(t, wrapped.Pooled())
	assert.Equal(t, 2, wrapped.Capacity(), "three whole cells, one reserved")

	_, err = f.WrapBuffer(make([]byte, 10), true)
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	_, err = f.CreateBuffer(-1, false)
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	foreign, err := ForeignBuffer(unsafe.Pointer(&raw[0]), 20, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 60, foreign.Len())
	foreign.Release()
	assert.Equal(t, byte(0), raw[0], "releasing a foreign view leaves the memory alone")

	_, err = ForeignBuffer(nil, 20, 1, false)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestBufferStateBorrow(t *testing.T) {
	f, err := NewFactory(Narrow)
	require.NoError(t, err)
	buf, err := f.OwnedBuffer(3, false)
	require.NoError(t, err)

	err = buf.Borrow(func(p unsafe.Pointer, n int) error {
		assert.NotNil(t, p)
		assert.Equal(t, 12, n)
		*(*byte)(p) = 'q'
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, byte('q'), buf.Bytes()[0])

	empty, err := f.OwnedBuffer(0, false)
	require.NoError(t, err)
	err = empty.Borrow(func(p unsafe.Pointer, n int) error {
		assert.Nil(t, p)
		assert.Zero(t, n)
		return nil
	})
	assert.NoError(t, err)
}
