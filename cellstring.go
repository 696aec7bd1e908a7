package cursescell

import (
	"bytes"
	"fmt"
	"iter"
	"unicode/utf16"
	"unsafe"
)

// CellString is a run of cells in native layout, backed by a BufferState.
// When the buffer reserves a terminator, the cell at index Len is always the
// zero cell. Cells past Len are slack and never observed.
type CellString struct {
	layout Layout
	codec  Codec
	buf    *BufferState
	length int
	chunk  int
}

// stringOver wraps buf as a string of length cells and writes its terminator.
func (f *Factory) stringOver(buf *BufferState, length int) *CellString {
	s := &CellString{
		layout: f.layout,
		codec:  f.codec,
		buf:    buf,
		length: length,
		chunk:  f.chunk,
	}
	s.terminate()
	return s
}

func (s *CellString) terminate() {
	if s.buf.terminated {
		clear(s.buf.cell(s.length))
	}
}

// Layout returns the layout the cells were built under.
func (s *CellString) Layout() Layout {
	return s.layout
}

// Len returns the number of logical cells.
func (s *CellString) Len() int {
	return s.length
}

// Cap returns the number of cells the buffer can hold.
func (s *CellString) Cap() int {
	return s.buf.Capacity()
}

// Terminated returns true if the string is followed by a zero cell.
func (s *CellString) Terminated() bool {
	return s.buf.Terminated()
}

// Buffer returns the backing buffer.
func (s *CellString) Buffer() *BufferState {
	return s.buf
}

// Bytes returns the native image of the logical cells, without terminator or slack.
// The slice aliases the buffer.
func (s *CellString) Bytes() []byte {
	b := s.buf.Bytes()
	if b == nil {
		return nil
	}
	return b[:s.length*s.buf.cellSize]
}

// At returns cell i.
func (s *CellString) At(i int) (Cell, error) {
	if err := s.check(i); err != nil {
		return nil, err
	}
	return s.codec.Unmarshal(s.buf.cell(i))
}

// Set replaces cell i. c must belong to the string's layout and carry a glyph:
// a glyph-less cell would end the run early.
func (s *CellString) Set(i int, c Cell) error {
	if err := s.check(i); err != nil {
		return err
	}
	img := make([]byte, s.codec.CellSize())
	if err := s.codec.Marshal(img, c); err != nil {
		return err
	}
	if s.codec.isTerminator(img) {
		return fmt.Errorf("%w: cell %d has no glyph", ErrInvalidCast, i)
	}
	copy(s.buf.cell(i), img)
	return nil
}

func (s *CellString) check(i int) error {
	if s.buf.Released() {
		return ErrBufferReleased
	}
	if i < 0 || i >= s.length {
		return fmt.Errorf("cursescell: cell index %d out of range [0, %d)", i, s.length)
	}
	return nil
}

// All iterates over the logical cells.
func (s *CellString) All() iter.Seq2[int, Cell] {
	return func(yield func(int, Cell) bool) {
		if s.buf.Released() {
			return
		}
		for i := 0; i < s.length; i++ {
			c, err := s.codec.Unmarshal(s.buf.cell(i))
			if err != nil {
				return
			}
			if !yield(i, c) {
				return
			}
		}
	}
}

// units appends the glyph units of every logical cell to dst.
func (s *CellString) units(dst []byte) []byte {
	for i := 0; i < s.length; i++ {
		dst = s.codec.appendGlyph(dst, s.buf.cell(i))
	}
	return dst
}

// Text decodes the glyphs of the logical cells to a Go string.
// Null glyphs (attribute-only cells) contribute nothing.
func (s *CellString) Text() (string, error) {
	if s.buf.Released() {
		return "", ErrBufferReleased
	}
	units := s.units(make([]byte, 0, s.length*s.codec.unitSize()))
	if err := s.codec.checkUnits(units); err != nil {
		return "", err
	}
	out, err := transcode(s.codec.Encoding().NewDecoder(), make([]byte, 0, len(units)), units, s.chunk, ErrIncompleteDecoding)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// TextUTF16 decodes the glyphs of the logical cells to UTF-16 units.
func (s *CellString) TextUTF16() ([]uint16, error) {
	text, err := s.Text()
	if err != nil {
		return nil, err
	}
	return utf16.Encode([]rune(text)), nil
}

// DisplayWidth returns the number of columns the text occupies.
func (s *CellString) DisplayWidth() (int, error) {
	text, err := s.Text()
	if err != nil {
		return 0, err
	}
	return StringWidth(text), nil
}

// Equal reports whether s and o hold the same layout and bit-identical
// logical cells. Capacity and slack are ignored.
func (s *CellString) Equal(o *CellString) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.buf.Released() || o.buf.Released() {
		return false
	}
	if !s.layout.Same(o.layout) || s.length != o.length {
		return false
	}
	return bytes.Equal(s.Bytes(), o.Bytes())
}

// Release releases the backing buffer. It is safe to call more than once.
func (s *CellString) Release() {
	s.buf.Release()
}

// FromRun copies the cells of b up to its first terminator cell.
// b must contain a terminator; the scan never reads past it.
func (f *Factory) FromRun(b []byte) (*CellString, error) {
	size := f.codec.CellSize()
	n := 0
	for {
		off := n * size
		if off+size > len(b) {
			return nil, fmt.Errorf("%w: no terminator cell in %d bytes", ErrIncompleteDecoding, len(b))
		}
		if f.codec.isTerminator(b[off : off+size]) {
			break
		}
		n++
	}
	return f.copyRun(b[:n*size], n)
}

// FromNativeRun copies a terminated native cell run starting at p.
// Cells are read one at a time up to and including the terminator.
func (f *Factory) FromNativeRun(p unsafe.Pointer) (*CellString, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil cell run", ErrIncompleteDecoding)
	}
	size := f.codec.CellSize()
	n := 0
	for !f.codec.isTerminator(unsafe.Slice((*byte)(unsafe.Add(p, n*size)), size)) {
		n++
	}
	return f.copyRun(unsafe.Slice((*byte)(p), n*size), n)
}

func (f *Factory) copyRun(cells []byte, n int) (*CellString, error) {
	buf, err := f.OwnedBuffer(n, true)
	if err != nil {
		return nil, err
	}
	copy(buf.data, cells)
	return f.stringOver(buf, n), nil
}
