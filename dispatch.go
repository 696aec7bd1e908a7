package cursescell

import (
	"fmt"
	"sync"
	"unsafe"

	"go.uber.org/zap"
)

// Dispatcher runs terminal primitives against a native library using the
// cell layout of its Factory. It does not serialize calls; callers that
// share a screen must hold their own lock.
type Dispatcher struct {
	factory    *Factory
	lib        Library
	binding    *binding
	logger     *zap.Logger
	middleware *Middleware

	mu     sync.RWMutex
	procs  map[string]Proc
	stdscr Handle
}

// DispatchOption configures a Dispatcher.
type DispatchOption func(*Dispatcher)

// WithMiddleware sets middleware for intercepting native calls.
// Each middleware receives the original parameters and a next function to call the default implementation.
func WithMiddleware(mw *Middleware) DispatchOption {
	return func(d *Dispatcher) {
		if d.middleware == nil {
			d.middleware = &Middleware{}
		}
		d.middleware.Merge(mw)
	}
}

// NewDispatcher binds lib to the layout of f.
func NewDispatcher(f *Factory, lib Library, opts ...DispatchOption) *Dispatcher {
	d := &Dispatcher{
		factory: f,
		lib:     lib,
		binding: f.binding,
		logger:  f.logger.Named("dispatch"),
		procs:   make(map[string]Proc),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Factory returns the factory the dispatcher encodes with.
func (d *Dispatcher) Factory() *Factory {
	return d.factory
}

// AddCell writes c at the cursor and advances it.
func (d *Dispatcher) AddCell(t Target, c Cell) error {
	return d.cellCall(PrimitiveAddCell, t, []Cell{c})
}

// InsertCell inserts c before the cursor.
func (d *Dispatcher) InsertCell(t Target, c Cell) error {
	return d.cellCall(PrimitiveInsertCell, t, []Cell{c})
}

// EchoCell writes c and refreshes the surface.
func (d *Dispatcher) EchoCell(t Target, c Cell) error {
	return d.cellCall(PrimitiveEchoCell, t, []Cell{c})
}

// SetBackground sets the background cell and applies it to every position.
func (d *Dispatcher) SetBackground(t Target, c Cell) error {
	return d.cellCall(PrimitiveSetBackground, t, []Cell{c})
}

// SetBackgroundDefault sets the background cell used for later writes.
func (d *Dispatcher) SetBackgroundDefault(t Target, c Cell) error {
	return d.cellCall(PrimitiveSetBackgroundDefault, t, []Cell{c})
}

// Border draws a border; nil cells select the library defaults.
func (d *Dispatcher) Border(t Target, left, right, top, bottom, topLeft, topRight, bottomLeft, bottomRight Cell) error {
	return d.cellCall(PrimitiveBorder, t, []Cell{left, right, top, bottom, topLeft, topRight, bottomLeft, bottomRight})
}

// Box draws a border with the given vertical and horizontal cells.
func (d *Dispatcher) Box(t Target, vertical, horizontal Cell) error {
	return d.cellCall(PrimitiveBox, t, []Cell{vertical, horizontal})
}

// HLine draws up to n copies of c to the right of the cursor.
func (d *Dispatcher) HLine(t Target, c Cell, n int) error {
	return d.cellCall(PrimitiveHLine, t, []Cell{c}, Int(n))
}

// VLine draws up to n copies of c below the cursor.
func (d *Dispatcher) VLine(t Target, c Cell, n int) error {
	return d.cellCall(PrimitiveVLine, t, []Cell{c}, Int(n))
}

// AddCells writes up to n cells of s without moving the cursor.
// A negative n, or one past the end of s, writes all of s.
func (d *Dispatcher) AddCells(t Target, s *CellString, n int) error {
	if err := checkString(s, d.factory.layout); err != nil {
		return err
	}
	if n < 0 || n > s.Len() {
		n = s.Len()
	}
	return s.buf.Borrow(func(p unsafe.Pointer, _ int) error {
		_, err := d.call(PrimitiveAddCells, t, Pointer(p), Int(n))
		return err
	})
}

// ReadCell returns the cell under the cursor.
func (d *Dispatcher) ReadCell(t Target) (Cell, error) {
	return d.binding.readCell(func(extra ...Arg) (Arg, error) {
		return d.call(PrimitiveReadCell, t, extra...)
	})
}

// Background returns the background cell.
func (d *Dispatcher) Background(t Target) (Cell, error) {
	return d.binding.readCell(func(extra ...Arg) (Arg, error) {
		return d.call(PrimitiveBackground, t, extra...)
	})
}

// ReadCells reads up to n cells starting at the cursor into buf.
// The library writes a terminator after the cells it read, so buf must have
// room for n cells plus one.
func (d *Dispatcher) ReadCells(t Target, buf *BufferState, n int) (*CellString, error) {
	if buf == nil || buf.Released() {
		return nil, ErrBufferReleased
	}
	if buf.CellSize() != d.factory.CellSize() {
		return nil, fmt.Errorf("%w: %d-byte cells used with %s layout", ErrInvalidCast, buf.CellSize(), d.factory.layout)
	}
	if n < 0 || n > buf.Capacity() || buf.slots() < n+1 {
		return nil, fmt.Errorf("%w: %d cells requested, capacity %d", ErrBufferTooSmall, n, buf.Capacity())
	}
	err := buf.Borrow(func(p unsafe.Pointer, _ int) error {
		_, err := d.call(PrimitiveReadCells, t, Pointer(p), Int(n))
		return err
	})
	if err != nil {
		return nil, err
	}
	length := 0
	for length < n && !d.binding.codec.isTerminator(buf.cell(length)) {
		length++
	}
	return d.factory.stringOver(buf, length), nil
}

// SetAttributes replaces the current attributes and color pair.
func (d *Dispatcher) SetAttributes(t Target, attrs Attr, pair ColorPair) error {
	_, err := d.call(PrimitiveSetAttributes, t, d.binding.attrArgs(attrs, pair)...)
	return err
}

// Unctrl returns the printable representation of c.
func (d *Dispatcher) Unctrl(t Target, c Cell) (string, error) {
	var text string
	err := d.binding.withCells([]Cell{c}, func(args []Arg) error {
		r, err := d.call(PrimitiveUnctrl, t, args...)
		if err != nil {
			return err
		}
		text, err = d.binding.nativeText(r.Pointer(), d.factory.chunk)
		return err
	})
	return text, err
}

// cellCall passes cells, then any plain arguments, to primitive p.
func (d *Dispatcher) cellCall(p Primitive, t Target, cells []Cell, extra ...Arg) error {
	return d.binding.withCells(cells, func(args []Arg) error {
		_, err := d.call(p, t, append(args, extra...)...)
		return err
	})
}

// call resolves the entry point of p for t, invokes it and checks its result.
func (d *Dispatcher) call(p Primitive, t Target, extra ...Arg) (Arg, error) {
	e := d.binding.entry(p)
	symbol, lead, err := t.resolve(e, d.stdscreen)
	if err != nil {
		return Arg{}, fmt.Errorf("%s: %w", p, err)
	}
	proc, err := d.lookup(symbol)
	if err != nil {
		d.logger.Debug("symbol resolution failed", zap.Stringer("primitive", p), zap.String("symbol", symbol), zap.Error(err))
		return Arg{}, err
	}

	c := Call{Primitive: p, Symbol: symbol, Target: t, Args: append(lead, extra...)}
	invoke := func(c Call) Arg { return proc.Call(c.Args...) }
	var r Arg
	if d.middleware != nil && d.middleware.Invoke != nil {
		r = d.middleware.Invoke(c, invoke)
	} else {
		r = invoke(c)
	}

	err = d.check(p, symbol, e.ret, r)
	d.factory.metrics.nativeCall(p, err)
	return r, err
}

func (d *Dispatcher) check(p Primitive, symbol string, kind retKind, r Arg) error {
	var code int32
	switch kind {
	case retVoid:
		return nil
	case retStatus:
		if r.Int32() != errSentinel {
			return nil
		}
		code = r.Int32()
	case retCell:
		if r.Uint32() != uint32(0xffffffff) {
			return nil
		}
		code = errSentinel
	case retPointer:
		if !r.IsNil() {
			return nil
		}
	}

	e := &NativeCallError{Primitive: p, Symbol: symbol, Code: code}
	if d.middleware != nil && d.middleware.Failure != nil {
		d.middleware.Failure(e, d.logFailure)
	} else {
		d.logFailure(e)
	}
	return e
}

func (d *Dispatcher) logFailure(e *NativeCallError) {
	d.logger.Debug("native call failed",
		zap.Stringer("primitive", e.Primitive),
		zap.String("symbol", e.Symbol),
		zap.Int32("code", e.Code),
	)
}

func (d *Dispatcher) lookup(symbol string) (Proc, error) {
	d.mu.RLock()
	p, ok := d.procs[symbol]
	d.mu.RUnlock()
	if ok {
		return p, nil
	}

	resolve := d.lib.Lookup
	var err error
	if d.middleware != nil && d.middleware.Resolve != nil {
		p, err = d.middleware.Resolve(symbol, resolve)
	} else {
		p, err = resolve(symbol)
	}
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.procs[symbol] = p
	d.mu.Unlock()
	return p, nil
}

func (d *Dispatcher) stdscreen() (Handle, error) {
	d.mu.RLock()
	h := d.stdscr
	d.mu.RUnlock()
	if h != 0 {
		return h, nil
	}
	h, err := d.lib.Stdscr()
	if err != nil {
		return 0, err
	}
	if h == 0 {
		return 0, fmt.Errorf("%w: stdscr is not initialized", ErrNativeCallFailed)
	}
	d.mu.Lock()
	d.stdscr = h
	d.mu.Unlock()
	return h, nil
}
