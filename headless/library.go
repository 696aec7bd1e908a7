package headless

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"unicode/utf16"

	"github.com/danielgatis/go-cursescell"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

const (
	DEFAULT_ROWS = 24
	DEFAULT_COLS = 80
)

// ErrNoWindow is returned for handles that do not name a window or pad.
var ErrNoWindow = errors.New("headless: no such window")

// window is a WINDOW or a pad.
type window struct {
	buf       *Buffer
	cursor    Cursor
	attrs     cursescell.Attr
	pair      cursescell.ColorPair
	bkgd      Cell
	pad       bool
	refreshes int
}

// Library is an in-process curses library.
// It exports the narrow entry points and, when built wide, the cchar_t ones,
// keeping cells in its own layout.
type Library struct {
	mu sync.Mutex

	layout   cursescell.Layout
	rows     int
	cols     int
	codePage *charmap.Charmap
	logger   *zap.Logger

	// factory builds cells in the library's layout; narrow converts chtype arguments
	factory *cursescell.Factory
	narrow  cursescell.Codec

	windows map[cursescell.Handle]*window
	next    cursescell.Handle
	stdscr  cursescell.Handle
	screen  cursescell.Handle

	failures map[string]bool
	calls    []string

	// static result buffer of unctrl, valid until the next call
	unctrl []byte
}

// Option configures a Library during construction.
type Option func(*Library)

// WithLayout sets the cell layout the library is built for.
// Defaults to wide cells with a 32-bit wchar_t.
func WithLayout(l cursescell.Layout) Option {
	return func(lib *Library) {
		lib.layout = l
	}
}

// WithSize sets the standard screen dimensions.
// Values <= 0 are replaced with defaults (24x80).
func WithSize(rows, cols int) Option {
	if rows <= 0 {
		rows = DEFAULT_ROWS
	}

	if cols <= 0 {
		cols = DEFAULT_COLS
	}

	return func(lib *Library) {
		lib.rows = rows
		lib.cols = cols
	}
}

// WithCodePage sets the code page of narrow glyphs.
func WithCodePage(cp *charmap.Charmap) Option {
	return func(lib *Library) {
		lib.codePage = cp
	}
}

// WithFailure makes the named entry points return their failure value.
func WithFailure(symbols ...string) Option {
	return func(lib *Library) {
		for _, s := range symbols {
			lib.failures[s] = true
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(lib *Library) {
		lib.logger = l
	}
}

// New creates a library with a standard screen and a screen handle.
func New(opts ...Option) (*Library, error) {
	lib := &Library{
		layout:   cursescell.Wide32,
		rows:     DEFAULT_ROWS,
		cols:     DEFAULT_COLS,
		codePage: charmap.ISO8859_1,
		logger:   zap.NewNop(),
		windows:  make(map[cursescell.Handle]*window),
		failures: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(lib)
	}

	f, err := cursescell.NewFactory(lib.layout, cursescell.WithCodePage(lib.codePage), cursescell.WithLogger(lib.logger))
	if err != nil {
		return nil, err
	}
	lib.factory = f
	lib.layout = f.Layout()
	if lib.narrow, err = cursescell.NewCodec(cursescell.Narrow, lib.codePage); err != nil {
		return nil, err
	}

	lib.stdscr = lib.newWindow(lib.rows, lib.cols, false)
	lib.next++
	lib.screen = lib.next
	return lib, nil
}

// Must is like New but panics on error.
func Must(opts ...Option) *Library {
	lib, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return lib
}

// Layout returns the cell layout the library was built for.
func (l *Library) Layout() cursescell.Layout {
	return l.layout
}

// Wide reports whether the cchar_t entry points are exported.
func (l *Library) Wide() bool {
	return l.layout.Kind == cursescell.LayoutWide
}

// WcharSize returns the size of wchar_t.
func (l *Library) WcharSize() int {
	return int(l.layout.Wchar)
}

// Stdscr returns the standard screen.
func (l *Library) Stdscr() (cursescell.Handle, error) {
	return l.stdscr, nil
}

// Screen returns the SCREEN handle.
func (l *Library) Screen() cursescell.Handle {
	return l.screen
}

// NewWindow creates a window.
func (l *Library) NewWindow(rows, cols int) cursescell.Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.newWindow(rows, cols, false)
}

// NewPad creates a pad.
func (l *Library) NewPad(rows, cols int) cursescell.Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.newWindow(rows, cols, true)
}

func (l *Library) newWindow(rows, cols int, pad bool) cursescell.Handle {
	blank := l.blank()
	l.next++
	l.windows[l.next] = &window{
		buf:  NewBuffer(rows, cols, blank),
		bkgd: blank,
		pad:  pad,
	}
	return l.next
}

func (l *Library) window(h cursescell.Handle) (*window, error) {
	w, ok := l.windows[h]
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrNoWindow, uintptr(h))
	}
	return w, nil
}

// Move sets the cursor of window h.
func (l *Library) Move(h cursescell.Handle, row, col int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, err := l.window(h)
	if err != nil {
		return err
	}
	if !w.buf.Contains(row, col) {
		return fmt.Errorf("headless: position %d,%d outside %dx%d window", row, col, w.buf.Rows(), w.buf.Cols())
	}
	w.cursor = Cursor{Row: row, Col: col}
	return nil
}

// Cursor returns the cursor of window h.
func (l *Library) Cursor(h cursescell.Handle) (Cursor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, err := l.window(h)
	if err != nil {
		return Cursor{}, err
	}
	return w.cursor, nil
}

// CellAt returns the cell at (row, col) of window h.
func (l *Library) CellAt(h cursescell.Handle, row, col int) (Cell, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, err := l.window(h)
	if err != nil {
		return Cell{}, err
	}
	c := w.buf.Cell(row, col)
	if c == nil {
		return Cell{}, fmt.Errorf("headless: position %d,%d outside window", row, col)
	}
	return *c, nil
}

// LineContent returns the text of a row of window h, without trailing spaces.
func (l *Library) LineContent(h cursescell.Handle, row int) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, err := l.window(h)
	if err != nil {
		return ""
	}
	return w.buf.LineContent(row)
}

// Attributes returns the current attributes and color pair of window h.
func (l *Library) Attributes(h cursescell.Handle) (cursescell.Attr, cursescell.ColorPair, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, err := l.window(h)
	if err != nil {
		return 0, 0, err
	}
	return w.attrs, w.pair, nil
}

// BackgroundCell returns the background of window h.
func (l *Library) BackgroundCell(h cursescell.Handle) (Cell, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, err := l.window(h)
	if err != nil {
		return Cell{}, err
	}
	return w.bkgd, nil
}

// Refreshes returns how many times window h was refreshed.
func (l *Library) Refreshes(h cursescell.Handle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, err := l.window(h)
	if err != nil {
		return 0
	}
	return w.refreshes
}

// DirtyCells returns positions of window h modified since its last refresh.
func (l *Library) DirtyCells(h cursescell.Handle) []Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, err := l.window(h)
	if err != nil {
		return nil
	}
	return w.buf.DirtyCells()
}

// Calls returns the entry points called so far, in order.
func (l *Library) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.calls)
}

// ResetCalls clears the call log.
func (l *Library) ResetCalls() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

// SetFailure makes symbol fail (or succeed again) from now on.
func (l *Library) SetFailure(symbol string, fail bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[symbol] = fail
}

// blank returns the space cell with no attributes.
func (l *Library) blank() Cell {
	c, _ := l.cell(" ", cursescell.AttrNormal, 0)
	return c
}

// cell builds a grid cell in the library's layout from glyph text.
// Text may hold a base rune followed by combining marks.
func (l *Library) cell(text string, attrs cursescell.Attr, pair cursescell.ColorPair) (Cell, error) {
	if text == "" {
		return Cell{Value: l.factory.AttributeOnly(attrs)}, nil
	}
	s, err := l.factory.Text(text, attrs, pair)
	if err != nil {
		return Cell{}, err
	}
	defer s.Release()
	if s.Len() != 1 {
		return Cell{}, fmt.Errorf("headless: %q is %d cells", text, s.Len())
	}
	v, err := s.At(0)
	if err != nil {
		return Cell{}, err
	}
	return Cell{Value: v, Text: text}, nil
}

// decode returns the grid cell for a value in the library's layout.
func (l *Library) decode(v cursescell.Cell) Cell {
	switch c := v.(type) {
	case cursescell.NarrowCell:
		var text string
		if g := c.Glyph(); g != 0 {
			text = string(l.codePage.DecodeByte(g))
		}
		return Cell{Value: c, Text: text}
	case cursescell.WideCell:
		units := c.Units()
		runes := make([]rune, 0, len(units))
		if l.layout.Wchar == cursescell.Wchar16 {
			u16 := make([]uint16, len(units))
			for i, u := range units {
				u16[i] = uint16(u)
			}
			runes = utf16.Decode(u16)
		} else {
			for _, u := range units {
				runes = append(runes, rune(u))
			}
		}
		return Cell{Value: c, Text: string(runes)}
	default:
		return Cell{}
	}
}

// restyle applies window attributes and pair to a written cell.
func (l *Library) restyle(w *window, c Cell) Cell {
	attrs := c.Value.Attrs() | w.attrs
	pair := c.Value.Pair()
	if pair == 0 {
		pair = w.pair
	}
	if attrs == c.Value.Attrs() && pair == c.Value.Pair() {
		return c
	}
	out, err := l.cell(c.Text, attrs, pair)
	if err != nil {
		return c
	}
	return out
}
