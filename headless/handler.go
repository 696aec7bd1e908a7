package headless

import (
	"encoding/binary"
	"unicode/utf8"
	"unsafe"

	"github.com/danielgatis/go-cursescell"
)

const chtypeSize = 4

// defaultBorder returns the library's border glyphs in border() argument
// order: left, right, top, bottom, top-left, top-right, bottom-left, bottom-right.
func (l *Library) defaultBorder() [8]Cell {
	glyphs := [8]string{"│", "│", "─", "─", "┌", "┐", "└", "┘"}
	attrs := cursescell.AttrNormal
	if !l.Wide() {
		// alternate character set letters of the VT100 line-drawing set
		glyphs = [8]string{"x", "x", "q", "q", "l", "k", "m", "j"}
		attrs = cursescell.AttrAltCharset
	}
	var out [8]Cell
	for i, g := range glyphs {
		out[i], _ = l.cell(g, attrs, 0)
	}
	return out
}

// fromChtype converts a chtype argument into a grid cell of the library's layout.
func (l *Library) fromChtype(v uint32) (Cell, bool) {
	n := cursescell.NarrowCell(v)
	if !l.Wide() {
		return l.decode(n), true
	}
	r, attrs, pair, err := l.narrow.Decode(n)
	if err != nil {
		return Cell{}, false
	}
	text := ""
	if r != 0 {
		text = string(r)
	}
	c, err := l.cell(text, attrs, pair)
	return c, err == nil
}

func (l *Library) chtypeArg(a cursescell.Arg) (Cell, bool) {
	return l.fromChtype(a.Uint32())
}

// ccharArg reads a const cchar_t* argument.
func (l *Library) ccharArg(a cursescell.Arg) (Cell, bool) {
	p := a.Pointer()
	if p == nil {
		return Cell{}, false
	}
	return l.ccharAt(unsafe.Slice((*byte)(p), l.factory.CellSize()))
}

func (l *Library) ccharAt(b []byte) (Cell, bool) {
	v, err := l.factory.Codec().Unmarshal(b)
	if err != nil {
		return Cell{}, false
	}
	return l.decode(v), true
}

// chtypeOf returns c as a chtype. Wide glyphs outside the code page read as '?'.
func (l *Library) chtypeOf(c Cell) uint32 {
	if n, ok := c.Value.(cursescell.NarrowCell); ok {
		return uint32(n)
	}
	r, attrs, pair, err := l.factory.Decode(c.Value)
	if err != nil {
		return 0
	}
	n, err := l.narrow.EncodeStyled(r, attrs, pair)
	if err != nil {
		n, _ = l.narrow.EncodeStyled('?', attrs, pair)
	}
	return uint32(n.(cursescell.NarrowCell))
}

func (l *Library) putCchar(p unsafe.Pointer, c Cell) {
	_ = l.factory.Codec().Marshal(unsafe.Slice((*byte)(p), l.factory.CellSize()), c.Value)
}

// advance moves the cursor past a written cell, wrapping at the right margin.
// Writing the bottom-right cell leaves the cursor there and fails.
func (l *Library) advance(w *window) cursescell.Arg {
	w.cursor.Col++
	if w.cursor.Col < w.buf.Cols() {
		return okResult
	}
	if w.cursor.Row+1 < w.buf.Rows() {
		w.cursor.Row++
		w.cursor.Col = 0
		return okResult
	}
	w.cursor.Col = w.buf.Cols() - 1
	return errResult
}

func (l *Library) addch(w *window, c Cell) cursescell.Arg {
	if c.Text == "\n" {
		for col := w.cursor.Col; col < w.buf.Cols(); col++ {
			w.buf.SetCell(w.cursor.Row, col, w.bkgd)
		}
		if w.cursor.Row+1 >= w.buf.Rows() {
			return errResult
		}
		w.cursor.Row++
		w.cursor.Col = 0
		return okResult
	}
	w.buf.SetCell(w.cursor.Row, w.cursor.Col, l.restyle(w, c))
	return l.advance(w)
}

func (l *Library) insch(w *window, c Cell) cursescell.Arg {
	w.buf.InsertBlank(w.cursor.Row, w.cursor.Col)
	w.buf.SetCell(w.cursor.Row, w.cursor.Col, l.restyle(w, c))
	return okResult
}

func (l *Library) echochar(w *window, c Cell) cursescell.Arg {
	r := l.addch(w, c)
	w.refreshes++
	w.buf.ClearAllDirty()
	return r
}

// addRun copies a terminated native cell run to the cursor row without
// moving the cursor. A negative count copies up to the terminator.
func (l *Library) addRun(w *window, args []cursescell.Arg, size int, read func([]byte) (Cell, bool)) cursescell.Arg {
	if len(args) < 2 {
		return errResult
	}
	p := args[0].Pointer()
	if p == nil {
		return errResult
	}
	n := int(args[1].Int32())
	row, col := w.cursor.Row, w.cursor.Col
	for i := 0; col+i < w.buf.Cols() && (n < 0 || i < n); i++ {
		c, ok := read(unsafe.Slice((*byte)(unsafe.Add(p, i*size)), size))
		if !ok {
			break
		}
		w.buf.SetCell(row, col+i, c)
	}
	return okResult
}

func (l *Library) addchnstr(w *window, args []cursescell.Arg) cursescell.Arg {
	return l.addRun(w, args, chtypeSize, func(b []byte) (Cell, bool) {
		v := binary.NativeEndian.Uint32(b)
		if v == 0 {
			return Cell{}, false
		}
		return l.fromChtype(v)
	})
}

func (l *Library) addWchnstr(w *window, args []cursescell.Arg) cursescell.Arg {
	return l.addRun(w, args, l.factory.CellSize(), func(b []byte) (Cell, bool) {
		c, ok := l.ccharAt(b)
		if !ok || c.Text == "" {
			return Cell{}, false
		}
		return c, true
	})
}

func (l *Library) current(w *window) Cell {
	return *w.buf.Cell(w.cursor.Row, w.cursor.Col)
}

func (l *Library) inch(w *window, _ []cursescell.Arg) cursescell.Arg {
	return cursescell.Word(uintptr(l.chtypeOf(l.current(w))))
}

func (l *Library) inWch(w *window, args []cursescell.Arg) cursescell.Arg {
	if len(args) < 1 || args[0].Pointer() == nil {
		return errResult
	}
	l.putCchar(args[0].Pointer(), l.current(w))
	return okResult
}

// readRun writes up to n cells from the cursor to the end of the row into
// native memory, followed by a zero cell, and returns the count.
func (l *Library) readRun(w *window, args []cursescell.Arg, size int, put func(unsafe.Pointer, Cell)) (int, bool) {
	if len(args) < 2 {
		return 0, false
	}
	p := args[0].Pointer()
	n := int(args[1].Int32())
	if p == nil || n < 0 {
		return 0, false
	}
	row, col := w.cursor.Row, w.cursor.Col
	count := min(n, w.buf.Cols()-col)
	for i := 0; i < count; i++ {
		put(unsafe.Add(p, i*size), *w.buf.Cell(row, col+i))
	}
	clear(unsafe.Slice((*byte)(unsafe.Add(p, count*size)), size))
	return count, true
}

func (l *Library) inchnstr(w *window, args []cursescell.Arg) cursescell.Arg {
	count, ok := l.readRun(w, args, chtypeSize, func(p unsafe.Pointer, c Cell) {
		binary.NativeEndian.PutUint32(unsafe.Slice((*byte)(p), chtypeSize), l.chtypeOf(c))
	})
	if !ok {
		return errResult
	}
	return cursescell.Int(count)
}

func (l *Library) inWchnstr(w *window, args []cursescell.Arg) cursescell.Arg {
	if _, ok := l.readRun(w, args, l.factory.CellSize(), l.putCchar); !ok {
		return errResult
	}
	return okResult
}

func (l *Library) bkgd(w *window, c Cell) cursescell.Arg {
	w.bkgd = c
	w.buf.ReplaceBlanks(c)
	w.buf.SetBlank(c)
	return okResult
}

func (l *Library) bkgdset(w *window, c Cell) cursescell.Arg {
	w.bkgd = c
	w.buf.SetBlank(c)
	return nullResult
}

func (l *Library) getbkgd(w *window, _ []cursescell.Arg) cursescell.Arg {
	return cursescell.Word(uintptr(l.chtypeOf(w.bkgd)))
}

func (l *Library) getbkgrnd(w *window, args []cursescell.Arg) cursescell.Arg {
	if len(args) < 1 || args[0].Pointer() == nil {
		return errResult
	}
	l.putCchar(args[0].Pointer(), w.bkgd)
	return okResult
}

// borderCells resolves border arguments; a zero chtype or NULL cchar_t*
// selects the default glyph for that position.
func (l *Library) borderCells(args []cursescell.Arg, order []int, wide bool) ([8]Cell, bool) {
	cells := l.defaultBorder()
	for i, pos := range order {
		if i >= len(args) || args[i].IsNil() {
			continue
		}
		var (
			c  Cell
			ok bool
		)
		if wide {
			c, ok = l.ccharArg(args[i])
		} else {
			c, ok = l.chtypeArg(args[i])
		}
		if !ok {
			return cells, false
		}
		cells[pos] = c
	}
	return cells, true
}

var (
	borderOrder = []int{0, 1, 2, 3, 4, 5, 6, 7}
	boxOrder    = []int{0, 2}
)

func (l *Library) drawBorder(w *window, cells [8]Cell) cursescell.Arg {
	rows, cols := w.buf.Rows(), w.buf.Cols()
	if rows < 2 || cols < 2 {
		return errResult
	}
	for col := 1; col < cols-1; col++ {
		w.buf.SetCell(0, col, cells[2])
		w.buf.SetCell(rows-1, col, cells[3])
	}
	for row := 1; row < rows-1; row++ {
		w.buf.SetCell(row, 0, cells[0])
		w.buf.SetCell(row, cols-1, cells[1])
	}
	w.buf.SetCell(0, 0, cells[4])
	w.buf.SetCell(0, cols-1, cells[5])
	w.buf.SetCell(rows-1, 0, cells[6])
	w.buf.SetCell(rows-1, cols-1, cells[7])
	return okResult
}

func (l *Library) border(w *window, args []cursescell.Arg) cursescell.Arg {
	cells, ok := l.borderCells(args, borderOrder, false)
	if !ok {
		return errResult
	}
	return l.drawBorder(w, cells)
}

func (l *Library) borderSet(w *window, args []cursescell.Arg) cursescell.Arg {
	cells, ok := l.borderCells(args, borderOrder, true)
	if !ok {
		return errResult
	}
	return l.drawBorder(w, cells)
}

// box is border with the vertical cell on both sides and the horizontal
// cell on top and bottom.
func (l *Library) box(w *window, args []cursescell.Arg) cursescell.Arg {
	return l.boxWith(w, args, false)
}

func (l *Library) boxSet(w *window, args []cursescell.Arg) cursescell.Arg {
	return l.boxWith(w, args, true)
}

func (l *Library) boxWith(w *window, args []cursescell.Arg, wide bool) cursescell.Arg {
	cells, ok := l.borderCells(args, boxOrder, wide)
	if !ok {
		return errResult
	}
	cells[1], cells[3] = cells[0], cells[2]
	return l.drawBorder(w, cells)
}

// line draws up to n copies of a cell from the cursor without moving it.
func (l *Library) line(w *window, args []cursescell.Arg, wide bool, dRow, dCol int) cursescell.Arg {
	if len(args) < 2 {
		return errResult
	}
	defaults := l.defaultBorder()
	c := defaults[2]
	if dRow != 0 {
		c = defaults[0]
	}
	if !args[0].IsNil() {
		var ok bool
		if wide {
			c, ok = l.ccharArg(args[0])
		} else {
			c, ok = l.chtypeArg(args[0])
		}
		if !ok {
			return errResult
		}
	}
	n := int(args[1].Int32())
	row, col := w.cursor.Row, w.cursor.Col
	for i := 0; i < n && w.buf.Contains(row, col); i++ {
		w.buf.SetCell(row, col, l.restyle(w, c))
		row += dRow
		col += dCol
	}
	return okResult
}

func (l *Library) hline(w *window, args []cursescell.Arg) cursescell.Arg {
	return l.line(w, args, false, 0, 1)
}

func (l *Library) vline(w *window, args []cursescell.Arg) cursescell.Arg {
	return l.line(w, args, false, 1, 0)
}

func (l *Library) hlineSet(w *window, args []cursescell.Arg) cursescell.Arg {
	return l.line(w, args, true, 0, 1)
}

func (l *Library) vlineSet(w *window, args []cursescell.Arg) cursescell.Arg {
	return l.line(w, args, true, 1, 0)
}

// attrset takes attributes and COLOR_PAIR bits in one int.
func (l *Library) attrset(w *window, args []cursescell.Arg) cursescell.Arg {
	if len(args) < 1 {
		return errResult
	}
	v := args[0].Uint32()
	w.attrs = cursescell.Attr(v) & cursescell.AttrMask
	w.pair = cursescell.ColorPair((v >> 8) & 0xff)
	return okResult
}

// attrSet takes attr_t, a short pair and a reserved pointer.
func (l *Library) attrSet(w *window, args []cursescell.Arg) cursescell.Arg {
	if len(args) < 3 {
		return errResult
	}
	w.attrs = cursescell.Attr(args[0].Uint32()) & cursescell.AttrMask
	w.pair = cursescell.ColorPair(uint16(args[1].Uint32()))
	return okResult
}

// unctrlText returns the printable form of r: ^X for C0 controls and DEL,
// ~X for C1 controls, r itself otherwise.
func unctrlText(r rune) string {
	switch {
	case r < 0x20:
		return "^" + string(r+'@')
	case r == 0x7f:
		return "^?"
	case r >= 0x80 && r < 0xa0:
		return "~" + string(r-0x80+'@')
	default:
		return string(r)
	}
}

func (l *Library) unctrlNarrow(_ *window, args []cursescell.Arg) cursescell.Arg {
	if len(args) < 1 {
		return nullResult
	}
	r, _, _, err := l.narrow.Decode(cursescell.NarrowCell(args[0].Uint32()))
	if err != nil {
		return nullResult
	}
	out := l.unctrl[:0]
	for _, c := range unctrlText(r) {
		b, ok := l.codePage.EncodeRune(c)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	l.unctrl = append(out, 0)
	return cursescell.Pointer(unsafe.Pointer(&l.unctrl[0]))
}

func (l *Library) unctrlWide(_ *window, args []cursescell.Arg) cursescell.Arg {
	if len(args) < 1 {
		return nullResult
	}
	c, ok := l.ccharArg(args[0])
	if !ok {
		return nullResult
	}
	var (
		r    rune
		size int
	)
	if c.Text != "" {
		r, size = utf8.DecodeRuneInString(c.Text)
	}
	text := unctrlText(r) + c.Text[size:]
	units, err := l.factory.Codec().Encoding().NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nullResult
	}
	l.unctrl = append(units, make([]byte, int(l.layout.Wchar))...)
	return cursescell.Pointer(unsafe.Pointer(&l.unctrl[0]))
}
