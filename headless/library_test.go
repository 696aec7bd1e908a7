package headless

import (
	"testing"
	"unsafe"

	"github.com/danielgatis/go-cursescell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	lib, err := New()
	require.NoError(t, err)

	assert.Equal(t, cursescell.Wide32, lib.Layout())
	assert.True(t, lib.Wide())
	assert.Equal(t, 4, lib.WcharSize())

	snap, err := lib.Snapshot(lib.stdscr, SnapshotDetailText)
	require.NoError(t, err)
	assert.Equal(t, SnapshotSize{Rows: DEFAULT_ROWS, Cols: DEFAULT_COLS}, snap.Size)

	lib = Must(WithSize(0, -3), WithLayout(cursescell.Narrow))
	assert.False(t, lib.Wide())
	snap, err = lib.Snapshot(lib.stdscr, SnapshotDetailText)
	require.NoError(t, err)
	assert.Equal(t, SnapshotSize{Rows: DEFAULT_ROWS, Cols: DEFAULT_COLS}, snap.Size)
}

func TestNewRejectsInvalidLayout(t *testing.T) {
	_, err := New(WithLayout(cursescell.Layout{Kind: cursescell.LayoutWide, Wchar: 3}))
	assert.ErrorIs(t, err, cursescell.ErrUnsupportedLayout)
	assert.Panics(t, func() { Must(WithLayout(cursescell.Layout{})) })
}

func TestLookup(t *testing.T) {
	narrow := Must(WithLayout(cursescell.Narrow))
	wide := Must(WithLayout(cursescell.Wide16))

	_, err := narrow.Lookup("add_wch")
	assert.ErrorIs(t, err, cursescell.ErrSymbolNotFound)
	_, err = narrow.Lookup("waddstr")
	assert.ErrorIs(t, err, cursescell.ErrSymbolNotFound)

	for _, name := range []string{"addch", "mvwinchnstr", "add_wch", "mvwin_wchnstr", "wunctrl_sp", "getbkgrnd"} {
		_, err := wide.Lookup(name)
		assert.NoError(t, err, name)
	}
}

func TestProcCallsOnStdscr(t *testing.T) {
	lib := Must(WithLayout(cursescell.Narrow), WithSize(3, 5))
	addch, err := lib.Lookup("addch")
	require.NoError(t, err)
	mvaddch, err := lib.Lookup("mvaddch")
	require.NoError(t, err)

	assert.Equal(t, int32(0), addch.Call(cursescell.Word('a')).Int32())
	assert.Equal(t, int32(0), addch.Call(cursescell.Word('\n')).Int32())
	assert.Equal(t, int32(0), addch.Call(cursescell.Word('b')).Int32())

	assert.Equal(t, "a", lib.LineContent(lib.stdscr, 0))
	assert.Equal(t, "b", lib.LineContent(lib.stdscr, 1))
	cur, err := lib.Cursor(lib.stdscr)
	require.NoError(t, err)
	assert.Equal(t, Cursor{Row: 1, Col: 1}, cur)

	assert.Equal(t, int32(-1), mvaddch.Call(cursescell.Int(7), cursescell.Int(0), cursescell.Word('c')).Int32(), "outside the window")
	assert.Equal(t, int32(-1), mvaddch.Call(cursescell.Int(0)).Int32(), "missing arguments")
	assert.Equal(t, []string{"addch", "addch", "addch", "mvaddch", "mvaddch"}, lib.Calls())

	lib.ResetCalls()
	assert.Empty(t, lib.Calls())
}

func TestProcUnknownWindow(t *testing.T) {
	lib := Must()
	waddch, err := lib.Lookup("waddch")
	require.NoError(t, err)
	getbkgd, err := lib.Lookup("getbkgd")
	require.NoError(t, err)

	assert.Equal(t, int32(-1), waddch.Call(cursescell.HandleArg(404), cursescell.Word('a')).Int32())
	assert.Equal(t, uint32(0xffffffff), getbkgd.Call(cursescell.HandleArg(404)).Uint32())
}

func TestMoveAndCursor(t *testing.T) {
	lib := Must(WithSize(4, 4))
	win := lib.NewWindow(2, 3)

	require.NoError(t, lib.Move(win, 1, 2))
	cur, err := lib.Cursor(win)
	require.NoError(t, err)
	assert.Equal(t, Cursor{Row: 1, Col: 2}, cur)

	assert.Error(t, lib.Move(win, 2, 0))
	assert.ErrorIs(t, lib.Move(77, 0, 0), ErrNoWindow)
	_, err = lib.Cursor(77)
	assert.ErrorIs(t, err, ErrNoWindow)
	_, err = lib.CellAt(win, 5, 5)
	assert.Error(t, err)
}

func TestUnctrlText(t *testing.T) {
	tests := []struct {
		r    rune
		want string
	}{
		{0x00, "^@"},
		{0x09, "^I"},
		{0x7f, "^?"},
		{0x80, "~@"},
		{0x9b, "~["},
		{'A', "A"},
		{0xe9, "é"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unctrlText(tt.r), "%U", tt.r)
	}
}

func TestNarrowUnctrlResultBuffer(t *testing.T) {
	lib := Must(WithLayout(cursescell.Narrow))
	unctrl, err := lib.Lookup("unctrl")
	require.NoError(t, err)

	r := unctrl.Call(cursescell.Word(0x85))
	require.False(t, r.IsNil())
	assert.Equal(t, "~E", cString(r.Pointer()))

	r = unctrl.Call(cursescell.Word('z'))
	assert.Equal(t, "z", cString(r.Pointer()))
}

func cString(p unsafe.Pointer) string {
	var b []byte
	for i := 0; ; i++ {
		c := *(*byte)(unsafe.Add(p, i))
		if c == 0 {
			return string(b)
		}
		b = append(b, c)
	}
}

func TestFailureInjection(t *testing.T) {
	lib := Must(WithFailure("bkgdset", "wbkgd"))
	win := lib.NewWindow(1, 1)

	bkgdset, err := lib.Lookup("bkgdset")
	require.NoError(t, err)
	assert.True(t, bkgdset.Call(cursescell.Word('.')).IsNil(), "void entry points have no failure value")

	wbkgd, err := lib.Lookup("wbkgd")
	require.NoError(t, err)
	assert.Equal(t, int32(-1), wbkgd.Call(cursescell.HandleArg(win), cursescell.Word('.')).Int32())
	assert.Equal(t, "", lib.LineContent(win, 0), "failed call has no effect")

	lib.SetFailure("wbkgd", false)
	assert.Equal(t, int32(0), wbkgd.Call(cursescell.HandleArg(win), cursescell.Word('.')).Int32())
	assert.Equal(t, ".", lib.LineContent(win, 0))
}

func TestWideLibraryStoresAstralGlyph(t *testing.T) {
	lib := Must(WithLayout(cursescell.Wide16), WithSize(1, 4))
	d := cursescell.NewDispatcher(lib.factory, lib)

	s, err := lib.factory.Text("😀!", cursescell.AttrNormal, 0)
	require.NoError(t, err)
	defer s.Release()
	require.NoError(t, d.AddCells(cursescell.Std(), s, -1))

	c, err := lib.CellAt(lib.stdscr, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "😀", c.Text)
	assert.Equal(t, "😀!", lib.LineContent(lib.stdscr, 0))

	// a wide cell read back through the narrow entry point falls back to '?'
	inch, err := lib.Lookup("inch")
	require.NoError(t, err)
	assert.Equal(t, uint32('?'), inch.Call().Uint32()&0xff)
}

func TestEchoClearsDirtyState(t *testing.T) {
	lib := Must(WithSize(2, 2))
	pad := lib.NewPad(2, 2)
	d := cursescell.NewDispatcher(lib.factory, lib)

	c, err := lib.factory.Encode('e')
	require.NoError(t, err)
	require.NoError(t, d.AddCell(cursescell.Pad(pad), c))
	assert.Len(t, lib.DirtyCells(pad), 1)

	require.NoError(t, d.EchoCell(cursescell.Pad(pad), c))
	assert.Empty(t, lib.DirtyCells(pad))
	assert.Equal(t, 1, lib.Refreshes(pad))
	assert.Equal(t, "ee", lib.LineContent(pad, 0))
}
