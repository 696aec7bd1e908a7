package cursescell_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/danielgatis/go-cursescell"
	"github.com/danielgatis/go-cursescell/headless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var layouts = []cursescell.Layout{cursescell.Narrow, cursescell.Wide16, cursescell.Wide32}

// fixture is a dispatcher bound to a headless library of the same layout.
type fixture struct {
	lib    *headless.Library
	f      *cursescell.Factory
	d      *cursescell.Dispatcher
	stdscr cursescell.Handle
}

func newFixture(t *testing.T, l cursescell.Layout, opts ...headless.Option) *fixture {
	t.Helper()
	lib, err := headless.New(append([]headless.Option{headless.WithLayout(l), headless.WithSize(6, 20)}, opts...)...)
	require.NoError(t, err)
	f, err := cursescell.NewFactory(l)
	require.NoError(t, err)
	stdscr, err := lib.Stdscr()
	require.NoError(t, err)
	return &fixture{lib: lib, f: f, d: cursescell.NewDispatcher(f, lib), stdscr: stdscr}
}

func (fx *fixture) cell(t *testing.T, r rune, attrs cursescell.Attr, pair cursescell.ColorPair) cursescell.Cell {
	t.Helper()
	c, err := fx.f.EncodeStyled(r, attrs, pair)
	require.NoError(t, err)
	return c
}

func (fx *fixture) text(t *testing.T, s string, attrs cursescell.Attr, pair cursescell.ColorPair) *cursescell.CellString {
	t.Helper()
	cs, err := fx.f.Text(s, attrs, pair)
	require.NoError(t, err)
	t.Cleanup(cs.Release)
	return cs
}

func TestDispatchSymbolSelection(t *testing.T) {
	names := map[bool][]string{
		false: {"addch", "mvaddch", "waddch", "mvwaddch", "pechochar", "unctrl_sp"},
		true:  {"add_wch", "mvadd_wch", "wadd_wch", "mvwadd_wch", "pecho_wchar", "wunctrl_sp"},
	}

	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			fx := newFixture(t, l)
			win := fx.lib.NewWindow(3, 10)
			pad := fx.lib.NewPad(3, 10)
			a := fx.cell(t, 'a', cursescell.AttrNormal, 0)

			require.NoError(t, fx.d.AddCell(cursescell.Std(), a))
			require.NoError(t, fx.d.AddCell(cursescell.Std().At(2, 3), a))
			require.NoError(t, fx.d.AddCell(cursescell.Window(win), a))
			require.NoError(t, fx.d.AddCell(cursescell.Window(win).At(1, 1), a))
			require.NoError(t, fx.d.EchoCell(cursescell.Pad(pad), a))
			_, err := fx.d.Unctrl(cursescell.Screen(fx.lib.Screen()), a)
			require.NoError(t, err)

			assert.Equal(t, names[l.Kind == cursescell.LayoutWide], fx.lib.Calls())
			assert.Equal(t, "a", fx.lib.LineContent(fx.stdscr, 0))
			assert.Equal(t, "   a", fx.lib.LineContent(fx.stdscr, 2))
			assert.Equal(t, 1, fx.lib.Refreshes(pad))
		})
	}
}

func TestDispatchAddAndReadCells(t *testing.T) {
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			fx := newFixture(t, l)
			s := fx.text(t, "hello", cursescell.AttrBold, 2)

			require.NoError(t, fx.d.AddCells(cursescell.Std().At(1, 3), s, -1))
			assert.Equal(t, "   hello", fx.lib.LineContent(fx.stdscr, 1))

			require.NoError(t, fx.d.AddCells(cursescell.Std().At(2, 0), s, 2))
			assert.Equal(t, "he", fx.lib.LineContent(fx.stdscr, 2))

			buf, err := fx.f.CreateBuffer(5, true)
			require.NoError(t, err)
			defer buf.Release()

			got, err := fx.d.ReadCells(cursescell.Std().At(1, 3), buf, 5)
			require.NoError(t, err)
			assert.True(t, got.Equal(s))

			text, err := got.Text()
			require.NoError(t, err)
			assert.Equal(t, "hello", text)
		})
	}
}

func TestDispatchReadCellsStopsAtRowEnd(t *testing.T) {
	for _, l := range layouts {
		fx := newFixture(t, l)
		s := fx.text(t, "xy", cursescell.AttrNormal, 0)
		require.NoError(t, fx.d.AddCells(cursescell.Std().At(0, 18), s, -1))

		buf, err := fx.f.CreateBuffer(5, true)
		require.NoError(t, err)

		got, err := fx.d.ReadCells(cursescell.Std().At(0, 18), buf, 5)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Len(), l.String())
		buf.Release()
	}
}

func TestDispatchReadCellsChecksBuffer(t *testing.T) {
	fx := newFixture(t, cursescell.Wide32)

	open, err := fx.f.OwnedBuffer(5, false)
	require.NoError(t, err)
	_, err = fx.d.ReadCells(cursescell.Std(), open, 5)
	assert.ErrorIs(t, err, cursescell.ErrBufferTooSmall, "no room for the terminator")

	closed, err := fx.f.OwnedBuffer(5, true)
	require.NoError(t, err)
	_, err = fx.d.ReadCells(cursescell.Std(), closed, 6)
	assert.ErrorIs(t, err, cursescell.ErrBufferTooSmall)
	_, err = fx.d.ReadCells(cursescell.Std(), closed, -1)
	assert.ErrorIs(t, err, cursescell.ErrBufferTooSmall)

	narrow, err := cursescell.NewFactory(cursescell.Narrow)
	require.NoError(t, err)
	other, err := narrow.OwnedBuffer(5, true)
	require.NoError(t, err)
	_, err = fx.d.ReadCells(cursescell.Std(), other, 5)
	assert.ErrorIs(t, err, cursescell.ErrInvalidCast)

	closed.Release()
	_, err = fx.d.ReadCells(cursescell.Std(), closed, 5)
	assert.ErrorIs(t, err, cursescell.ErrBufferReleased)

	assert.Empty(t, fx.lib.Calls(), "rejected before any native call")
}

func TestDispatchReadCellAndAttributes(t *testing.T) {
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			fx := newFixture(t, l)

			require.NoError(t, fx.d.AddCell(cursescell.Std().At(0, 0), fx.cell(t, 'x', cursescell.AttrReverse, 4)))
			c, err := fx.d.ReadCell(cursescell.Std().At(0, 0))
			require.NoError(t, err)
			r, attrs, pair, err := fx.f.Decode(c)
			require.NoError(t, err)
			assert.Equal(t, 'x', r)
			assert.Equal(t, cursescell.AttrReverse, attrs)
			assert.Equal(t, cursescell.ColorPair(4), pair)

			require.NoError(t, fx.d.SetAttributes(cursescell.Std(), cursescell.AttrUnderline, 3))
			require.NoError(t, fx.d.AddCell(cursescell.Std().At(0, 1), fx.cell(t, 'u', cursescell.AttrNormal, 0)))
			c, err = fx.d.ReadCell(cursescell.Std().At(0, 1))
			require.NoError(t, err)
			_, attrs, pair, err = fx.f.Decode(c)
			require.NoError(t, err)
			assert.Equal(t, cursescell.AttrUnderline, attrs)
			assert.Equal(t, cursescell.ColorPair(3), pair)

			gotAttrs, gotPair, err := fx.lib.Attributes(fx.stdscr)
			require.NoError(t, err)
			assert.Equal(t, cursescell.AttrUnderline, gotAttrs)
			assert.Equal(t, cursescell.ColorPair(3), gotPair)
		})
	}
}

func TestDispatchInsertCell(t *testing.T) {
	for _, l := range layouts {
		fx := newFixture(t, l)
		require.NoError(t, fx.d.AddCells(cursescell.Std().At(0, 0), fx.text(t, "ab", cursescell.AttrNormal, 0), -1))
		require.NoError(t, fx.d.InsertCell(cursescell.Std().At(0, 0), fx.cell(t, 'z', cursescell.AttrNormal, 0)))
		assert.Equal(t, "zab", fx.lib.LineContent(fx.stdscr, 0), l.String())
	}
}

func TestDispatchBackground(t *testing.T) {
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			fx := newFixture(t, l)
			win := fx.lib.NewWindow(2, 4)
			dot := fx.cell(t, '.', cursescell.AttrDim, 0)

			require.NoError(t, fx.d.SetBackground(cursescell.Window(win), dot))
			assert.Equal(t, "....", fx.lib.LineContent(win, 1))

			c, err := fx.d.Background(cursescell.Window(win))
			require.NoError(t, err)
			r, attrs, _, err := fx.f.Decode(c)
			require.NoError(t, err)
			assert.Equal(t, '.', r)
			assert.Equal(t, cursescell.AttrDim, attrs)

			hash := fx.cell(t, '#', cursescell.AttrNormal, 0)
			require.NoError(t, fx.d.SetBackgroundDefault(cursescell.Std(), hash))
			c, err = fx.d.Background(cursescell.Std())
			require.NoError(t, err)
			r, _, _, err = fx.f.Decode(c)
			require.NoError(t, err)
			assert.Equal(t, '#', r)
			assert.Equal(t, "", fx.lib.LineContent(fx.stdscr, 0), "existing cells keep their glyphs")
		})
	}
}

func TestDispatchBoxAndLines(t *testing.T) {
	expected := map[bool][]string{
		false: {"lqqqk", "x---x", "mqqqj"},
		true:  {"┌───┐", "│---│", "└───┘"},
	}

	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			fx := newFixture(t, l)
			win := fx.lib.NewWindow(3, 5)

			require.NoError(t, fx.d.Box(cursescell.Window(win), nil, nil))
			require.NoError(t, fx.d.HLine(cursescell.Window(win).At(1, 1), fx.cell(t, '-', cursescell.AttrNormal, 0), 3))

			want := expected[l.Kind == cursescell.LayoutWide]
			for row, line := range want {
				assert.Equal(t, line, fx.lib.LineContent(win, row))
			}
		})
	}
}

func TestDispatchBorderAndVLine(t *testing.T) {
	fx := newFixture(t, cursescell.Wide32)
	eq := fx.cell(t, '=', cursescell.AttrNormal, 0)
	bar := fx.cell(t, '|', cursescell.AttrNormal, 0)

	require.NoError(t, fx.d.Border(cursescell.Std(), nil, nil, eq, eq, nil, nil, nil, nil))
	assert.Equal(t, "┌"+strings.Repeat("=", 18)+"┐", fx.lib.LineContent(fx.stdscr, 0))

	require.NoError(t, fx.d.VLine(cursescell.Std().At(1, 5), bar, 2))
	assert.Equal(t, "│    |"+strings.Repeat(" ", 13)+"│", fx.lib.LineContent(fx.stdscr, 1))
	assert.Equal(t, "│    |"+strings.Repeat(" ", 13)+"│", fx.lib.LineContent(fx.stdscr, 2))
	assert.Equal(t, "│"+strings.Repeat(" ", 18)+"│", fx.lib.LineContent(fx.stdscr, 3))
	assert.Contains(t, fx.lib.Calls(), "border_set")
	assert.Contains(t, fx.lib.Calls(), "mvvline_set")
}

func TestDispatchUnctrl(t *testing.T) {
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			fx := newFixture(t, l)

			tests := []struct {
				r    rune
				want string
			}{
				{0x01, "^A"},
				{0x1b, "^["},
				{0x7f, "^?"},
				{'a', "a"},
			}
			for _, tt := range tests {
				got, err := fx.d.Unctrl(cursescell.Std(), fx.cell(t, tt.r, cursescell.AttrNormal, 0))
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			_, err := fx.d.Unctrl(cursescell.Window(fx.stdscr), fx.cell(t, 'a', cursescell.AttrNormal, 0))
			assert.ErrorIs(t, err, cursescell.ErrUnsupportedSurface)
		})
	}
}

func TestDispatchUnsupportedSurface(t *testing.T) {
	fx := newFixture(t, cursescell.Narrow)
	c := fx.cell(t, 'a', cursescell.AttrNormal, 0)

	err := fx.d.SetBackground(cursescell.Std().At(1, 1), c)
	assert.ErrorIs(t, err, cursescell.ErrUnsupportedSurface)
	err = fx.d.AddCell(cursescell.Screen(fx.lib.Screen()), c)
	assert.ErrorIs(t, err, cursescell.ErrUnsupportedSurface)
	assert.Empty(t, fx.lib.Calls())
}

func TestDispatchNativeFailure(t *testing.T) {
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			symbol, read := "waddch", "inch"
			if l.Kind == cursescell.LayoutWide {
				symbol, read = "wadd_wch", "in_wch"
			}
			fx := newFixture(t, l, headless.WithFailure(symbol, read))
			win := fx.lib.NewWindow(2, 2)

			err := fx.d.AddCell(cursescell.Window(win), fx.cell(t, 'a', cursescell.AttrNormal, 0))
			require.Error(t, err)
			assert.ErrorIs(t, err, cursescell.ErrNativeCallFailed)

			var nerr *cursescell.NativeCallError
			require.True(t, errors.As(err, &nerr))
			assert.Equal(t, cursescell.PrimitiveAddCell, nerr.Primitive)
			assert.Equal(t, symbol, nerr.Symbol)
			assert.Equal(t, int32(-1), nerr.Code)

			_, err = fx.d.ReadCell(cursescell.Std())
			assert.ErrorIs(t, err, cursescell.ErrNativeCallFailed)

			fx.lib.SetFailure(symbol, false)
			assert.NoError(t, fx.d.AddCell(cursescell.Window(win), fx.cell(t, 'a', cursescell.AttrNormal, 0)))
		})
	}
}

func TestDispatchWritingBottomRightFails(t *testing.T) {
	fx := newFixture(t, cursescell.Wide32)
	win := fx.lib.NewWindow(1, 2)
	c := fx.cell(t, 'a', cursescell.AttrNormal, 0)

	require.NoError(t, fx.d.AddCell(cursescell.Window(win), c))
	err := fx.d.AddCell(cursescell.Window(win), c)
	assert.ErrorIs(t, err, cursescell.ErrNativeCallFailed)
	assert.Equal(t, "aa", fx.lib.LineContent(win, 0), "the cell is still written")
}

func TestDispatchMissingSymbol(t *testing.T) {
	lib, err := headless.New(headless.WithLayout(cursescell.Narrow))
	require.NoError(t, err)
	f, err := cursescell.NewFactory(cursescell.Wide32)
	require.NoError(t, err)
	d := cursescell.NewDispatcher(f, lib)

	c, err := f.Encode('a')
	require.NoError(t, err)
	err = d.AddCell(cursescell.Std(), c)
	assert.ErrorIs(t, err, cursescell.ErrSymbolNotFound)
}

func TestDispatchWideLibraryThroughNarrowEntryPoints(t *testing.T) {
	lib, err := headless.New(headless.WithLayout(cursescell.Wide32), headless.WithSize(2, 10))
	require.NoError(t, err)
	f, err := cursescell.NewFactory(cursescell.Narrow)
	require.NoError(t, err)
	d := cursescell.NewDispatcher(f, lib)

	s, err := f.Text("caf\u00e9", cursescell.AttrBold, 1)
	require.NoError(t, err)
	defer s.Release()
	require.NoError(t, d.AddCells(cursescell.Std().At(0, 0), s, -1))

	stdscr, err := lib.Stdscr()
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", lib.LineContent(stdscr, 0))

	c, err := lib.CellAt(stdscr, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, cursescell.Wide32, c.Value.Layout(), "stored in the library's own layout")
	assert.Equal(t, cursescell.AttrBold, c.Value.Attrs())
}

func TestDispatchRejectsForeignLayout(t *testing.T) {
	fx := newFixture(t, cursescell.Wide32)
	narrow, err := cursescell.NewFactory(cursescell.Narrow)
	require.NoError(t, err)

	c, err := narrow.Encode('a')
	require.NoError(t, err)
	assert.ErrorIs(t, fx.d.AddCell(cursescell.Std(), c), cursescell.ErrInvalidCast)

	s, err := narrow.Text("abc", cursescell.AttrNormal, 0)
	require.NoError(t, err)
	defer s.Release()
	assert.ErrorIs(t, fx.d.AddCells(cursescell.Std(), s, -1), cursescell.ErrInvalidCast)

	w16, err := cursescell.NewFactory(cursescell.Wide16)
	require.NoError(t, err)
	c, err = w16.Encode('a')
	require.NoError(t, err)
	assert.ErrorIs(t, fx.d.AddCell(cursescell.Std(), c), cursescell.ErrInvalidCast)

	assert.Empty(t, fx.lib.Calls())
}

func TestDispatchMiddleware(t *testing.T) {
	fx := newFixture(t, cursescell.Wide32)

	var (
		resolved []string
		invoked  []cursescell.Primitive
		failures []string
	)
	mw := &cursescell.Middleware{
		Resolve: func(symbol string, next func(string) (cursescell.Proc, error)) (cursescell.Proc, error) {
			resolved = append(resolved, symbol)
			return next(symbol)
		},
		Invoke: func(c cursescell.Call, next func(cursescell.Call) cursescell.Arg) cursescell.Arg {
			invoked = append(invoked, c.Primitive)
			if c.Primitive == cursescell.PrimitiveInsertCell {
				return cursescell.Int(-1)
			}
			return next(c)
		},
		Failure: func(err *cursescell.NativeCallError, next func(*cursescell.NativeCallError)) {
			failures = append(failures, err.Symbol)
			next(err)
		},
	}
	d := cursescell.NewDispatcher(fx.f, fx.lib, cursescell.WithMiddleware(mw))
	c := fx.cell(t, 'm', cursescell.AttrNormal, 0)

	require.NoError(t, d.AddCell(cursescell.Std(), c))
	require.NoError(t, d.AddCell(cursescell.Std(), c))
	assert.ErrorIs(t, d.InsertCell(cursescell.Std(), c), cursescell.ErrNativeCallFailed)

	assert.Equal(t, []string{"add_wch", "ins_wch"}, resolved, "lookups are cached")
	assert.Equal(t, []cursescell.Primitive{cursescell.PrimitiveAddCell, cursescell.PrimitiveAddCell, cursescell.PrimitiveInsertCell}, invoked)
	assert.Equal(t, []string{"ins_wch"}, failures)
	assert.Equal(t, []string{"add_wch", "add_wch"}, fx.lib.Calls(), "the short-circuited call never reached the library")
	assert.Equal(t, "mm", fx.lib.LineContent(fx.stdscr, 0))
}

func TestMiddlewareMerge(t *testing.T) {
	first := &cursescell.Middleware{
		Invoke: func(c cursescell.Call, next func(cursescell.Call) cursescell.Arg) cursescell.Arg { return next(c) },
	}
	second := &cursescell.Middleware{
		Failure: func(err *cursescell.NativeCallError, next func(*cursescell.NativeCallError)) { next(err) },
	}

	m := &cursescell.Middleware{}
	m.Merge(first)
	m.Merge(second)
	m.Merge(nil)

	assert.NotNil(t, m.Invoke)
	assert.NotNil(t, m.Failure)
	assert.Nil(t, m.Resolve)
}
