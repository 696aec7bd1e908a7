package headless

import (
	"fmt"

	"github.com/danielgatis/go-cursescell"
)

// lead says which arguments precede an entry point's own parameters.
type lead uint8

const (
	// leadStd acts on stdscr.
	leadStd lead = iota
	// leadWin takes a WINDOW*.
	leadWin
	// leadMv takes y, x and acts on stdscr.
	leadMv
	// leadMvWin takes a WINDOW*, y, x.
	leadMvWin
	// leadScreen takes a SCREEN*.
	leadScreen
)

func (l lead) count() int {
	switch l {
	case leadWin, leadScreen:
		return 1
	case leadMv:
		return 2
	case leadMvWin:
		return 3
	default:
		return 0
	}
}

type op func(lib *Library, w *window, args []cursescell.Arg) cursescell.Arg

type symbol struct {
	lead lead
	wide bool
	fail cursescell.Arg
	op   op
}

var (
	errResult  = cursescell.Int(-1)
	okResult   = cursescell.Int(0)
	errChtype  = cursescell.Word(0xffffffff)
	nullResult = cursescell.Arg{}
)

var symbols = buildSymbols()

func buildSymbols() map[string]symbol {
	t := make(map[string]symbol)
	add := func(name string, l lead, wide bool, fail cursescell.Arg, fn op) {
		t[name] = symbol{lead: l, wide: wide, fail: fail, op: fn}
	}
	regular := func(base string, wide bool, fail cursescell.Arg, fn op) {
		add(base, leadStd, wide, fail, fn)
		add("w"+base, leadWin, wide, fail, fn)
		add("mv"+base, leadMv, wide, fail, fn)
		add("mvw"+base, leadMvWin, wide, fail, fn)
	}
	unmoved := func(base string, wide bool, fail cursescell.Arg, fn op) {
		add(base, leadStd, wide, fail, fn)
		add("w"+base, leadWin, wide, fail, fn)
	}

	// chtype entry points
	regular("addch", false, errResult, narrowCellOp((*Library).addch))
	regular("insch", false, errResult, narrowCellOp((*Library).insch))
	add("echochar", leadStd, false, errResult, narrowCellOp((*Library).echochar))
	add("wechochar", leadWin, false, errResult, narrowCellOp((*Library).echochar))
	add("pechochar", leadWin, false, errResult, narrowCellOp((*Library).echochar))
	regular("addchnstr", false, errResult, (*Library).addchnstr)
	regular("inch", false, errChtype, (*Library).inch)
	regular("inchnstr", false, errResult, (*Library).inchnstr)
	unmoved("bkgd", false, errResult, narrowCellOp((*Library).bkgd))
	unmoved("bkgdset", false, nullResult, narrowCellOp((*Library).bkgdset))
	add("getbkgd", leadWin, false, errChtype, (*Library).getbkgd)
	unmoved("border", false, errResult, (*Library).border)
	add("box", leadWin, false, errResult, (*Library).box)
	regular("hline", false, errResult, (*Library).hline)
	regular("vline", false, errResult, (*Library).vline)
	unmoved("attrset", false, errResult, (*Library).attrset)
	add("unctrl", leadStd, false, nullResult, (*Library).unctrlNarrow)
	add("unctrl_sp", leadScreen, false, nullResult, (*Library).unctrlNarrow)

	// cchar_t entry points
	regular("add_wch", true, errResult, wideCellOp((*Library).addch))
	regular("ins_wch", true, errResult, wideCellOp((*Library).insch))
	add("echo_wchar", leadStd, true, errResult, wideCellOp((*Library).echochar))
	add("wecho_wchar", leadWin, true, errResult, wideCellOp((*Library).echochar))
	add("pecho_wchar", leadWin, true, errResult, wideCellOp((*Library).echochar))
	regular("add_wchnstr", true, errResult, (*Library).addWchnstr)
	regular("in_wch", true, errResult, (*Library).inWch)
	regular("in_wchnstr", true, errResult, (*Library).inWchnstr)
	unmoved("bkgrnd", true, errResult, wideCellOp((*Library).bkgd))
	unmoved("bkgrndset", true, nullResult, wideCellOp((*Library).bkgdset))
	unmoved("getbkgrnd", true, errResult, (*Library).getbkgrnd)
	unmoved("border_set", true, errResult, (*Library).borderSet)
	add("box_set", leadWin, true, errResult, (*Library).boxSet)
	regular("hline_set", true, errResult, (*Library).hlineSet)
	regular("vline_set", true, errResult, (*Library).vlineSet)
	unmoved("attr_set", true, errResult, (*Library).attrSet)
	add("wunctrl", leadStd, true, nullResult, (*Library).unctrlWide)
	add("wunctrl_sp", leadScreen, true, nullResult, (*Library).unctrlWide)

	return t
}

// narrowCellOp adapts an operation on one cell to a chtype first argument.
func narrowCellOp(fn func(l *Library, w *window, c Cell) cursescell.Arg) op {
	return func(l *Library, w *window, args []cursescell.Arg) cursescell.Arg {
		if len(args) < 1 {
			return errResult
		}
		c, ok := l.chtypeArg(args[0])
		if !ok {
			return errResult
		}
		return fn(l, w, c)
	}
}

// wideCellOp adapts an operation on one cell to a const cchar_t* first argument.
func wideCellOp(fn func(l *Library, w *window, c Cell) cursescell.Arg) op {
	return func(l *Library, w *window, args []cursescell.Arg) cursescell.Arg {
		if len(args) < 1 {
			return errResult
		}
		c, ok := l.ccharArg(args[0])
		if !ok {
			return errResult
		}
		return fn(l, w, c)
	}
}

type proc struct {
	lib  *Library
	name string
	sym  symbol
}

func (p proc) Call(args ...cursescell.Arg) cursescell.Arg {
	return p.lib.invoke(p.name, p.sym, args)
}

// Lookup resolves an entry point. The cchar_t entry points exist only in
// wide builds.
func (l *Library) Lookup(name string) (cursescell.Proc, error) {
	sym, ok := symbols[name]
	if !ok || (sym.wide && !l.Wide()) {
		return nil, fmt.Errorf("%w: %s in headless %s library", cursescell.ErrSymbolNotFound, name, l.layout)
	}
	return proc{lib: l, name: name, sym: sym}, nil
}

func (l *Library) invoke(name string, sym symbol, args []cursescell.Arg) cursescell.Arg {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, name)
	if l.failures[name] {
		return sym.fail
	}
	if len(args) < sym.lead.count() {
		return sym.fail
	}

	var (
		w   *window
		err error
	)
	switch sym.lead {
	case leadStd, leadMv:
		w, err = l.window(l.stdscr)
	case leadWin, leadMvWin:
		w, err = l.window(cursescell.Handle(args[0].Uintptr()))
	case leadScreen:
		if cursescell.Handle(args[0].Uintptr()) != l.screen {
			err = fmt.Errorf("headless: unknown screen %#x", args[0].Uintptr())
		} else {
			w, err = l.window(l.stdscr)
		}
	}
	if err != nil {
		l.logger.Debug(err.Error())
		return sym.fail
	}

	switch sym.lead {
	case leadMv:
		if !l.move(w, args[0], args[1]) {
			return sym.fail
		}
	case leadMvWin:
		if !l.move(w, args[1], args[2]) {
			return sym.fail
		}
	}
	return sym.op(l, w, args[sym.lead.count():])
}

func (l *Library) move(w *window, y, x cursescell.Arg) bool {
	row, col := int(y.Int32()), int(x.Int32())
	if !w.buf.Contains(row, col) {
		return false
	}
	w.cursor = Cursor{Row: row, Col: col}
	return true
}

var _ cursescell.Library = (*Library)(nil)
