package cursescell

import (
	"fmt"
	"unsafe"
)

// Primitive names a terminal operation independently of the cell layout.
type Primitive uint8

const (
	PrimitiveAddCell Primitive = iota
	PrimitiveInsertCell
	PrimitiveEchoCell
	PrimitiveAddCells
	PrimitiveReadCell
	PrimitiveReadCells
	PrimitiveSetBackground
	PrimitiveSetBackgroundDefault
	PrimitiveBackground
	PrimitiveBorder
	PrimitiveBox
	PrimitiveHLine
	PrimitiveVLine
	PrimitiveSetAttributes
	PrimitiveUnctrl

	primitiveCount
)

var primitiveNames = [primitiveCount]string{
	PrimitiveAddCell:              "AddCell",
	PrimitiveInsertCell:           "InsertCell",
	PrimitiveEchoCell:             "EchoCell",
	PrimitiveAddCells:             "AddCells",
	PrimitiveReadCell:             "ReadCell",
	PrimitiveReadCells:            "ReadCells",
	PrimitiveSetBackground:        "SetBackground",
	PrimitiveSetBackgroundDefault: "SetBackgroundDefault",
	PrimitiveBackground:           "Background",
	PrimitiveBorder:               "Border",
	PrimitiveBox:                  "Box",
	PrimitiveHLine:                "HLine",
	PrimitiveVLine:                "VLine",
	PrimitiveSetAttributes:        "SetAttributes",
	PrimitiveUnctrl:               "Unctrl",
}

func (p Primitive) String() string {
	if p < primitiveCount {
		return primitiveNames[p]
	}
	return fmt.Sprintf("Primitive(%d)", uint8(p))
}

// retKind describes how an entry point reports failure.
type retKind uint8

const (
	// retStatus returns OK or ERR.
	retStatus retKind = iota
	// retVoid returns nothing.
	retVoid
	// retCell returns a chtype; (chtype)ERR reports failure.
	retCell
	// retPointer returns a pointer; NULL reports failure.
	retPointer
)

// entry holds the symbol names of one primitive for each surface.
// An empty name means the surface has no entry point for the primitive.
type entry struct {
	std    string
	win    string
	pad    string
	mvStd  string
	mvWin  string
	screen string
	// stdWindow means the std form still takes stdscr as its first argument.
	stdWindow bool
	ret       retKind
}

// regular is the common naming scheme: base, wbase, mvbase, mvwbase.
func regular(base string, ret retKind) entry {
	return entry{std: base, win: "w" + base, mvStd: "mv" + base, mvWin: "mvw" + base, ret: ret}
}

// unmoved is regular without mv forms.
func unmoved(base string, ret retKind) entry {
	return entry{std: base, win: "w" + base, ret: ret}
}

// windowed entry points take a WINDOW* even for stdscr.
func windowed(name string, ret retKind) entry {
	return entry{std: name, win: name, stdWindow: true, ret: ret}
}

var narrowEntries = [primitiveCount]entry{
	PrimitiveAddCell:              regular("addch", retStatus),
	PrimitiveInsertCell:           regular("insch", retStatus),
	PrimitiveEchoCell:             {std: "echochar", win: "wechochar", pad: "pechochar", ret: retStatus},
	PrimitiveAddCells:             regular("addchnstr", retStatus),
	PrimitiveReadCell:             regular("inch", retCell),
	PrimitiveReadCells:            regular("inchnstr", retStatus),
	PrimitiveSetBackground:        unmoved("bkgd", retStatus),
	PrimitiveSetBackgroundDefault: unmoved("bkgdset", retVoid),
	PrimitiveBackground:           windowed("getbkgd", retCell),
	PrimitiveBorder:               unmoved("border", retStatus),
	PrimitiveBox:                  windowed("box", retStatus),
	PrimitiveHLine:                regular("hline", retStatus),
	PrimitiveVLine:                regular("vline", retStatus),
	PrimitiveSetAttributes:        unmoved("attrset", retStatus),
	PrimitiveUnctrl:               {std: "unctrl", screen: "unctrl_sp", ret: retPointer},
}

var wideEntries = [primitiveCount]entry{
	PrimitiveAddCell:              regular("add_wch", retStatus),
	PrimitiveInsertCell:           regular("ins_wch", retStatus),
	PrimitiveEchoCell:             {std: "echo_wchar", win: "wecho_wchar", pad: "pecho_wchar", ret: retStatus},
	PrimitiveAddCells:             regular("add_wchnstr", retStatus),
	PrimitiveReadCell:             regular("in_wch", retStatus),
	PrimitiveReadCells:            regular("in_wchnstr", retStatus),
	PrimitiveSetBackground:        unmoved("bkgrnd", retStatus),
	PrimitiveSetBackgroundDefault: unmoved("bkgrndset", retVoid),
	PrimitiveBackground:           unmoved("getbkgrnd", retStatus),
	PrimitiveBorder:               unmoved("border_set", retStatus),
	PrimitiveBox:                  windowed("box_set", retStatus),
	PrimitiveHLine:                regular("hline_set", retStatus),
	PrimitiveVLine:                regular("vline_set", retStatus),
	PrimitiveSetAttributes:        unmoved("attr_set", retStatus),
	PrimitiveUnctrl:               {std: "wunctrl", screen: "wunctrl_sp", ret: retPointer},
}

// binding is the layout-specific half of dispatch: symbol names and
// the C shapes of cell, attribute and read arguments.
type binding struct {
	codec   Codec
	pool    *BufferPool
	entries *[primitiveCount]entry
	// cells are passed as const cchar_t* rather than by value
	byPointer bool
	// reads fill a cchar_t* out parameter rather than returning a chtype
	outParam bool
}

func newBinding(codec Codec, pool *BufferPool) (*binding, error) {
	switch l := codec.Layout(); {
	case l.Kind == LayoutNarrow:
		return &binding{codec: codec, pool: pool, entries: &narrowEntries}, nil
	case l.Kind == LayoutWide && l.Valid():
		return &binding{codec: codec, pool: pool, entries: &wideEntries, byPointer: true, outParam: true}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLayout, l)
	}
}

func (b *binding) entry(p Primitive) entry {
	return b.entries[p]
}

// withCells converts cells to native arguments and runs fn while any
// backing memory is pinned. A nil cell is passed as 0 or NULL, which the
// native library reads as "use the default".
func (b *binding) withCells(cells []Cell, fn func(args []Arg) error) error {
	layout := b.codec.Layout()
	args := make([]Arg, len(cells))
	if !b.byPointer {
		for i, c := range cells {
			if c == nil {
				continue
			}
			n, err := AsNarrow(c)
			if err != nil {
				return err
			}
			args[i] = Word(uintptr(n))
		}
		return fn(args)
	}

	for _, c := range cells {
		if c == nil {
			continue
		}
		if _, err := AsWide(c, layout); err != nil {
			return err
		}
	}
	size := b.codec.CellSize()
	buf := newBufferState(b.pool.rent(len(cells)*size), size, len(cells), false, bufferPooled, b.pool)
	defer buf.Release()
	for i, c := range cells {
		if c == nil {
			continue
		}
		if err := b.codec.Marshal(buf.cell(i), c); err != nil {
			return err
		}
	}
	return buf.Borrow(func(p unsafe.Pointer, _ int) error {
		for i, c := range cells {
			if c != nil {
				args[i] = Pointer(unsafe.Add(p, i*size))
			}
		}
		return fn(args)
	})
}

// readCell obtains one cell from invoke, either from its return value or
// through an out parameter appended to the call.
func (b *binding) readCell(invoke func(extra ...Arg) (Arg, error)) (Cell, error) {
	if !b.outParam {
		r, err := invoke()
		if err != nil {
			return nil, err
		}
		return NarrowCell(r.Uint32()), nil
	}

	size := b.codec.CellSize()
	buf := newBufferState(b.pool.rent(size), size, 1, false, bufferPooled, b.pool)
	defer buf.Release()
	err := buf.Borrow(func(p unsafe.Pointer, _ int) error {
		_, err := invoke(Pointer(p))
		return err
	})
	if err != nil {
		return nil, err
	}
	return b.codec.Unmarshal(buf.cell(0))
}

// attrArgs returns the arguments of the attribute-setting entry point:
// attrset(attrs|COLOR_PAIR(pair)) or attr_set(attrs, pair, NULL).
func (b *binding) attrArgs(attrs Attr, pair ColorPair) []Arg {
	if !b.byPointer {
		return []Arg{Word(uintptr(uint32(attrs&AttrMask) | narrowPair(pair)<<colorShift))}
	}
	return []Arg{Word(uintptr(attrs & AttrMask)), Int(int(widePair(pair))), Pointer(nil)}
}

// nativeText reads the NUL-terminated char* or wchar_t* returned by unctrl.
func (b *binding) nativeText(p unsafe.Pointer, chunk int) (string, error) {
	unit := b.codec.unitSize()
	n := 0
	for !zeroed(unsafe.Slice((*byte)(unsafe.Add(p, n*unit)), unit)) {
		n++
	}
	units := unsafe.Slice((*byte)(p), n*unit)
	if err := b.codec.checkUnits(units); err != nil {
		return "", err
	}
	out, err := transcode(b.codec.Encoding().NewDecoder(), nil, units, chunk, ErrIncompleteDecoding)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
