package cursescell

// Cell is one character position in a native layout.
// The only implementations are NarrowCell and WideCell; use a Codec to build
// and inspect cells, since glyph interpretation depends on the layout.
type Cell interface {
	// Layout returns the layout the cell was built under.
	Layout() Layout
	// Attrs returns the attribute bits without glyph or color.
	Attrs() Attr
	// Pair returns the color-pair index.
	Pair() ColorPair
	// IsZero returns true for the all-zero terminator cell.
	IsZero() bool

	sealed()
}

// NarrowCell is a chtype: glyph byte in bits 0-7, color pair in bits 8-15, attributes above.
type NarrowCell uint32

// Layout returns Narrow.
func (c NarrowCell) Layout() Layout { return Narrow }

// Attrs returns the attribute bits.
func (c NarrowCell) Attrs() Attr { return Attr(c) & AttrMask }

// Pair returns the 8-bit color pair.
func (c NarrowCell) Pair() ColorPair { return ColorPair((uint32(c) & colorMask) >> colorShift) }

// IsZero returns true for the terminator cell.
func (c NarrowCell) IsZero() bool { return c == 0 }

// Glyph returns the code-page byte.
func (c NarrowCell) Glyph() byte { return byte(uint32(c) & charTextMask) }

func (NarrowCell) sealed() {}

func newNarrowCell(glyph byte, attrs Attr, pair ColorPair) NarrowCell {
	return NarrowCell(uint32(glyph) | narrowPair(pair)<<colorShift | uint32(attrs&AttrMask))
}

// WideCell is a cchar_t: an attr_t word (attributes plus legacy color bits),
// up to CCharWMax wchar_t units and an extended color pair.
type WideCell struct {
	layout Layout
	attr   uint32
	chars  [CCharWMax]uint32
	ext    int32
}

// Layout returns Wide16 or Wide32.
func (c WideCell) Layout() Layout { return c.layout }

// Attrs returns the attribute bits.
func (c WideCell) Attrs() Attr { return Attr(c.attr) & AttrMask }

// Pair returns the extended color pair, falling back to the legacy bits.
func (c WideCell) Pair() ColorPair {
	if c.ext != 0 {
		return ColorPair(uint16(c.ext))
	}
	return ColorPair((c.attr & colorMask) >> colorShift)
}

// IsZero returns true for the terminator cell.
func (c WideCell) IsZero() bool {
	return c.attr == 0 && c.ext == 0 && c.chars == [CCharWMax]uint32{}
}

// Units returns the non-zero wchar_t units of the glyph.
func (c WideCell) Units() []uint32 {
	n := 0
	for n < CCharWMax && c.chars[n] != 0 {
		n++
	}
	return c.chars[:n:n]
}

func (WideCell) sealed() {}

func newWideCell(layout Layout, units []uint32, attrs Attr, pair ColorPair) WideCell {
	ext := widePair(pair)
	c := WideCell{
		layout: layout,
		attr:   uint32(attrs&AttrMask) | legacyPair(ext)<<colorShift,
		ext:    int32(ext),
	}
	copy(c.chars[:], units)
	return c
}

var (
	_ Cell = NarrowCell(0)
	_ Cell = WideCell{}
)
