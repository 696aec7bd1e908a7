package cursescell

import (
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// wideCodec packs wchar_t units into a cchar_t.
type wideCodec struct {
	layout  Layout
	enc     encoding.Encoding
	size    int
	unit    int
	extOff  int
	charOff int
}

func newWideCodec(layout Layout) *wideCodec {
	c := &wideCodec{
		layout:  layout,
		size:    layout.CellSize(),
		unit:    int(layout.Wchar),
		charOff: 4,
	}
	c.extOff = c.size - 4
	if layout.Wchar == Wchar16 {
		order := unicode.BigEndian
		if hostLittleEndian {
			order = unicode.LittleEndian
		}
		c.enc = unicode.UTF16(order, unicode.IgnoreBOM)
	} else {
		order := utf32.BigEndian
		if hostLittleEndian {
			order = utf32.LittleEndian
		}
		c.enc = utf32.UTF32(order, utf32.IgnoreBOM)
	}
	return c
}

func (c *wideCodec) Layout() Layout { return c.layout }
func (c *wideCodec) CellSize() int { return c.size }
func (c *wideCodec) Encoding() encoding.Encoding { return c.enc }

func (c *wideCodec) Encode(r rune) (Cell, error) {
	return c.EncodeStyled(r, AttrNormal, 0)
}

func (c *wideCodec) EncodeAttr(r rune, attrs Attr) (Cell, error) {
	return c.EncodeStyled(r, attrs, 0)
}

func (c *wideCodec) EncodeStyled(r rune, attrs Attr, pair ColorPair) (Cell, error) {
	if r < 0 || r > maxCodePoint || utf16.IsSurrogate(r) {
		return nil, fmt.Errorf("%w: %U", ErrUnrepresentableGlyph, r)
	}
	var units [2]uint32
	n := 1
	units[0] = uint32(r)
	if c.layout.Wchar == Wchar16 && r > 0xffff {
		r1, r2 := utf16.EncodeRune(r)
		units[0], units[1] = uint32(r1), uint32(r2)
		n = 2
	}
	return newWideCell(c.layout, units[:n], attrs, pair), nil
}

func (c *wideCodec) Decode(cell Cell) (rune, Attr, ColorPair, error) {
	w, err := AsWide(cell, c.layout)
	if err != nil {
		return 0, 0, 0, err
	}
	return c.baseRune(w.chars), w.Attrs(), w.Pair(), nil
}

func (c *wideCodec) baseRune(chars [CCharWMax]uint32) rune {
	r := rune(chars[0])
	if c.layout.Wchar == Wchar16 && utf16.IsSurrogate(r) {
		return utf16.DecodeRune(r, rune(chars[1]))
	}
	return r
}

func (c *wideCodec) AttributeOnly(attrs Attr) Cell {
	return newWideCell(c.layout, nil, attrs, 0)
}

func (c *wideCodec) Marshal(dst []byte, cell Cell) error {
	if len(dst) < c.size {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, c.size, len(dst))
	}
	w, err := AsWide(cell, c.layout)
	if err != nil {
		return err
	}
	clear(dst[:c.size])
	hostOrder.PutUint32(dst, w.attr)
	for i, u := range w.chars {
		c.putUnit(dst[c.charOff+i*c.unit:], u)
	}
	hostOrder.PutUint32(dst[c.extOff:], uint32(w.ext))
	return nil
}

func (c *wideCodec) Unmarshal(src []byte) (Cell, error) {
	if len(src) < c.size {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, c.size, len(src))
	}
	w := WideCell{
		layout: c.layout,
		attr:   hostOrder.Uint32(src),
		ext:    int32(hostOrder.Uint32(src[c.extOff:])),
	}
	for i := range w.chars {
		w.chars[i] = c.unitAt(src[c.charOff+i*c.unit:])
	}
	return w, nil
}

func (c *wideCodec) putUnit(dst []byte, u uint32) {
	if c.unit == 2 {
		hostOrder.PutUint16(dst, uint16(u))
		return
	}
	hostOrder.PutUint32(dst, u)
}

func (c *wideCodec) unitAt(src []byte) uint32 {
	if c.unit == 2 {
		return uint32(hostOrder.Uint16(src))
	}
	return hostOrder.Uint32(src)
}

func (c *wideCodec) unitSize() int { return c.unit }
func (c *wideCodec) maxUnits() int { return CCharWMax }
func (c *wideCodec) encodeFailure() error { return ErrIncompleteEncoding }

func (c *wideCodec) unitsFor(r rune) int {
	if c.layout.Wchar == Wchar16 && r > 0xffff {
		return 2
	}
	return 1
}

func (c *wideCodec) combines(r rune) bool {
	return isCombining(r)
}

func (c *wideCodec) putGlyph(dst, units []byte, attrs Attr, pair ColorPair) {
	clear(dst[:c.size])
	ext := widePair(pair)
	hostOrder.PutUint32(dst, uint32(attrs&AttrMask)|legacyPair(ext)<<colorShift)
	copy(dst[c.charOff:c.charOff+CCharWMax*c.unit], units)
	hostOrder.PutUint32(dst[c.extOff:], uint32(int32(ext)))
}

func (c *wideCodec) appendGlyph(dst, src []byte) []byte {
	for i := 0; i < CCharWMax; i++ {
		off := c.charOff + i*c.unit
		if c.unitAt(src[off:]) == 0 {
			break
		}
		dst = append(dst, src[off:off+c.unit]...)
	}
	return dst
}

// A cchar_t string ends at the first cell whose base unit is L'\0'.
func (c *wideCodec) isTerminator(src []byte) bool {
	return c.unitAt(src[c.charOff:]) == 0
}

// checkUnits rejects unit streams the decoder would silently replace:
// unpaired surrogates and values outside the Unicode range.
func (c *wideCodec) checkUnits(units []byte) error {
	n := len(units) / c.unit
	if len(units)%c.unit != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrIncompleteDecoding, len(units)%c.unit)
	}
	for i := 0; i < n; i++ {
		u := rune(c.unitAt(units[i*c.unit:]))
		switch {
		case u > maxCodePoint:
			return fmt.Errorf("%w: unit %#x out of range", ErrIncompleteDecoding, u)
		case c.unit == 4 && utf16.IsSurrogate(u):
			return fmt.Errorf("%w: surrogate %#x", ErrIncompleteDecoding, u)
		case c.unit == 2 && u >= 0xd800 && u < 0xdc00:
			if i+1 >= n {
				return fmt.Errorf("%w: truncated surrogate pair", ErrIncompleteDecoding)
			}
			if next := rune(c.unitAt(units[(i+1)*c.unit:])); next < 0xdc00 || next > 0xdfff {
				return fmt.Errorf("%w: unpaired surrogate %#x", ErrIncompleteDecoding, u)
			}
			i++
		case c.unit == 2 && u >= 0xdc00 && u <= 0xdfff:
			return fmt.Errorf("%w: unpaired surrogate %#x", ErrIncompleteDecoding, u)
		}
	}
	return nil
}

const maxCodePoint = 0x10ffff
