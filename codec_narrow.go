package cursescell

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// narrowCodec packs one code-page byte per chtype.
type narrowCodec struct {
	cp *charmap.Charmap
}

func (c *narrowCodec) Layout() Layout { return Narrow }
func (c *narrowCodec) CellSize() int { return narrowCellSize }
func (c *narrowCodec) Encoding() encoding.Encoding { return c.cp }

func (c *narrowCodec) Encode(r rune) (Cell, error) {
	return c.EncodeStyled(r, AttrNormal, 0)
}

func (c *narrowCodec) EncodeAttr(r rune, attrs Attr) (Cell, error) {
	return c.EncodeStyled(r, attrs, 0)
}

func (c *narrowCodec) EncodeStyled(r rune, attrs Attr, pair ColorPair) (Cell, error) {
	b, ok := c.cp.EncodeRune(r)
	if !ok {
		return nil, fmt.Errorf("%w: %U in %s", ErrUnrepresentableGlyph, r, c.cp)
	}
	return newNarrowCell(b, attrs, pair), nil
}

func (c *narrowCodec) Decode(cell Cell) (rune, Attr, ColorPair, error) {
	n, err := AsNarrow(cell)
	if err != nil {
		return 0, 0, 0, err
	}
	var r rune
	if g := n.Glyph(); g != 0 {
		r = c.cp.DecodeByte(g)
	}
	return r, n.Attrs(), n.Pair(), nil
}

func (c *narrowCodec) AttributeOnly(attrs Attr) Cell {
	return newNarrowCell(0, attrs, 0)
}

func (c *narrowCodec) Marshal(dst []byte, cell Cell) error {
	if len(dst) < narrowCellSize {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, narrowCellSize, len(dst))
	}
	n, err := AsNarrow(cell)
	if err != nil {
		return err
	}
	hostOrder.PutUint32(dst, uint32(n))
	return nil
}

func (c *narrowCodec) Unmarshal(src []byte) (Cell, error) {
	if len(src) < narrowCellSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, narrowCellSize, len(src))
	}
	return NarrowCell(hostOrder.Uint32(src)), nil
}

func (c *narrowCodec) unitSize() int { return 1 }
func (c *narrowCodec) maxUnits() int { return 1 }
func (c *narrowCodec) unitsFor(rune) int { return 1 }
func (c *narrowCodec) combines(rune) bool { return false }
func (c *narrowCodec) encodeFailure() error { return ErrNonEncodable }

func (c *narrowCodec) putGlyph(dst, units []byte, attrs Attr, pair ColorPair) {
	var g byte
	if len(units) > 0 {
		g = units[0]
	}
	hostOrder.PutUint32(dst, uint32(newNarrowCell(g, attrs, pair)))
}

func (c *narrowCodec) appendGlyph(dst, src []byte) []byte {
	if g := byte(hostOrder.Uint32(src) & charTextMask); g != 0 {
		dst = append(dst, g)
	}
	return dst
}

// A chtype string ends at the first all-zero chtype.
func (c *narrowCodec) isTerminator(src []byte) bool {
	return hostOrder.Uint32(src) == 0
}

func (c *narrowCodec) checkUnits([]byte) error { return nil }
