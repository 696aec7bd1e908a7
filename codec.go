package cursescell

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Codec converts between code points and native cells of one layout.
// Encode and Decode are pure: no I/O and no allocation beyond the returned value.
type Codec interface {
	// Layout returns the layout this codec produces.
	Layout() Layout
	// CellSize returns the native size of one cell in bytes.
	CellSize() int
	// Encoding returns the text encoding of native glyph units.
	Encoding() encoding.Encoding

	// Encode returns the zero-attribute cell for r.
	Encode(r rune) (Cell, error)
	// EncodeAttr returns the cell for r with attrs merged in.
	EncodeAttr(r rune, attrs Attr) (Cell, error)
	// EncodeStyled returns the cell for r with attrs and pair merged in.
	EncodeStyled(r rune, attrs Attr, pair ColorPair) (Cell, error)
	// Decode returns the base code point, attributes and color pair of c.
	Decode(c Cell) (rune, Attr, ColorPair, error)
	// AttributeOnly returns a cell with a null glyph that carries attrs.
	AttributeOnly(attrs Attr) Cell

	// Marshal writes the native image of c into dst.
	Marshal(dst []byte, c Cell) error
	// Unmarshal reads a cell from its native image.
	Unmarshal(src []byte) (Cell, error)

	unitSize() int
	maxUnits() int
	unitsFor(r rune) int
	combines(r rune) bool
	encodeFailure() error
	putGlyph(dst, units []byte, attrs Attr, pair ColorPair)
	appendGlyph(dst, src []byte) []byte
	isTerminator(src []byte) bool
	checkUnits(units []byte) error
}

// NewCodec returns the codec for layout.
// codePage is used by the narrow layout only; nil selects ISO-8859-1.
func NewCodec(layout Layout, codePage *charmap.Charmap) (Codec, error) {
	switch {
	case layout.Kind == LayoutNarrow:
		if codePage == nil {
			codePage = charmap.ISO8859_1
		}
		return &narrowCodec{cp: codePage}, nil
	case layout.Kind == LayoutWide && layout.Valid():
		return newWideCodec(layout), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLayout, layout)
	}
}

var hostOrder = binary.NativeEndian

// hostLittleEndian reports the byte order native glyph units use.
var hostLittleEndian = func() bool {
	var b [2]byte
	hostOrder.PutUint16(b[:], 1)
	return b[0] == 1
}()

// zeroed reports whether every byte of b is zero.
func zeroed(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
