package cursescell

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func mustCodec(t *testing.T, l Layout) Codec {
	t.Helper()
	c, err := NewCodec(l, nil)
	require.NoError(t, err)
	return c
}

func marshal(t *testing.T, c Codec, cell Cell) []byte {
	t.Helper()
	b := make([]byte, c.CellSize())
	require.NoError(t, c.Marshal(b, cell))
	return b
}

func TestCellSizes(t *testing.T) {
	assert.Equal(t, 4, Narrow.CellSize())
	assert.Equal(t, 20, Wide16.CellSize())
	assert.Equal(t, 28, Wide32.CellSize())
	assert.Equal(t, 0, Layout{}.CellSize())
	assert.False(t, Layout{Kind: LayoutWide, Wchar: 3}.Valid())
}

func TestNarrowEncodePlainGlyph(t *testing.T) {
	c := mustCodec(t, Narrow)

	cell, err := c.Encode('a')
	require.NoError(t, err)
	assert.Equal(t, NarrowCell(0x61), cell)

	want := make([]byte, 4)
	binary.NativeEndian.PutUint32(want, 0x61)
	assert.Equal(t, want, marshal(t, c, cell))
}

func TestWideEncodeStyledGlyph(t *testing.T) {
	for _, l := range []Layout{Wide16, Wide32} {
		t.Run(l.String(), func(t *testing.T) {
			c := mustCodec(t, l)

			cell, err := c.EncodeStyled('a', AttrBold, 4)
			require.NoError(t, err)

			b := marshal(t, c, cell)
			require.Len(t, b, l.CellSize())
			assert.Equal(t, uint32(AttrBold)|4<<8, binary.NativeEndian.Uint32(b[0:]))
			if l.Wchar == Wchar16 {
				assert.Equal(t, uint16('a'), binary.NativeEndian.Uint16(b[4:]))
				assert.Equal(t, uint16(0), binary.NativeEndian.Uint16(b[6:]))
			} else {
				assert.Equal(t, uint32('a'), binary.NativeEndian.Uint32(b[4:]))
				assert.Equal(t, uint32(0), binary.NativeEndian.Uint32(b[8:]))
			}
			assert.Equal(t, uint32(4), binary.NativeEndian.Uint32(b[l.CellSize()-4:]))
		})
	}
}

func TestNarrowRejectsUnrepresentableGlyph(t *testing.T) {
	c := mustCodec(t, Narrow)

	_, err := c.Encode(0x1F600)
	assert.ErrorIs(t, err, ErrUnrepresentableGlyph)
}

func TestWideRejectsInvalidCodePoints(t *testing.T) {
	c := mustCodec(t, Wide32)

	for _, r := range []rune{-1, 0xD800, 0xDFFF, 0x110000} {
		_, err := c.Encode(r)
		assert.ErrorIs(t, err, ErrUnrepresentableGlyph, "rune %#x", r)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		layout Layout
		r      rune
		attrs  Attr
		pair   ColorPair
	}{
		{Narrow, 'a', AttrNormal, 0},
		{Narrow, 'Z', AttrBold | AttrUnderline, 7},
		{Narrow, 'é', AttrReverse, 255},
		{Wide16, 'a', AttrItalic, 0},
		{Wide16, '中', AttrBold, 300},
		{Wide16, 0x1F600, AttrDim, 12},
		{Wide32, 0x1F600, AttrStandout | AttrBlink, 65535},
		{Wide32, 'ß', AttrAltCharset, 1},
	}

	for _, tt := range tests {
		t.Run(tt.layout.String(), func(t *testing.T) {
			c := mustCodec(t, tt.layout)

			cell, err := c.EncodeStyled(tt.r, tt.attrs, tt.pair)
			require.NoError(t, err)

			r, attrs, pair, err := c.Decode(cell)
			require.NoError(t, err)
			assert.Equal(t, tt.r, r)
			assert.Equal(t, tt.attrs, attrs)
			assert.Equal(t, tt.pair, pair)

			back, err := c.Unmarshal(marshal(t, c, cell))
			require.NoError(t, err)
			assert.Equal(t, cell, back)
		})
	}
}

func TestColorPairWidth(t *testing.T) {
	narrow := mustCodec(t, Narrow)
	cell, err := narrow.EncodeStyled('a', AttrNormal, 300)
	require.NoError(t, err)
	assert.Equal(t, ColorPair(300&0xff), cell.Pair())

	wide := mustCodec(t, Wide32)
	cell, err = wide.EncodeStyled('a', AttrNormal, 300)
	require.NoError(t, err)
	assert.Equal(t, ColorPair(300), cell.Pair())

	b := marshal(t, wide, cell)
	assert.Equal(t, uint32(0xff)<<8, binary.NativeEndian.Uint32(b)&colorMask, "legacy bits clamp to 255")
	assert.Equal(t, uint32(300), binary.NativeEndian.Uint32(b[24:]))

	cell, err = wide.EncodeStyled('a', AttrNormal, 70000)
	require.NoError(t, err)
	assert.Equal(t, ColorPair(70000 & 0xffff), cell.Pair())
}

func TestWide16SurrogatePair(t *testing.T) {
	c := mustCodec(t, Wide16)

	cell, err := c.Encode(0x1F600)
	require.NoError(t, err)

	w, err := AsWide(cell, Wide16)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xD83D, 0xDE00}, w.Units())
}

func TestAttributeOnly(t *testing.T) {
	for _, l := range []Layout{Narrow, Wide16, Wide32} {
		c := mustCodec(t, l)
		cell := c.AttributeOnly(AttrReverse | 0xff)

		r, attrs, pair, err := c.Decode(cell)
		require.NoError(t, err)
		assert.Equal(t, rune(0), r)
		assert.Equal(t, AttrReverse, attrs, "low bits are not attributes")
		assert.Equal(t, ColorPair(0), pair)
		assert.False(t, cell.IsZero())
	}
}

func TestLayoutIsolation(t *testing.T) {
	narrow := mustCodec(t, Narrow)
	wide16 := mustCodec(t, Wide16)
	wide32 := mustCodec(t, Wide32)

	n, err := narrow.Encode('a')
	require.NoError(t, err)
	w16, err := wide16.Encode('a')
	require.NoError(t, err)

	_, _, _, err = narrow.Decode(w16)
	assert.ErrorIs(t, err, ErrInvalidCast)
	_, _, _, err = wide32.Decode(w16)
	assert.ErrorIs(t, err, ErrInvalidCast)
	_, _, _, err = wide16.Decode(n)
	assert.ErrorIs(t, err, ErrInvalidCast)

	assert.ErrorIs(t, wide32.Marshal(make([]byte, 28), n), ErrInvalidCast)
	_, err = AsNarrow(nil)
	assert.ErrorIs(t, err, ErrInvalidCast)
}

func TestMarshalBufferTooSmall(t *testing.T) {
	for _, l := range []Layout{Narrow, Wide16, Wide32} {
		c := mustCodec(t, l)
		cell, err := c.Encode('a')
		require.NoError(t, err)

		assert.ErrorIs(t, c.Marshal(make([]byte, l.CellSize()-1), cell), ErrBufferTooSmall)
		_, err = c.Unmarshal(make([]byte, l.CellSize()-1))
		assert.ErrorIs(t, err, ErrBufferTooSmall)
	}
}

func TestNarrowCodePage(t *testing.T) {
	cp, err := LookupCodePage("windows-1252")
	require.NoError(t, err)
	assert.Equal(t, charmap.Windows1252, cp)

	c, err := NewCodec(Narrow, cp)
	require.NoError(t, err)

	cell, err := c.Encode('€')
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), cell.(NarrowCell).Glyph())

	r, _, _, err := c.Decode(cell)
	require.NoError(t, err)
	assert.Equal(t, '€', r)
}

func TestAttrFlags(t *testing.T) {
	a := AttrNormal.Set(AttrBold).Set(AttrUnderline)
	assert.True(t, a.Has(AttrBold))
	assert.True(t, a.Has(AttrBold|AttrUnderline))

	a = a.Clear(AttrBold)
	assert.False(t, a.Has(AttrBold))
	assert.True(t, a.Has(AttrUnderline))
}
