package cursescell

// Attr is a bitmask of cell rendering attributes.
// Bit positions follow the curses attr_t layout: the low 16 bits hold the
// glyph and the legacy color pair, so they are never attribute bits.
type Attr uint32

const (
	AttrStandout Attr = 1 << (iota + 16)
	AttrUnderline
	AttrReverse
	AttrBlink
	AttrDim
	AttrBold
	AttrAltCharset
	AttrInvisible
	AttrProtect
	AttrHorizontal
	AttrLeft
	AttrLow
	AttrRight
	AttrTop
	AttrVertical
	AttrItalic
)

const (
	// AttrNormal is the empty attribute set.
	AttrNormal Attr = 0

	// AttrMask selects the bits that may carry attributes.
	AttrMask Attr = 0xffff0000

	charTextMask  uint32 = 0x000000ff
	colorMask     uint32 = 0x0000ff00
	colorShift           = 8
	maxLegacyPair        = 0xff
)

// Has returns true if every bit of flag is set.
func (a Attr) Has(flag Attr) bool {
	return a&flag == flag
}

// Set returns a with flag enabled.
func (a Attr) Set(flag Attr) Attr {
	return a | flag
}

// Clear returns a with flag disabled.
func (a Attr) Clear(flag Attr) Attr {
	return a &^ flag
}

// ColorPair is a color-pair index.
// Narrow cells keep only the low 8 bits; wide cells keep the low 16 bits.
type ColorPair int32

// narrowPair truncates p to the 8 bits a chtype can hold.
func narrowPair(p ColorPair) uint32 {
	return uint32(uint8(p))
}

// widePair truncates p to the unsigned 16-bit extended pair stored in a cchar_t.
func widePair(p ColorPair) uint16 {
	return uint16(p)
}

// legacyPair clamps an extended pair to the 8-bit field shared with attr_t.
func legacyPair(p uint16) uint32 {
	if p > maxLegacyPair {
		return maxLegacyPair
	}
	return uint32(p)
}
