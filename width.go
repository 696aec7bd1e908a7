package cursescell

import "github.com/unilibs/uniwidth"

// runeWidth returns the display width: 2 for wide characters (CJK, emoji), 1 for normal, 0 for zero-width (combining marks, control chars).
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// isCombining returns true if r is a printable zero-width rune that joins the preceding glyph in a cchar_t.
func isCombining(r rune) bool {
	return r >= 0x20 && r != 0x7f && runeWidth(r) == 0
}

// StringWidth returns the total display width of a string (sum of rune widths).
func StringWidth(s string) int {
	return uniwidth.StringWidth(s)
}
