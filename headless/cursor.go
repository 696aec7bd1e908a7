package headless

// Cursor tracks the current position of a window (0-based coordinates).
type Cursor struct {
	Row int
	Col int
}
