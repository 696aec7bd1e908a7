package headless

import (
	"strings"

	"github.com/danielgatis/go-cursescell"
)

// Cell is one grid position: the native cell value and the text of its glyph.
type Cell struct {
	Value cursescell.Cell
	Text  string
	dirty bool
}

// IsBlank returns true for a space or a null glyph.
func (c *Cell) IsBlank() bool {
	return c.Text == "" || c.Text == " "
}

// MarkDirty flags the cell as modified since the last refresh.
func (c *Cell) MarkDirty() {
	c.dirty = true
}

// ClearDirty resets the dirty flag.
func (c *Cell) ClearDirty() {
	c.dirty = false
}

// IsDirty returns true if the cell was modified since the last refresh.
func (c *Cell) IsDirty() bool {
	return c.dirty
}

// Buffer stores a 2D grid of cells.
type Buffer struct {
	rows     int
	cols     int
	cells    [][]Cell
	blank    Cell
	hasDirty bool
}

// NewBuffer creates a buffer with the given dimensions filled with blank.
func NewBuffer(rows, cols int, blank Cell) *Buffer {
	b := &Buffer{
		rows:  rows,
		cols:  cols,
		cells: make([][]Cell, rows),
		blank: blank,
	}

	for i := range b.cells {
		b.cells[i] = make([]Cell, cols)
		for j := range b.cells[i] {
			b.cells[i][j] = blank
		}
	}

	return b
}

// Rows returns the buffer height in character rows.
func (b *Buffer) Rows() int {
	return b.rows
}

// Cols returns the buffer width in character columns.
func (b *Buffer) Cols() int {
	return b.cols
}

// Contains returns true if (row, col) is inside the buffer.
func (b *Buffer) Contains(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

// Cell returns a pointer to the cell at (row, col).
// Returns nil if coordinates are out of bounds.
func (b *Buffer) Cell(row, col int) *Cell {
	if !b.Contains(row, col) {
		return nil
	}
	return &b.cells[row][col]
}

// SetCell replaces the cell at (row, col) and marks it dirty.
// Does nothing if coordinates are out of bounds.
func (b *Buffer) SetCell(row, col int, cell Cell) {
	if !b.Contains(row, col) {
		return
	}
	cell.MarkDirty()
	b.cells[row][col] = cell
	b.hasDirty = true
}

// HasDirty returns true if any cell has been modified since the last ClearAllDirty call.
func (b *Buffer) HasDirty() bool {
	return b.hasDirty
}

// DirtyCells returns positions of all modified cells.
func (b *Buffer) DirtyCells() []Position {
	var positions []Position
	for row := range b.cells {
		for col := range b.cells[row] {
			if b.cells[row][col].IsDirty() {
				positions = append(positions, Position{Row: row, Col: col})
			}
		}
	}
	return positions
}

// ClearAllDirty resets the dirty state of all cells.
func (b *Buffer) ClearAllDirty() {
	for row := range b.cells {
		for col := range b.cells[row] {
			b.cells[row][col].ClearDirty()
		}
	}
	b.hasDirty = false
}

// SetBlank changes the cell used for cleared and inserted positions.
func (b *Buffer) SetBlank(blank Cell) {
	b.blank = blank
}

// ReplaceBlanks sets every blank cell to blank.
func (b *Buffer) ReplaceBlanks(blank Cell) {
	for row := range b.cells {
		for col := range b.cells[row] {
			if b.cells[row][col].IsBlank() {
				b.SetCell(row, col, blank)
			}
		}
	}
}

// ClearRow resets all cells in the row to the blank cell and marks them dirty.
func (b *Buffer) ClearRow(row int) {
	if row < 0 || row >= b.rows {
		return
	}
	for col := range b.cells[row] {
		b.SetCell(row, col, b.blank)
	}
}

// InsertBlank inserts a blank cell at (row, col), shifting existing characters right.
// The last cell of the row is lost.
func (b *Buffer) InsertBlank(row, col int) {
	if !b.Contains(row, col) {
		return
	}

	for c := b.cols - 1; c > col; c-- {
		b.cells[row][c] = b.cells[row][c-1]
		b.cells[row][c].MarkDirty()
	}
	b.SetCell(row, col, b.blank)
}

// LineContent returns the text content of a line, trimming trailing spaces.
// Null glyphs read as spaces. Returns empty string if the line is out of bounds.
func (b *Buffer) LineContent(row int) string {
	if row < 0 || row >= b.rows {
		return ""
	}

	var sb strings.Builder
	for col := range b.cells[row] {
		cell := &b.cells[row][col]
		if cell.Text == "" {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(cell.Text)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// Position identifies a cell location in the grid (0-based).
type Position struct {
	Row int
	Col int
}

