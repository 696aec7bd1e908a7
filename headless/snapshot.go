package headless

import (
	"github.com/danielgatis/go-cursescell"
)

// SnapshotDetail specifies the level of detail in a snapshot.
type SnapshotDetail string

const (
	// SnapshotDetailText returns plain text only.
	SnapshotDetailText SnapshotDetail = "text"
	// SnapshotDetailStyled returns text with style segments per line.
	SnapshotDetailStyled SnapshotDetail = "styled"
	// SnapshotDetailFull returns full cell-by-cell data.
	SnapshotDetailFull SnapshotDetail = "full"
)

// Snapshot represents a complete window capture.
type Snapshot struct {
	Layout string         `json:"layout"`
	Size   SnapshotSize   `json:"size"`
	Cursor SnapshotCursor `json:"cursor"`
	Lines  []SnapshotLine `json:"lines"`
}

// SnapshotSize holds window dimensions.
type SnapshotSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SnapshotCursor holds cursor state.
type SnapshotCursor struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SnapshotLine represents a single line in the snapshot.
type SnapshotLine struct {
	Text     string            `json:"text"`
	Segments []SnapshotSegment `json:"segments,omitempty"`
	Cells    []SnapshotCell    `json:"cells,omitempty"`
}

// SnapshotSegment represents a run of cells with the same style.
type SnapshotSegment struct {
	Text       string        `json:"text"`
	Pair       int           `json:"pair,omitempty"`
	Attributes SnapshotAttrs `json:"attrs,omitempty"`
}

// SnapshotCell represents a single cell with full attributes.
type SnapshotCell struct {
	Char       string        `json:"char"`
	Pair       int           `json:"pair,omitempty"`
	Attributes SnapshotAttrs `json:"attrs,omitempty"`
}

// SnapshotAttrs holds the rendering attributes of a cell.
type SnapshotAttrs struct {
	Standout   bool `json:"standout,omitempty"`
	Underline  bool `json:"underline,omitempty"`
	Reverse    bool `json:"reverse,omitempty"`
	Blink      bool `json:"blink,omitempty"`
	Dim        bool `json:"dim,omitempty"`
	Bold       bool `json:"bold,omitempty"`
	AltCharset bool `json:"altcharset,omitempty"`
	Invisible  bool `json:"invisible,omitempty"`
	Italic     bool `json:"italic,omitempty"`
}

// Snapshot creates a snapshot of window h.
// The detail parameter controls how much information is included.
func (l *Library) Snapshot(h cursescell.Handle, detail SnapshotDetail) (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.window(h)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Layout: l.layout.String(),
		Size: SnapshotSize{
			Rows: w.buf.Rows(),
			Cols: w.buf.Cols(),
		},
		Cursor: SnapshotCursor{
			Row: w.cursor.Row,
			Col: w.cursor.Col,
		},
		Lines: make([]SnapshotLine, w.buf.Rows()),
	}

	for row := 0; row < w.buf.Rows(); row++ {
		snap.Lines[row] = snapshotLine(w.buf, row, detail)
	}

	return snap, nil
}

// snapshotLine creates a snapshot of a single line.
func snapshotLine(b *Buffer, row int, detail SnapshotDetail) SnapshotLine {
	line := SnapshotLine{
		Text: b.LineContent(row),
	}

	switch detail {
	case SnapshotDetailText:
		// Just text, already set

	case SnapshotDetailStyled:
		line.Segments = lineToSegments(b, row)

	case SnapshotDetailFull:
		line.Cells = lineToCells(b, row)
	}

	return line
}

// lineToSegments converts a line to styled segments (runs of same style).
func lineToSegments(b *Buffer, row int) []SnapshotSegment {
	var segments []SnapshotSegment
	var current *SnapshotSegment
	var text []byte

	for col := 0; col < b.Cols(); col++ {
		cell := b.Cell(row, col)
		attrs := attrsToSnapshot(cell.Value.Attrs())
		pair := int(cell.Value.Pair())

		if current == nil || current.Pair != pair || current.Attributes != attrs {
			if current != nil {
				current.Text = string(text)
				segments = append(segments, *current)
			}
			current = &SnapshotSegment{
				Pair:       pair,
				Attributes: attrs,
			}
			text = text[:0]
		}

		text = append(text, cellText(cell)...)
	}

	if current != nil {
		current.Text = string(text)
		segments = append(segments, *current)
	}

	return segments
}

// lineToCells converts a line to full cell data.
func lineToCells(b *Buffer, row int) []SnapshotCell {
	cells := make([]SnapshotCell, 0, b.Cols())

	for col := 0; col < b.Cols(); col++ {
		cell := b.Cell(row, col)
		cells = append(cells, SnapshotCell{
			Char:       cellText(cell),
			Pair:       int(cell.Value.Pair()),
			Attributes: attrsToSnapshot(cell.Value.Attrs()),
		})
	}

	return cells
}

func cellText(c *Cell) string {
	if c.Text == "" {
		return " "
	}
	return c.Text
}

func attrsToSnapshot(a cursescell.Attr) SnapshotAttrs {
	return SnapshotAttrs{
		Standout:   a.Has(cursescell.AttrStandout),
		Underline:  a.Has(cursescell.AttrUnderline),
		Reverse:    a.Has(cursescell.AttrReverse),
		Blink:      a.Has(cursescell.AttrBlink),
		Dim:        a.Has(cursescell.AttrDim),
		Bold:       a.Has(cursescell.AttrBold),
		AltCharset: a.Has(cursescell.AttrAltCharset),
		Invisible:  a.Has(cursescell.AttrInvisible),
		Italic:     a.Has(cursescell.AttrItalic),
	}
}
