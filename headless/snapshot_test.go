package headless

import (
	"encoding/json"
	"testing"

	"github.com/danielgatis/go-cursescell"
)

func snapshotFixture(t *testing.T) (*Library, cursescell.Handle) {
	t.Helper()
	lib := Must(WithSize(3, 10))
	f := lib.factory
	d := cursescell.NewDispatcher(f, lib)

	hello, err := f.Text("Hello", cursescell.AttrBold, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer hello.Release()
	world, err := f.Text("World", cursescell.AttrNormal, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer world.Release()

	if err := d.AddCells(cursescell.Std().At(0, 0), hello, -1); err != nil {
		t.Fatal(err)
	}
	if err := d.AddCells(cursescell.Std().At(1, 0), world, -1); err != nil {
		t.Fatal(err)
	}
	return lib, lib.stdscr
}

func TestSnapshot_Text(t *testing.T) {
	lib, stdscr := snapshotFixture(t)

	snap, err := lib.Snapshot(stdscr, SnapshotDetailText)
	if err != nil {
		t.Fatal(err)
	}

	if snap.Size.Rows != 3 {
		t.Errorf("Size.Rows = %d, want 3", snap.Size.Rows)
	}
	if snap.Size.Cols != 10 {
		t.Errorf("Size.Cols = %d, want 10", snap.Size.Cols)
	}
	if snap.Layout != "wide32" {
		t.Errorf("Layout = %q, want wide32", snap.Layout)
	}
	if len(snap.Lines) != 3 {
		t.Fatalf("len(Lines) = %d, want 3", len(snap.Lines))
	}
	if snap.Lines[0].Text != "Hello" {
		t.Errorf("Lines[0].Text = %q, want %q", snap.Lines[0].Text, "Hello")
	}
	if snap.Lines[1].Text != "World" {
		t.Errorf("Lines[1].Text = %q, want %q", snap.Lines[1].Text, "World")
	}

	// Text mode should not have segments or cells
	if snap.Lines[0].Segments != nil {
		t.Error("Text mode should not have segments")
	}
	if snap.Lines[0].Cells != nil {
		t.Error("Text mode should not have cells")
	}
}

func TestSnapshot_Styled(t *testing.T) {
	lib, stdscr := snapshotFixture(t)

	snap, err := lib.Snapshot(stdscr, SnapshotDetailStyled)
	if err != nil {
		t.Fatal(err)
	}

	segs := snap.Lines[0].Segments
	if len(segs) != 2 {
		t.Fatalf("len(Segments) = %d, want 2", len(segs))
	}
	if segs[0].Text != "Hello" || !segs[0].Attributes.Bold || segs[0].Pair != 1 {
		t.Errorf("Segments[0] = %+v, want bold Hello on pair 1", segs[0])
	}
	if segs[1].Text != "     " || segs[1].Attributes.Bold {
		t.Errorf("Segments[1] = %+v, want plain padding", segs[1])
	}
}

func TestSnapshot_Full(t *testing.T) {
	lib, stdscr := snapshotFixture(t)

	snap, err := lib.Snapshot(stdscr, SnapshotDetailFull)
	if err != nil {
		t.Fatal(err)
	}

	cells := snap.Lines[1].Cells
	if len(cells) != 10 {
		t.Fatalf("len(Cells) = %d, want 10", len(cells))
	}
	if cells[0].Char != "W" || cells[0].Attributes.Bold {
		t.Errorf("Cells[0] = %+v, want plain W", cells[0])
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if back.Lines[0].Cells[0].Char != "H" || !back.Lines[0].Cells[0].Attributes.Bold {
		t.Errorf("round-tripped cell = %+v", back.Lines[0].Cells[0])
	}
}

func TestSnapshot_UnknownWindow(t *testing.T) {
	lib := Must()
	if _, err := lib.Snapshot(9999, SnapshotDetailText); err == nil {
		t.Error("expected error for unknown window")
	}
}
