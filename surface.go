package cursescell

import "fmt"

type surfaceKind uint8

const (
	surfaceStd surfaceKind = iota
	surfaceWindow
	surfacePad
	surfaceScreen
)

func (k surfaceKind) String() string {
	switch k {
	case surfaceStd:
		return "stdscr"
	case surfaceWindow:
		return "window"
	case surfacePad:
		return "pad"
	default:
		return "screen"
	}
}

// Target selects the surface a primitive acts on, and optionally the
// position to move to first.
type Target struct {
	kind   surfaceKind
	handle Handle
	moved  bool
	y, x   int
}

// Std targets the standard screen.
func Std() Target {
	return Target{kind: surfaceStd}
}

// Window targets a window.
func Window(h Handle) Target {
	return Target{kind: surfaceWindow, handle: h}
}

// Pad targets a pad.
func Pad(h Handle) Target {
	return Target{kind: surfacePad, handle: h}
}

// Screen targets a SCREEN, for the entry points that take one.
func Screen(h Handle) Target {
	return Target{kind: surfaceScreen, handle: h}
}

// At returns t moved to row y, column x before the primitive runs.
func (t Target) At(y, x int) Target {
	t.moved = true
	t.y, t.x = y, x
	return t
}

func (t Target) String() string {
	if t.moved {
		return fmt.Sprintf("%s@%d,%d", t.kind, t.y, t.x)
	}
	return t.kind.String()
}

// resolve picks the symbol of e for t and the leading arguments it takes:
// the surface handle, then the position for moved forms.
func (t Target) resolve(e entry, stdscr func() (Handle, error)) (string, []Arg, error) {
	var (
		name string
		args []Arg
	)
	switch t.kind {
	case surfaceStd:
		name = e.std
		if t.moved {
			name = e.mvStd
		}
		if e.stdWindow && name != "" {
			h, err := stdscr()
			if err != nil {
				return "", nil, err
			}
			args = append(args, HandleArg(h))
		}
	case surfaceWindow, surfacePad:
		switch {
		case t.moved:
			name = e.mvWin
		case t.kind == surfacePad && e.pad != "":
			name = e.pad
		default:
			name = e.win
		}
		args = append(args, HandleArg(t.handle))
	case surfaceScreen:
		if !t.moved {
			name = e.screen
		}
		args = append(args, HandleArg(t.handle))
	}
	if name == "" {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedSurface, t)
	}
	if t.moved {
		args = append(args, Int(t.y), Int(t.x))
	}
	return name, args, nil
}
