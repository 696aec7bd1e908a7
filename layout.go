package cursescell

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// LayoutKind selects how the native library represents one cell.
type LayoutKind uint8

const (
	// LayoutNarrow is the 32-bit chtype cell: one byte of glyph, color and attribute bits.
	LayoutNarrow LayoutKind = iota + 1
	// LayoutWide is the cchar_t complex cell: attr_t, up to CCharWMax wchar_t units and an extended color.
	LayoutWide
)

func (k LayoutKind) String() string {
	switch k {
	case LayoutNarrow:
		return "narrow"
	case LayoutWide:
		return "wide"
	default:
		return fmt.Sprintf("LayoutKind(%d)", uint8(k))
	}
}

// WcharWidth is the size of the platform's native wchar_t.
type WcharWidth uint8

const (
	Wchar16 WcharWidth = 2
	Wchar32 WcharWidth = 4
)

// CCharWMax is the number of wchar_t units a cchar_t can hold (base glyph plus combining marks).
const CCharWMax = 5

const (
	narrowCellSize = 4
	// attr_t + 5 x uint16 + 2 bytes padding + int
	wide16CellSize = 20
	// attr_t + 5 x uint32 + int
	wide32CellSize = 28
)

// Layout describes the binary shape of a cell for this process.
// The zero value is not a valid layout.
type Layout struct {
	Kind  LayoutKind
	Wchar WcharWidth
}

var (
	// Narrow is the chtype layout. The wchar_t width does not affect it.
	Narrow = Layout{Kind: LayoutNarrow, Wchar: Wchar32}
	// Wide16 is the cchar_t layout on platforms with a 16-bit wchar_t.
	Wide16 = Layout{Kind: LayoutWide, Wchar: Wchar16}
	// Wide32 is the cchar_t layout on platforms with a 32-bit wchar_t.
	Wide32 = Layout{Kind: LayoutWide, Wchar: Wchar32}
)

// CellSize returns the native size of one cell in bytes, or 0 for an invalid layout.
func (l Layout) CellSize() int {
	switch {
	case l.Kind == LayoutNarrow:
		return narrowCellSize
	case l.Kind == LayoutWide && l.Wchar == Wchar16:
		return wide16CellSize
	case l.Kind == LayoutWide && l.Wchar == Wchar32:
		return wide32CellSize
	default:
		return 0
	}
}

// Valid returns true if the layout is one of the supported shapes.
func (l Layout) Valid() bool {
	return l.CellSize() != 0
}

// Same reports whether two layouts produce interchangeable cells.
// Narrow cells do not depend on the wchar_t width.
func (l Layout) Same(other Layout) bool {
	if l.Kind == LayoutNarrow {
		return other.Kind == LayoutNarrow
	}
	return l == other
}

func (l Layout) String() string {
	switch {
	case l.Kind == LayoutNarrow:
		return "narrow"
	case l.Kind == LayoutWide && l.Wchar == Wchar16:
		return "wide16"
	case l.Kind == LayoutWide && l.Wchar == Wchar32:
		return "wide32"
	default:
		return fmt.Sprintf("Layout(%s, %d)", l.Kind, l.Wchar)
	}
}

// ParseLayout parses the names produced by Layout.String.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "narrow":
		return Narrow, nil
	case "wide16":
		return Wide16, nil
	case "wide32":
		return Wide32, nil
	default:
		return Layout{}, fmt.Errorf("%w: %q", ErrUnsupportedLayout, s)
	}
}

// Probe reports the build configuration of a native curses library.
type Probe interface {
	// Wide reports whether the library exports the wide-character entry points.
	Wide() bool
	// WcharSize returns sizeof(wchar_t) on the library's platform.
	WcharSize() int
}

// ResolveLayout determines the cell layout a native library was built for.
func ResolveLayout(p Probe) (Layout, error) {
	if p == nil {
		return Layout{}, fmt.Errorf("%w: no probe", ErrUnsupportedLayout)
	}
	if !p.Wide() {
		return Narrow, nil
	}
	switch p.WcharSize() {
	case int(Wchar16):
		return Wide16, nil
	case int(Wchar32):
		return Wide32, nil
	default:
		return Layout{}, fmt.Errorf("%w: wchar_t is %d bytes", ErrUnsupportedLayout, p.WcharSize())
	}
}

// resolveForced applies a configured layout override on top of the probe result.
// A wide library can be driven through its narrow entry points, but not the reverse.
func resolveForced(p Probe, forced string) (Layout, error) {
	probed, err := ResolveLayout(p)
	if err != nil {
		return Layout{}, err
	}
	if forced == "" {
		return probed, nil
	}
	want, err := ParseLayout(forced)
	if err != nil {
		return Layout{}, err
	}
	if want.Kind == LayoutWide && !want.Same(probed) {
		return Layout{}, fmt.Errorf("%w: forced %s but library is %s", ErrUnsupportedLayout, want, probed)
	}
	return want, nil
}

// process-wide, written once by Init
var active struct {
	once    sync.Once
	factory atomic.Pointer[Factory]
	err     error
}

// Init resolves the cell layout from p and binds the process-wide factory.
// Only the first call does any work; later calls return the first result.
// An error here means the process cannot use the native library at all.
func Init(p Probe, opts ...Option) (*Factory, error) {
	active.once.Do(func() {
		cfg := newFactoryConfig(opts)
		layout, err := resolveForced(p, cfg.forcedLayout)
		if err != nil {
			cfg.logger.Error("cell layout resolution failed", zap.Error(err))
			active.err = err
			return
		}
		f, err := NewFactory(layout, opts...)
		if err != nil {
			active.err = err
			return
		}
		f.logger.Info("cell layout resolved",
			zap.Stringer("layout", layout),
			zap.Int("cell_size", layout.CellSize()),
		)
		active.factory.Store(f)
	})
	return active.factory.Load(), active.err
}

// MustInit is like Init but panics on failure.
func MustInit(p Probe, opts ...Option) *Factory {
	f, err := Init(p, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Active returns the factory bound by Init.
// It panics if Init has not completed successfully.
func Active() *Factory {
	f := active.factory.Load()
	if f == nil {
		panic(ErrNotInitialized)
	}
	return f
}
