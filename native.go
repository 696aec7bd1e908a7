package cursescell

import "unsafe"

// Handle is an opaque native pointer: a WINDOW*, a pad or a SCREEN*.
type Handle uintptr

// Arg is one machine-word argument or return value of a native entry point.
// It keeps Go pointers typed as pointers so they stay visible to the runtime.
type Arg struct {
	ptr  unsafe.Pointer
	word uintptr
}

// Word returns an integer argument.
func Word(w uintptr) Arg {
	return Arg{word: w}
}

// Int returns a C int argument.
func Int(n int) Arg {
	return Arg{word: uintptr(n)}
}

// Pointer returns a pointer argument.
func Pointer(p unsafe.Pointer) Arg {
	return Arg{ptr: p}
}

// HandleArg returns a native handle argument.
func HandleArg(h Handle) Arg {
	return Arg{word: uintptr(h)}
}

// Uintptr returns the raw machine word.
func (a Arg) Uintptr() uintptr {
	if a.ptr != nil {
		return uintptr(a.ptr)
	}
	return a.word
}

// Int32 returns the low 32 bits as a C int.
func (a Arg) Int32() int32 {
	return int32(uint32(a.Uintptr()))
}

// Uint32 returns the low 32 bits unsigned.
func (a Arg) Uint32() uint32 {
	return uint32(a.Uintptr())
}

// Pointer returns the value as a pointer.
func (a Arg) Pointer() unsafe.Pointer {
	if a.ptr != nil {
		return a.ptr
	}
	// the word came back from native code and is not a Go pointer
	return *(*unsafe.Pointer)(unsafe.Pointer(&a.word))
}

// IsNil returns true for a zero word with no pointer.
func (a Arg) IsNil() bool {
	return a.ptr == nil && a.word == 0
}

// Proc is a resolved native entry point.
type Proc interface {
	Call(args ...Arg) Arg
}

// Library resolves native entry points by symbol name.
type Library interface {
	// Lookup returns the entry point for symbol, or an error wrapping ErrSymbolNotFound.
	Lookup(symbol string) (Proc, error)
	// Stdscr returns the standard screen window.
	Stdscr() (Handle, error)
}

// ProcFunc adapts a Go function to Proc.
type ProcFunc func(args ...Arg) Arg

// Call calls f.
func (f ProcFunc) Call(args ...Arg) Arg {
	return f(args...)
}

// cString copies a NUL-terminated C string.
func cString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// errSentinel is the C ERR value returned by failing entry points.
const errSentinel = -1
