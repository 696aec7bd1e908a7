//go:build darwin || freebsd || linux

package cursescell

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"
)

// DynamicLibrary is a curses shared library loaded at run time without cgo.
type DynamicLibrary struct {
	name   string
	handle uintptr
	logger *zap.Logger

	mu    sync.RWMutex
	procs map[string]Proc
}

// OpenLibrary loads the first of names that can be opened.
func OpenLibrary(logger *zap.Logger, names ...string) (*DynamicLibrary, error) {
	logger = loggerOrNop(logger)
	if len(names) == 0 {
		names = DefaultConfig().Libraries
	}
	var errs []error
	for _, name := range names {
		h, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			logger.Debug("curses library not loadable", zap.String("name", name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		logger.Info("curses library loaded", zap.String("name", name))
		return &DynamicLibrary{
			name:   name,
			handle: h,
			logger: logger,
			procs:  make(map[string]Proc),
		}, nil
	}
	return nil, fmt.Errorf("no curses library could be opened (%s): %w", strings.Join(names, ", "), errors.Join(errs...))
}

// Name returns the file name the library was opened under.
func (l *DynamicLibrary) Name() string {
	return l.name
}

type dlProc uintptr

func (p dlProc) Call(args ...Arg) Arg {
	words := make([]uintptr, len(args))
	for i, a := range args {
		words[i] = a.Uintptr()
	}
	r, _, _ := purego.SyscallN(uintptr(p), words...)
	return Word(r)
}

// Lookup resolves symbol, caching the result.
func (l *DynamicLibrary) Lookup(symbol string) (Proc, error) {
	l.mu.RLock()
	p, ok := l.procs[symbol]
	l.mu.RUnlock()
	if ok {
		return p, nil
	}

	addr, err := purego.Dlsym(l.handle, symbol)
	if err != nil || addr == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, symbol, l.name)
	}
	p = dlProc(addr)

	l.mu.Lock()
	l.procs[symbol] = p
	l.mu.Unlock()
	return p, nil
}

func (l *DynamicLibrary) has(symbol string) bool {
	_, err := l.Lookup(symbol)
	return err == nil
}

// Wide reports whether the library exports the cchar_t entry points.
func (l *DynamicLibrary) Wide() bool {
	return l.has("add_wch") && l.has("wadd_wch") && l.has("setcchar")
}

// WcharSize returns the width of wchar_t for the library's platform.
// Every platform purego loads curses on uses a 32-bit wchar_t.
func (l *DynamicLibrary) WcharSize() int {
	return int(Wchar32)
}

// Version returns the curses_version string, or "" when not exported.
func (l *DynamicLibrary) Version() string {
	p, err := l.Lookup("curses_version")
	if err != nil {
		return ""
	}
	return cString(p.Call().Pointer())
}

// Stdscr reads the stdscr variable exported by the library.
func (l *DynamicLibrary) Stdscr() (Handle, error) {
	addr, err := purego.Dlsym(l.handle, "stdscr")
	if err != nil || addr == 0 {
		return 0, fmt.Errorf("%w: stdscr in %s", ErrSymbolNotFound, l.name)
	}
	p := *(*unsafe.Pointer)(unsafe.Pointer(&addr))
	return *(*Handle)(p), nil
}

// Close unloads the library.
func (l *DynamicLibrary) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	l.procs = nil
	return err
}

var _ Library = (*DynamicLibrary)(nil)
