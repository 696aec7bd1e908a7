//go:build !(darwin || freebsd || linux)

package cursescell

import (
	"errors"

	"go.uber.org/zap"
)

// DynamicLibrary is unavailable on this platform.
type DynamicLibrary struct{}

// OpenLibrary always fails on this platform.
func OpenLibrary(*zap.Logger, ...string) (*DynamicLibrary, error) {
	return nil, errors.New("cursescell: dynamic curses libraries are not supported on this platform")
}

func (l *DynamicLibrary) Name() string { return "" }
func (l *DynamicLibrary) Lookup(string) (Proc, error) { return nil, ErrSymbolNotFound }
func (l *DynamicLibrary) Wide() bool { return false }
func (l *DynamicLibrary) WcharSize() int { return 0 }
func (l *DynamicLibrary) Version() string { return "" }
func (l *DynamicLibrary) Stdscr() (Handle, error) { return 0, ErrSymbolNotFound }
func (l *DynamicLibrary) Close() error { return nil }
