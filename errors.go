package cursescell

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrepresentableGlyph is returned when a code point does not fit the active layout's glyph width.
	ErrUnrepresentableGlyph = errors.New("cursescell: glyph not representable in active layout")

	// ErrNonEncodable is returned when text contains a rune the narrow code page cannot encode.
	ErrNonEncodable = errors.New("cursescell: text not encodable in narrow code page")

	// ErrIncompleteEncoding is returned when the incremental encoder cannot consume all of its input.
	ErrIncompleteEncoding = errors.New("cursescell: incomplete encoding")

	// ErrIncompleteDecoding is returned when native glyph units cannot be fully decoded to text.
	ErrIncompleteDecoding = errors.New("cursescell: incomplete decoding")

	// ErrInvalidCast is returned when a cell or cell string was built under a different layout.
	ErrInvalidCast = errors.New("cursescell: value does not match active layout")

	// ErrNativeCallFailed is wrapped by every NativeCallError.
	ErrNativeCallFailed = errors.New("cursescell: native call failed")

	// ErrBufferTooSmall is returned before any write when a buffer cannot hold the requested cells.
	ErrBufferTooSmall = errors.New("cursescell: buffer too small")

	// ErrBufferReleased is returned when a released buffer is used again.
	ErrBufferReleased = errors.New("cursescell: buffer already released")

	// ErrUnsupportedLayout is returned when no known cell layout matches the native library.
	ErrUnsupportedLayout = errors.New("cursescell: unsupported cell layout")

	// ErrNotInitialized is returned (or panicked with) when the layout has not been resolved yet.
	ErrNotInitialized = errors.New("cursescell: layout not initialized")

	// ErrSymbolNotFound is returned when the native library does not export an entry point.
	ErrSymbolNotFound = errors.New("cursescell: symbol not found")

	// ErrUnsupportedSurface is returned when a primitive has no entry point for the target surface.
	ErrUnsupportedSurface = errors.New("cursescell: primitive not available on surface")
)

// NativeCallError reports a foreign entry point that returned its failure sentinel.
type NativeCallError struct {
	Primitive Primitive
	Symbol    string
	Code      int32
}

func (e *NativeCallError) Error() string {
	return fmt.Sprintf("cursescell: %s (%s) returned %d", e.Primitive, e.Symbol, e.Code)
}

// Unwrap allows errors.Is(err, ErrNativeCallFailed).
func (e *NativeCallError) Unwrap() error {
	return ErrNativeCallFailed
}
