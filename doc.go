// Package cursescell exchanges character cells with a native curses library.
//
// A curses library is built either for narrow cells (a 32-bit chtype holding
// one code-page byte, a color pair and attribute bits) or for wide cells (a
// cchar_t holding attributes, up to five wchar_t units and an extended color
// pair). The cell layout, and the width of wchar_t, are decided when the
// library is built. This package discovers the layout once per process and
// then converts host text to and from that layout.
//
// # Quick Start
//
// Open the installed library, bind the layout and draw:
//
//	lib, err := cursescell.OpenLibrary(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f := cursescell.MustInit(lib)
//
//	s, err := f.Text("hello", cursescell.AttrBold, 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Release()
//
//	d := cursescell.NewDispatcher(f, lib)
//	d.AddCells(cursescell.Std().At(0, 0), s, -1)
//
// # Architecture
//
// The package is organized around these core types:
//
//   - [Layout]: The binary shape of a cell, resolved from a [Probe]
//   - [Codec]: Converts code points to and from cells of one layout
//   - [Cell]: A [NarrowCell] or a [WideCell]
//   - [BufferState]: Owned, pooled or borrowed memory shared with native code
//   - [CellString]: A run of cells, optionally followed by a zero terminator
//   - [Factory]: Binds codec, buffers and entry points for the active layout
//   - [Dispatcher]: Calls terminal primitives through a [Library]
//
// # Layout
//
// [Init] resolves the layout from a [Probe] and binds the process-wide
// [Factory]. It runs once; [Active] panics if it has not succeeded.
// A layout may be forced with [WithLayout] or CURSESCELL_LAYOUT. A wide
// library can be driven through its narrow entry points, but not the reverse.
//
// # Text
//
// Narrow cells map each rune through an 8-bit code page (ISO-8859-1 by
// default, see [LookupCodePage]). Wide cells encode runes as UTF-16 or UTF-32
// in host byte order, grouping zero-width combining marks into the preceding
// cell. Conversions run through golang.org/x/text transformers, fed in
// chunks so sequences split across a chunk boundary are carried over.
//
// # Color Pairs
//
// Narrow cells store the low 8 bits of a pair. Wide cells store the low
// 16 bits in the extended color field and the pair clamped to 255 in the
// legacy attribute bits; decoding prefers the extended field.
//
// # Buffers
//
// Buffers rented with [Factory.CreateBuffer] come from a size-classed
// [BufferPool] and must be released. [BufferState.Borrow] pins a buffer for
// the duration of one native call.
//
// # Middleware
//
// [Middleware] intercepts native calls made by a [Dispatcher]:
//
//	mw := &cursescell.Middleware{
//	    Invoke: func(c cursescell.Call, next func(cursescell.Call) cursescell.Arg) cursescell.Arg {
//	        log.Printf("%s via %s", c.Primitive, c.Symbol)
//	        return next(c)
//	    },
//	}
//	d := cursescell.NewDispatcher(f, lib, cursescell.WithMiddleware(mw))
//
// # Testing
//
// Package headless provides an in-process curses library that implements
// every entry point the dispatcher binds, for both layouts.
package cursescell
