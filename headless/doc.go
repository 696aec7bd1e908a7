// Package headless provides an in-process curses library for driving
// cursescell without a terminal.
//
// A [Library] keeps windows, pads and a screen handle in memory and exports
// the chtype entry points, plus the cchar_t ones when built for a wide
// layout. It implements [cursescell.Library] and [cursescell.Probe]:
//
//	lib := headless.Must(headless.WithLayout(cursescell.Wide32), headless.WithSize(24, 80))
//	f, _ := cursescell.NewFactory(lib.Layout())
//	d := cursescell.NewDispatcher(f, lib)
//
//	c, _ := f.EncodeAttr('a', cursescell.AttrBold)
//	d.AddCell(cursescell.Std(), c)
//
//	std, _ := lib.Stdscr()
//	fmt.Println(lib.LineContent(std, 0)) // "a"
//
// Entry points can be made to fail with [WithFailure] or
// [Library.SetFailure], and every call is recorded in [Library.Calls].
package headless
