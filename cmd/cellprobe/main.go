// Command cellprobe opens the installed curses library, resolves its cell
// layout and prints how text is laid out in native cells.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielgatis/go-cursescell"
	"go.uber.org/zap"
)

func main() {
	cfg, err := cursescell.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	libs := flag.String("lib", strings.Join(cfg.Libraries, ","), "comma-separated shared libraries to try")
	layout := flag.String("layout", cfg.Layout, "force a layout (narrow, wide16, wide32)")
	text := flag.String("text", "", "text to encode and dump")
	verbose := flag.Bool("v", cfg.LogDevelopment, "development logging")
	flag.Parse()

	cfg.Layout = *layout
	cfg.LogDevelopment = *verbose
	if *verbose {
		cfg.LogLevel = "debug"
	}

	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := cursescell.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()
	opts = append(opts, cursescell.WithLogger(logger))

	lib, err := cursescell.OpenLibrary(logger, strings.Split(*libs, ",")...)
	if err != nil {
		logger.Fatal("open curses library", zap.Error(err))
	}
	defer lib.Close()

	f, err := cursescell.Init(lib, opts...)
	if err != nil {
		logger.Fatal("resolve cell layout", zap.String("library", lib.Name()), zap.Error(err))
	}

	fmt.Printf("library:   %s\n", lib.Name())
	if v := lib.Version(); v != "" {
		fmt.Printf("version:   %s\n", v)
	}
	fmt.Printf("layout:    %s\n", f.Layout())
	fmt.Printf("cell size: %d bytes\n", f.CellSize())
	fmt.Printf("wchar_t:   %d bytes\n", lib.WcharSize())

	if *text == "" {
		return
	}
	s, err := f.Text(*text, cursescell.AttrNormal, 0)
	if err != nil {
		logger.Fatal("encode text", zap.Error(err))
	}
	defer s.Release()

	fmt.Printf("cells:     %d (%d bytes with terminator)\n", s.Len(), f.ByteCountFor(s.Len(), true))
	size := f.CellSize()
	b := s.Bytes()
	for i := 0; i < s.Len(); i++ {
		fmt.Printf("  [%d] %s\n", i, hex.EncodeToString(b[i*size:(i+1)*size]))
	}
}
