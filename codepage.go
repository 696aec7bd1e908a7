package cursescell

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultCodePage is the narrow-layout code page used when none is configured.
const DefaultCodePage = "ISO-8859-1"

// LookupCodePage returns the single-byte code page registered under name.
// IANA names and aliases are accepted, as are the display names of charmap.All.
func LookupCodePage(name string) (*charmap.Charmap, error) {
	if name == "" {
		name = DefaultCodePage
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		if cm, ok := enc.(*charmap.Charmap); ok {
			return cm, nil
		}
		return nil, fmt.Errorf("cursescell: code page %q is not a single-byte encoding", name)
	}
	want := normalizeCodePage(name)
	for _, enc := range charmap.All {
		cm, ok := enc.(*charmap.Charmap)
		if ok && normalizeCodePage(cm.String()) == want {
			return cm, nil
		}
	}
	return nil, fmt.Errorf("cursescell: unknown code page %q", name)
}

func normalizeCodePage(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(s))
}
