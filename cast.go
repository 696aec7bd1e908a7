package cursescell

import "fmt"

// AsNarrow returns c as a NarrowCell.
func AsNarrow(c Cell) (NarrowCell, error) {
	return castCell[NarrowCell](c, Narrow)
}

// AsWide returns c as a WideCell built under layout.
func AsWide(c Cell, layout Layout) (WideCell, error) {
	return castCell[WideCell](c, layout)
}

// castCell is the single match from the polymorphic Cell to a concrete layout type.
func castCell[T NarrowCell | WideCell](c Cell, want Layout) (T, error) {
	var zero T
	switch v := c.(type) {
	case nil:
		return zero, fmt.Errorf("%w: nil cell", ErrInvalidCast)
	case NarrowCell, WideCell:
		if !v.Layout().Same(want) {
			return zero, fmt.Errorf("%w: %s cell used with %s layout", ErrInvalidCast, v.Layout(), want)
		}
		t, ok := v.(T)
		if !ok {
			return zero, fmt.Errorf("%w: %T is not %T", ErrInvalidCast, v, zero)
		}
		return t, nil
	default:
		return zero, fmt.Errorf("%w: unknown cell type %T", ErrInvalidCast, c)
	}
}

// checkString verifies that s was built by a factory with the given layout.
func checkString(s *CellString, want Layout) error {
	if s == nil {
		return fmt.Errorf("%w: nil cell string", ErrInvalidCast)
	}
	if !s.layout.Same(want) {
		return fmt.Errorf("%w: %s cell string used with %s layout", ErrInvalidCast, s.layout, want)
	}
	return nil
}
