package cursescell

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
)

// plannedCell is one output cell: the range of units it takes from the
// encoded text.
type plannedCell struct {
	start, end int
}

// plan validates text and groups its runes into cells, measured in units.
// Zero-width runes join the preceding cell while it has unit room.
func (f *Factory) plan(text string) ([]plannedCell, int, error) {
	var (
		cells []plannedCell
		units int
	)
	limit := f.codec.maxUnits()
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size <= 1 {
			return nil, 0, fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrIncompleteEncoding, i)
		}
		if r == 0 {
			// A zero glyph unit reads back as the terminator.
			return nil, 0, fmt.Errorf("%w: NUL at byte %d", f.codec.encodeFailure(), i)
		}
		i += size

		n := f.codec.unitsFor(r)
		if last := len(cells) - 1; last >= 0 && f.codec.combines(r) && cells[last].end-cells[last].start+n <= limit {
			cells[last].end += n
		} else {
			cells = append(cells, plannedCell{start: units, end: units + n})
		}
		units += n
	}
	return cells, units, nil
}

// BuildFromText writes text into buf as cells styled with attrs and pair.
// Text is validated, counted and encoded before any cell is written, so a
// failed build leaves buf untouched.
func (f *Factory) BuildFromText(buf *BufferState, text string, attrs Attr, pair ColorPair) (*CellString, error) {
	s, err := f.build(buf, text, attrs, pair)
	if err != nil {
		f.metrics.conversionFailed(opEncode, err)
		f.logger.Debug("cell string build failed", zap.Stringer("layout", f.layout), zap.Error(err))
	}
	return s, err
}

func (f *Factory) build(buf *BufferState, text string, attrs Attr, pair ColorPair) (*CellString, error) {
	if err := f.checkBuffer(buf); err != nil {
		return nil, err
	}
	cells, total, err := f.plan(text)
	if err != nil {
		return nil, err
	}
	if len(cells) > buf.Capacity() {
		return nil, fmt.Errorf("%w: %d cells needed, capacity %d", ErrBufferTooSmall, len(cells), buf.Capacity())
	}

	unit := f.codec.unitSize()
	encoded, err := transcode(f.codec.Encoding().NewEncoder(), make([]byte, 0, total*unit), []byte(text), f.chunk, f.codec.encodeFailure())
	if err != nil {
		return nil, err
	}
	if len(encoded) != total*unit {
		return nil, fmt.Errorf("%w: %d bytes produced, %d expected", f.codec.encodeFailure(), len(encoded), total*unit)
	}

	for i, c := range cells {
		f.codec.putGlyph(buf.cell(i), encoded[c.start*unit:c.end*unit], attrs, pair)
	}
	return f.stringOver(buf, len(cells)), nil
}

// BuildFromBytes decodes data from enc and writes it into buf as cells.
func (f *Factory) BuildFromBytes(buf *BufferState, data []byte, enc encoding.Encoding, attrs Attr, pair ColorPair) (*CellString, error) {
	if enc == nil {
		enc = encoding.Nop
	}
	text, err := transcode(enc.NewDecoder(), make([]byte, 0, len(data)), data, f.chunk, ErrIncompleteDecoding)
	if err != nil {
		f.metrics.conversionFailed(opDecode, err)
		return nil, err
	}
	return f.BuildFromText(buf, string(text), attrs, pair)
}

// BuildFromUTF16 writes UTF-16 units into buf as cells.
// Unpaired surrogates are rejected.
func (f *Factory) BuildFromUTF16(buf *BufferState, units []uint16, attrs Attr, pair ColorPair) (*CellString, error) {
	for i := 0; i < len(units); i++ {
		u := rune(units[i])
		switch {
		case u >= 0xd800 && u < 0xdc00:
			if i+1 >= len(units) || !utf16.IsSurrogate(rune(units[i+1])) || units[i+1] < 0xdc00 {
				return nil, fmt.Errorf("%w: unpaired surrogate at unit %d", ErrIncompleteEncoding, i)
			}
			i++
		case u >= 0xdc00 && u <= 0xdfff:
			return nil, fmt.Errorf("%w: unpaired surrogate at unit %d", ErrIncompleteEncoding, i)
		}
	}
	return f.BuildFromText(buf, string(utf16.Decode(units)), attrs, pair)
}

// Text rents a terminated buffer sized for text and builds it.
// The caller releases the returned string.
func (f *Factory) Text(text string, attrs Attr, pair ColorPair) (*CellString, error) {
	buf, err := f.CreateBuffer(f.CellCountFor(text), true)
	if err != nil {
		return nil, err
	}
	s, err := f.BuildFromText(buf, text, attrs, pair)
	if err != nil {
		buf.Release()
		return nil, err
	}
	return s, nil
}
