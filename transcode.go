package cursescell

import (
	"errors"
	"fmt"

	"golang.org/x/text/transform"
)

// DefaultChunkSize is the number of input bytes handed to a transcoder per step.
const DefaultChunkSize = 16

// transcode runs t over src, feeding at most chunk input bytes per step and
// appending the output to dst. Input the transformer could not consume yet
// (a sequence split across a chunk boundary) is carried into a wider window.
// The run only succeeds once all of src is consumed and t reports completion
// at end of input; anything else is reported with the fail sentinel.
func transcode(t transform.Transformer, dst, src []byte, chunk int, fail error) ([]byte, error) {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	t.Reset()

	var scratch [64]byte
	consumed, window := 0, chunk
	for {
		end := min(consumed+window, len(src))
		atEOF := end == len(src)
		nDst, nSrc, err := t.Transform(scratch[:], src[consumed:end], atEOF)
		dst = append(dst, scratch[:nDst]...)
		consumed += nSrc

		switch {
		case err == nil:
			if atEOF {
				if consumed != len(src) {
					return dst, fmt.Errorf("%w: %d of %d bytes consumed", fail, consumed, len(src))
				}
				return dst, nil
			}
			if nSrc == 0 && nDst == 0 {
				window += chunk
			} else {
				window = chunk
			}
		case errors.Is(err, transform.ErrShortDst):
			if nSrc == 0 && nDst == 0 {
				return dst, fmt.Errorf("%w: output unit larger than %d bytes", fail, len(scratch))
			}
		case errors.Is(err, transform.ErrShortSrc):
			if atEOF {
				return dst, fmt.Errorf("%w: truncated input after %d of %d bytes", fail, consumed, len(src))
			}
			if nSrc == 0 {
				window += chunk
			}
		default:
			return dst, fmt.Errorf("%w: %v", fail, err)
		}
	}
}
