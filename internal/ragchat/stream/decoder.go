package stream

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns a sequence of byte chunks into text. A multi-byte UTF-8
// sequence split across two chunks is held back until it is complete, so
// it never decodes to a replacement character.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	dst     []byte
}

// NewDecoder returns a UTF-8 decoder with no buffered input.
func NewDecoder() *Decoder {
	return &Decoder{
		t:   unicode.UTF8.NewDecoder(),
		dst: make([]byte, 4096),
	}
}

// Decode consumes a chunk and returns the text it completes. Incomplete
// trailing bytes are buffered for the next call.
func (d *Decoder) Decode(chunk []byte) string {
	return d.decode(chunk, false)
}

// Flush returns whatever is still buffered. Bytes that never formed a
// complete character decode to U+FFFD. The decoder is reset afterwards.
func (d *Decoder) Flush() string {
	return d.decode(nil, true)
}

// Pending reports how many bytes are waiting for the rest of a character.
func (d *Decoder) Pending() int {
	return len(d.pending)
}

func (d *Decoder) decode(chunk []byte, atEOF bool) string {
	src := make([]byte, 0, len(d.pending)+len(chunk))
	src = append(src, d.pending...)
	src = append(src, chunk...)

	var out []byte
	for {
		nDst, nSrc, err := d.t.Transform(d.dst, src, atEOF)
		out = append(out, d.dst[:nDst]...)
		src = src[nSrc:]
		if err == transform.ErrShortDst {
			continue
		}
		// nil, or ErrShortSrc when the tail is an incomplete sequence.
		break
	}

	if atEOF {
		d.pending = nil
		d.t.Reset()
	} else {
		d.pending = append(d.pending[:0], src...)
	}
	return string(out)
}
