// Package frame implements the length-prefixed chunk framing used on stdio
// for compressed streams: each chunk is written as an 8-byte big-endian
// length followed by that many payload bytes, and a zero-length frame
// terminates the stream. Framing compressed output lets it be piped back in
// unchanged as decompression input.
package frame

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteChunk writes one length-prefixed frame.
func WriteChunk(w io.Writer, payload []byte) error {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("frame: write length: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("frame: write payload: %w", err)
	}
	return nil
}

// WriteTerminator writes the zero-length sentinel frame that ends a stream.
func WriteTerminator(w io.Writer) error {
	return WriteChunk(w, nil)
}

// ReadChunk reads one frame. term is true, with a nil payload, when the
// sentinel frame was read — its zero length field can never be mistaken for
// a data frame, since a genuine zero-length chunk is never produced by the
// reader layer.
func ReadChunk(r io.Reader) (payload []byte, term bool, err error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, false, fmt.Errorf("frame: read length: %w", err)
	}
	n := binary.BigEndian.Uint64(lenBuf[:])
	if n == 0 {
		return nil, true, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false, fmt.Errorf("frame: short read of %d-byte payload: %w", n, err)
	}
	return buf, false, nil
}
