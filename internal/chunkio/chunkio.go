// Package chunkio reads and writes the chunk lists that the dispatcher
// distributes to workers. Compression input is either the whole stream as
// one chunk or fixed-size windows of it; decompression input is always the
// framed form produced by a prior compress run.
package chunkio

import (
	"fmt"
	"io"

	"github.com/coreos/pcompress/internal/frame"
)

// ReadRaw reads all of r and splits it into chunks of at most size bytes
// each (the last may be shorter). size <= 0 means the whole input is a
// single chunk. Chunks are never zero-length: an empty stream yields zero
// chunks, never one empty chunk, so the codecs never need to special-case
// an empty chunk.
func ReadRaw(r io.Reader, size int) ([][]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("chunkio: read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if size <= 0 {
		return [][]byte{data}, nil
	}

	var chunks [][]byte
	for i := 0; i < len(data); i += size {
		end := i + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[i:end])
	}
	return chunks, nil
}

// ReadFramed reads a framed chunk list, per package frame, stopping at the
// terminator frame.
func ReadFramed(r io.Reader) ([][]byte, error) {
	var chunks [][]byte
	for {
		payload, term, err := frame.ReadChunk(r)
		if err != nil {
			return nil, fmt.Errorf("chunkio: %w", err)
		}
		if term {
			return chunks, nil
		}
		chunks = append(chunks, payload)
	}
}

// WriteFramed writes each chunk as a frame followed by the terminator frame.
func WriteFramed(w io.Writer, chunks [][]byte) error {
	for _, c := range chunks {
		if err := frame.WriteChunk(w, c); err != nil {
			return fmt.Errorf("chunkio: %w", err)
		}
	}
	return frame.WriteTerminator(w)
}

// WriteRaw concatenates chunks directly, with no framing.
func WriteRaw(w io.Writer, chunks [][]byte) error {
	for _, c := range chunks {
		if _, err := w.Write(c); err != nil {
			return fmt.Errorf("chunkio: write chunk: %w", err)
		}
	}
	return nil
}
