// Package driver composes the codecs and the dispatcher into the four
// (action, algorithm) operations, and owns reading stdin, running the
// dispatch, and writing stdout in the right framing for each direction.
package driver

import (
	"context"
	"fmt"
	"io"

	"github.com/coreos/pcompress/internal/chunkio"
	"github.com/coreos/pcompress/internal/delta"
	"github.com/coreos/pcompress/internal/dispatch"
	"github.com/coreos/pcompress/internal/huffman"
)

// Algorithm selects a compression algorithm.
type Algorithm string

const (
	Delta   Algorithm = "delta"
	Huffman Algorithm = "huffman"
)

// ParseAlgorithm validates a user-supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case Delta, Huffman:
		return Algorithm(s), nil
	default:
		return "", fmt.Errorf("driver: unknown algorithm %q (want %q or %q)", s, Delta, Huffman)
	}
}

// Action selects compression or decompression.
type Action int

const (
	Compress Action = iota
	Decompress
)

// Options configures one run of the driver.
type Options struct {
	Action    Action
	Algorithm Algorithm
	ChunkSize int // only meaningful for Action == Compress
	Ranks     int // total simulated ranks, dispatcher + workers; must be >= 2

	// OnChunk, if set, is called once per processed chunk with its input
	// and output sizes. It exists so a caller can feed counters (see
	// internal/metrics) without this package needing to know about them.
	OnChunk func(in, out int)
}

// chunkFunc returns the ChunkFunc matching the requested action and
// algorithm, wrapped to report sizes to opts.OnChunk when set.
func chunkFunc(opts Options) dispatch.ChunkFunc {
	var base dispatch.ChunkFunc
	switch opts.Action {
	case Compress:
		switch opts.Algorithm {
		case Delta:
			base = func(data []byte) ([]byte, error) { return delta.Compress(data), nil }
		case Huffman:
			base = func(data []byte) ([]byte, error) { return huffman.Compress(data), nil }
		}
	case Decompress:
		switch opts.Algorithm {
		case Delta:
			base = func(data []byte) ([]byte, error) { return delta.Decompress(data), nil }
		case Huffman:
			base = huffman.Decompress
		}
	}
	if base == nil || opts.OnChunk == nil {
		return base
	}
	return func(data []byte) ([]byte, error) {
		out, err := base(data)
		if err != nil {
			return nil, err
		}
		opts.OnChunk(len(data), len(out))
		return out, nil
	}
}

// Run reads input from r, dispatches it across opts.Ranks simulated ranks,
// and writes the result to w: compressed output is framed with a
// terminator, decompressed output is raw.
func Run(ctx context.Context, opts Options, r io.Reader, w io.Writer) error {
	if opts.Ranks < 2 {
		return fmt.Errorf("driver: number of ranks must be at least 2, got %d", opts.Ranks)
	}

	var chunks [][]byte
	var err error
	switch opts.Action {
	case Compress:
		chunks, err = chunkio.ReadRaw(r, opts.ChunkSize)
	case Decompress:
		chunks, err = chunkio.ReadFramed(r)
	default:
		return fmt.Errorf("driver: unknown action %v", opts.Action)
	}
	if err != nil {
		return err
	}

	fn := chunkFunc(opts)
	if fn == nil {
		return fmt.Errorf("driver: unsupported action/algorithm combination")
	}

	results, err := dispatch.Run(ctx, opts.Ranks, chunks, fn)
	if err != nil {
		return fmt.Errorf("driver: %w", err)
	}

	switch opts.Action {
	case Compress:
		return chunkio.WriteFramed(w, results)
	default:
		return chunkio.WriteRaw(w, results)
	}
}
