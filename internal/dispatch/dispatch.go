// Package dispatch implements the rank-0 dispatcher and rank-1..N-1 worker
// halves of the chunked processing protocol: round-robin assignment of
// chunks to workers, collection of results tagged by source rank, and
// reassembly in original input order by round-robin draining of per-worker
// FIFO slots.
package dispatch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/coreos/pcompress/capnslog"
	"github.com/coreos/pcompress/internal/fabric"
)

var log = capnslog.NewPackageLogger("github.com/coreos/pcompress", "dispatch")

// ChunkFunc processes one chunk on a worker rank.
type ChunkFunc func(data []byte) ([]byte, error)

// Run distributes chunks across n-1 worker goroutines (n must be >= 2),
// collects their results, and returns them reordered to match the input.
//
// Distribution and collection run concurrently, not send-everything-then-
// collect: fabric's point-to-point channels are unbuffered, so a worker
// that finishes a chunk before the dispatcher has sent every other chunk
// must be able to hand its result back immediately. If the dispatcher only
// started collecting after sending every chunk and every shutdown
// sentinel, a worker blocked sending a result could in turn block the
// dispatcher's sentinel send to it, wedging the whole run for any M large
// enough to fill a worker's single in-flight result. Running the send loop
// in its own goroutine alongside the RecvAny collection loop below means
// collection starts draining results as soon as the first one is ready,
// regardless of how many chunks remain to be sent, so the protocol holds
// for any M chunks and any N >= 2 ranks.
//
// A failing worker here is a goroutine sharing this process's address
// space, not an independent process: SafeProcessChunk's panic recovery
// turns a codec panic into an error instead of taking down the whole
// pipeline, and that error cancels every other rank's pending Send/Recv
// via the errgroup context so the dispatcher never blocks forever waiting
// on a rank that has already exited.
func Run(ctx context.Context, n int, chunks [][]byte, fn ChunkFunc) ([][]byte, error) {
	if n < 2 {
		return nil, fmt.Errorf("dispatch: number of ranks must be at least 2, got %d", n)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	world := fabric.NewLocalWorld(n)
	workers := n - 1

	g, gctx := errgroup.WithContext(ctx)
	for w := 1; w < n; w++ {
		w := w
		conn := world.Rank(fabric.Rank(w))
		g.Go(func() error { return runWorker(gctx, conn, w, fn) })
	}

	dispatcher := world.Rank(0)
	log.Infof("dispatching %d chunks across %d workers", len(chunks), workers)
	g.Go(func() error {
		for i, c := range chunks {
			dst := fabric.Rank(i%workers + 1)
			if err := dispatcher.Send(gctx, dst, c); err != nil {
				return fmt.Errorf("dispatch: send chunk %d to worker %d: %w", i, dst, err)
			}
		}
		for w := 1; w < n; w++ {
			if err := dispatcher.Send(gctx, fabric.Rank(w), nil); err != nil {
				return fmt.Errorf("dispatch: send shutdown sentinel to worker %d: %w", w, err)
			}
		}
		return nil
	})

	slots := make([][][]byte, workers)
	var collectErr error
	for received := 0; received < len(chunks); received++ {
		data, src, err := dispatcher.RecvAny(gctx)
		if err != nil {
			collectErr = fmt.Errorf("dispatch: collect results: %w", err)
			break
		}
		slots[src-1] = append(slots[src-1], data)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if collectErr != nil {
		return nil, collectErr
	}

	log.Infof("collected %d chunks, reassembling in order", len(chunks))
	return drain(slots, len(chunks)), nil
}

// runWorker is a worker's main loop: receive until the empty-payload
// sentinel, process, reply, repeat.
func runWorker(ctx context.Context, conn fabric.Conn, rank int, fn ChunkFunc) error {
	for {
		data, err := conn.Recv(ctx, 0)
		if err != nil {
			return fmt.Errorf("worker %d: recv: %w", rank, err)
		}
		if len(data) == 0 {
			return nil
		}
		out, err := SafeProcessChunk(data, fn)
		if err != nil {
			log.Errorf("worker %d: process chunk: %v", rank, err)
			return fmt.Errorf("worker %d: %w", rank, err)
		}
		if err := conn.Send(ctx, 0, out); err != nil {
			return fmt.Errorf("worker %d: send result: %w", rank, err)
		}
	}
}

// SafeProcessChunk calls fn, converting any panic (the Delta codec's
// documented reaction to malformed input it isn't meant to recover from)
// into an error so one bad chunk can't take the whole in-process pipeline
// down with it.
func SafeProcessChunk(data []byte, fn ChunkFunc) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(data)
}

// drain reassembles results by round-robin draining slots 0..len(slots)-1,
// popping from the front of each and stopping as soon as one is empty. This
// is correct precisely because dispatch assigned chunks the same way.
func drain(slots [][][]byte, total int) [][]byte {
	ordered := make([][]byte, 0, total)
	idx := make([]int, len(slots))
outer:
	for {
		for w := range slots {
			if idx[w] >= len(slots[w]) {
				break outer
			}
			ordered = append(ordered, slots[w][idx[w]])
			idx[w]++
		}
	}
	return ordered
}
