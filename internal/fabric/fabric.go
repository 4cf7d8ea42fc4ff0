// Package fabric implements a ranked message-passing substrate: processes
// exchanging bytes over blocking, ordered point-to-point send/receive plus a
// "receive from any source" primitive. No external cross-process runtime is
// involved; this substrate plays that role entirely in-process instead: one
// goroutine stands in for one rank, and a channel per (dispatcher, worker)
// pair gives the same FIFO point-to-point guarantee a real runtime would
// (see DESIGN.md for the worker-pool shape this borrows). Ranks are modeled
// explicitly with a send/recv/recv-any contract rather than a single shared
// work queue.
package fabric

import (
	"context"
	"fmt"
)

// Rank is a process's identity in the cohort, in [0, Size()).
type Rank int

// envelope tags a payload with the rank that sent it, for RecvAny.
type envelope struct {
	rank Rank
	data []byte
}

// Conn is one rank's view of the fabric: the operations it may perform on
// itself. Rank 0 (the dispatcher) is the only rank expected to call
// RecvAny; ranks 1..Size()-1 (workers) only Send to and Recv from rank 0.
type Conn interface {
	Send(ctx context.Context, dst Rank, p []byte) error
	Recv(ctx context.Context, src Rank) ([]byte, error)
	RecvAny(ctx context.Context) ([]byte, Rank, error)
}

// World is a fixed cohort of ranks sharing one fabric.
type World interface {
	Size() int
	Rank(self Rank) Conn
}

// LocalWorld is an in-process World: rank 0 is always the caller's own
// goroutine, and ranks 1..n-1 are expected to be run by the caller (see
// package dispatch) as separate goroutines reading from the Conn this
// returns for their rank.
type LocalWorld struct {
	n        int
	toWorker []chan []byte
	results  chan envelope
}

// NewLocalWorld allocates the channels for an n-rank cohort. n must be >= 2.
func NewLocalWorld(n int) *LocalWorld {
	w := &LocalWorld{
		n:        n,
		toWorker: make([]chan []byte, n),
		results:  make(chan envelope, n),
	}
	for i := 1; i < n; i++ {
		w.toWorker[i] = make(chan []byte)
	}
	return w
}

func (w *LocalWorld) Size() int { return w.n }

func (w *LocalWorld) Rank(self Rank) Conn {
	return &localConn{w: w, self: self}
}

type localConn struct {
	w    *LocalWorld
	self Rank
}

func (c *localConn) Send(ctx context.Context, dst Rank, p []byte) error {
	data := append([]byte(nil), p...)
	if dst == 0 {
		if c.self == 0 {
			return fmt.Errorf("fabric: rank 0 cannot send to itself")
		}
		select {
		case c.w.results <- envelope{rank: c.self, data: data}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if c.self != 0 {
		return fmt.Errorf("fabric: rank %d cannot send to rank %d, only to rank 0", c.self, dst)
	}
	select {
	case c.w.toWorker[dst] <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *localConn) Recv(ctx context.Context, src Rank) ([]byte, error) {
	if src != 0 || c.self == 0 {
		return nil, fmt.Errorf("fabric: rank %d cannot point-to-point receive from rank %d", c.self, src)
	}
	select {
	case data := <-c.w.toWorker[c.self]:
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *localConn) RecvAny(ctx context.Context) ([]byte, Rank, error) {
	if c.self != 0 {
		return nil, 0, fmt.Errorf("fabric: only rank 0 may receive from any source")
	}
	select {
	case e := <-c.w.results:
		return e.data, e.rank, nil
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}
