package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

func identity(data []byte) ([]byte, error) {
	out := append([]byte(nil), data...)
	return out, nil
}

func TestReassemblyPreservesOrder(t *testing.T) {
	chunks := [][]byte{
		[]byte("c0"), []byte("c1"), []byte("c2"), []byte("c3"), []byte("c4"),
	}
	got, err := Run(context.Background(), 3, chunks, identity)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != len(chunks) {
		t.Fatalf("got %d chunks, want %d", len(got), len(chunks))
	}
	for i := range chunks {
		if !bytes.Equal(got[i], chunks[i]) {
			t.Errorf("chunk %d = %q, want %q", i, got[i], chunks[i])
		}
	}
}

func TestManyChunksManyWorkers(t *testing.T) {
	var chunks [][]byte
	for i := 0; i < 97; i++ {
		chunks = append(chunks, []byte(fmt.Sprintf("chunk-%03d", i)))
	}
	got, err := Run(context.Background(), 8, chunks, identity)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != len(chunks) {
		t.Fatalf("got %d chunks, want %d", len(got), len(chunks))
	}
	for i := range chunks {
		if !bytes.Equal(got[i], chunks[i]) {
			t.Fatalf("chunk %d = %q, want %q", i, got[i], chunks[i])
		}
	}
}

// TestManyChunksSingleWorkerDoesNotDeadlock guards against collection
// starting only after every chunk and shutdown sentinel has been sent: with
// a single worker rank, that ordering would require the worker to buffer
// every result before the dispatcher ever drains one, which it cannot do
// over fabric's small fixed-capacity result channel. Many more chunks than any fixed buffer size
// forces collection to overlap with sending for this to complete.
func TestManyChunksSingleWorkerDoesNotDeadlock(t *testing.T) {
	var chunks [][]byte
	for i := 0; i < 500; i++ {
		chunks = append(chunks, []byte(fmt.Sprintf("chunk-%04d", i)))
	}
	got, err := Run(context.Background(), 2, chunks, identity)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != len(chunks) {
		t.Fatalf("got %d chunks, want %d", len(got), len(chunks))
	}
	for i := range chunks {
		if !bytes.Equal(got[i], chunks[i]) {
			t.Fatalf("chunk %d = %q, want %q", i, got[i], chunks[i])
		}
	}
}

func TestRejectsFewerThanTwoRanks(t *testing.T) {
	_, err := Run(context.Background(), 1, [][]byte{[]byte("x")}, identity)
	if err == nil {
		t.Fatal("expected error for n < 2")
	}
}

func TestEmptyChunkListShortCircuits(t *testing.T) {
	got, err := Run(context.Background(), 4, nil, identity)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want no chunks", got)
	}
}

func TestWorkerErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	failing := func(data []byte) ([]byte, error) {
		if string(data) == "bad" {
			return nil, boom
		}
		return data, nil
	}
	chunks := [][]byte{[]byte("good"), []byte("bad"), []byte("good"), []byte("good")}
	_, err := Run(context.Background(), 3, chunks, failing)
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestWorkerPanicIsRecovered(t *testing.T) {
	panicky := func(data []byte) ([]byte, error) {
		if string(data) == "bad" {
			panic("malformed chunk")
		}
		return data, nil
	}
	chunks := [][]byte{[]byte("good"), []byte("bad"), []byte("good")}
	_, err := Run(context.Background(), 3, chunks, panicky)
	if err == nil {
		t.Fatal("expected panic to surface as an error")
	}
}
