package frame

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	chunks := [][]byte{
		[]byte("first"),
		[]byte("second"),
		[]byte("third chunk with more bytes"),
	}

	var buf bytes.Buffer
	for _, c := range chunks {
		if err := WriteChunk(&buf, c); err != nil {
			t.Fatalf("WriteChunk: %v", err)
		}
	}
	if err := WriteTerminator(&buf); err != nil {
		t.Fatalf("WriteTerminator: %v", err)
	}

	var got [][]byte
	for {
		payload, term, err := ReadChunk(&buf)
		if err != nil {
			t.Fatalf("ReadChunk: %v", err)
		}
		if term {
			break
		}
		got = append(got, payload)
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

func TestTerminatorNotMistakenForData(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTerminator(&buf); err != nil {
		t.Fatalf("WriteTerminator: %v", err)
	}
	_, term, err := ReadChunk(&buf)
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	if !term {
		t.Fatal("expected terminator frame")
	}
}
