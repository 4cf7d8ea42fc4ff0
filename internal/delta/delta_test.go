package delta

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x00},
		{0x41, 0x41, 0x41, 0x41},
		{10, 12},
		{100, 200},
		bytes.Repeat([]byte{0x5A}, 20),
		{1, 3, 9, 23, 53, 113, 233, 0, 255, 128, 1},
	}
	for _, c := range cases {
		got := Decompress(Compress(c))
		if !bytes.Equal(got, c) {
			t.Errorf("round trip mismatch for %v: got %v", c, got)
		}
	}
}

func TestAllConstant(t *testing.T) {
	in := []byte{0x41, 0x41, 0x41, 0x41}
	out := Compress(in)
	// first byte 01000001, then run opcode 01 with r=2 (3 runs after the
	// first byte), then terminator 11, then padding.
	want := byte(0b01_010_11_0)
	if len(out) != 2 || out[0] != 0x41 || out[1] != want {
		t.Fatalf("Compress(%v) = %08b %08b, want %08b %08b", in, out[0], out[1], 0x41, want)
	}
	if got := Decompress(out); !bytes.Equal(got, in) {
		t.Fatalf("Decompress(Compress(%v)) = %v", in, got)
	}
}

func TestSmallDelta(t *testing.T) {
	in := []byte{10, 12}
	out := Compress(in)
	// 00001010 (first byte=10) | 00 00 11 (opcode, family 00, idx=3) | 11 (end)
	want := []byte{0b00001010, 0b00001111}
	if !bytes.Equal(out, want) {
		t.Fatalf("Compress(%v) = %08b, want %08b", in, out, want)
	}
	if got := Decompress(out); !bytes.Equal(got, in) {
		t.Fatalf("round trip mismatch: %v", got)
	}
}

func TestEscape(t *testing.T) {
	in := []byte{100, 200}
	out := Compress(in)
	if got := Decompress(out); !bytes.Equal(got, in) {
		t.Fatalf("round trip mismatch: %v", got)
	}
}

func TestBoundaryFamilies(t *testing.T) {
	in30 := []byte{100, 130} // delta = 30, top of family 3
	out := Compress(in30)
	if got := Decompress(out); !bytes.Equal(got, in30) {
		t.Fatalf("delta=30 round trip mismatch: %v", got)
	}

	in31 := []byte{100, 131} // delta = 31, must use the escape
	out31 := Compress(in31)
	if got := Decompress(out31); !bytes.Equal(got, in31) {
		t.Fatalf("delta=31 round trip mismatch: %v", got)
	}
}

func TestIndependence(t *testing.T) {
	whole := []byte("the quick brown fox jumps over the lazy dog, 0123456789!")
	var reassembled []byte
	for i := 0; i < len(whole); i += 7 {
		end := i + 7
		if end > len(whole) {
			end = len(whole)
		}
		chunk := whole[i:end]
		reassembled = append(reassembled, Decompress(Compress(chunk))...)
	}
	if !bytes.Equal(reassembled, whole) {
		t.Fatalf("chunked round trip mismatch:\n got: %q\nwant: %q", reassembled, whole)
	}
}
