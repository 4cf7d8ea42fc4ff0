// Package delta implements the bit-packed per-byte delta coder: the first
// byte of a chunk is stored verbatim, and each following byte is recorded as
// a signed delta from its predecessor using one of four fixed-width families,
// a run-length opcode for repeated bytes, or an escape for deltas too large
// for the families.
//
// Callers are expected to hand it complete, non-empty chunks — the reader
// layer never produces zero-length chunks, so neither Compress nor
// Decompress needs to special-case one.
package delta

import "github.com/coreos/pcompress/internal/bitio"

const (
	opShortDelta  = 0b00
	opRun         = 0b01
	opLongDelta   = 0b10
	opEnd         = 0b11
)

// families holds the admissible non-zero deltas for each of the four short
// delta families, ascending within each family as required so that the
// index found by indexOf below matches between encoder and decoder.
var families = [4][]int16{
	{-2, -1, 1, 2},
	{-6, -5, -4, -3, 3, 4, 5, 6},
	{-14, -13, -12, -11, -10, -9, -8, -7, 7, 8, 9, 10, 11, 12, 13, 14},
	{
		-30, -29, -28, -27, -26, -25, -24, -23, -22, -21, -20, -19, -18, -17, -16, -15,
		15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30,
	},
}

func familyOf(abs int16) int {
	switch {
	case abs <= 2:
		return 0
	case abs <= 6:
		return 1
	case abs <= 14:
		return 2
	case abs <= 30:
		return 3
	default:
		panic("delta: diff out of short-family range")
	}
}

func indexOf(family int, diff int16) uint8 {
	for i, d := range families[family] {
		if d == diff {
			return uint8(i)
		}
	}
	panic("delta: diff not found in family")
}

// diffToBits returns the field written after the 00 opcode — data is the
// family marker and index packed together, count is the total field width
// in bits (family marker width 2 plus index width family+2).
func diffToBits(diff int16) (data uint8, count int) {
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	f := familyOf(abs)
	idx := indexOf(f, diff)
	return (uint8(f) << uint(f+2)) | idx, f + 4
}

func bitsToDiff(family int, idx uint8) int16 {
	return families[family][idx]
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// Compress encodes a single independent chunk. in must be non-empty.
func Compress(in []byte) []byte {
	w := bitio.NewWriter()
	w.WriteByte(in[0])

	var repetition uint8
	flushRun := func() {
		w.WriteBits(opRun, 2)
		w.WriteBits(repetition-1, 3)
		repetition = 0
	}

	for i := 1; i < len(in); i++ {
		diff := int16(in[i]) - int16(in[i-1])
		if diff == 0 {
			repetition++
			if repetition == 8 {
				flushRun()
			}
			continue
		}

		if repetition != 0 {
			flushRun()
		}

		if abs16(diff) <= 30 {
			w.WriteBits(opShortDelta, 2)
			data, count := diffToBits(diff)
			w.WriteBits(data, count)
		} else {
			w.WriteBits(opLongDelta, 2)
			w.WriteBit(diff < 0)
			w.WriteByte(byte(abs16(diff)))
		}
	}

	if repetition != 0 {
		flushRun()
	}
	w.WriteBits(opEnd, 2)
	return w.Finish()
}

// Decompress reverses Compress. Malformed input (an unrecognized opcode, or a
// bit stream that ends before the terminator) is a fatal programmer error per
// the codec's contract — framing upstream guarantees chunks are complete —
// so it surfaces as a panic rather than an error return.
func Decompress(in []byte) []byte {
	r := bitio.NewReader(in)
	first := r.ReadByte()
	out := []byte{first}
	last := first

	for {
		switch r.ReadBits(2) {
		case opShortDelta:
			family := int(r.ReadBits(2))
			count := family + 2
			idx := r.ReadBits(count)
			b := byte(int16(last) + bitsToDiff(family, idx))
			out = append(out, b)
			last = b
		case opRun:
			reps := r.ReadBits(3)
			for i := uint8(0); i <= reps; i++ {
				out = append(out, last)
			}
		case opLongDelta:
			neg := r.ReadBit()
			mag := r.ReadByte()
			var b byte
			if neg {
				b = byte(int16(last) - int16(mag))
			} else {
				b = byte(int16(last) + int16(mag))
			}
			out = append(out, b)
			last = b
		case opEnd:
			return out
		default:
			panic("delta: unreachable opcode")
		}
	}
}
