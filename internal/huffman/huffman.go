// Package huffman implements the per-chunk Huffman coder: a frequency table
// built over one chunk's bytes, a canonical prefix-code tree derived from it
// via a min-priority queue, and a bit-exact wire layout carrying the
// serialized model ahead of the coded payload so the decoder can rebuild an
// identical tree without any side channel.
package huffman

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/coreos/pcompress/internal/bitio"
)

const headerRecordSize = 5 // 1 byte value + 4 byte big-endian count

// buildFrequencyTable counts byte occurrences and returns them sorted
// ascending by byte value, the order required for reproducible tree
// construction.
func buildFrequencyTable(input []byte) []freqEntry {
	counts := make(map[byte]uint32, 256)
	for _, b := range input {
		counts[b]++
	}
	bytesSeen := make([]byte, 0, len(counts))
	for b := range counts {
		bytesSeen = append(bytesSeen, b)
	}
	sort.Slice(bytesSeen, func(i, j int) bool { return bytesSeen[i] < bytesSeen[j] })

	entries := make([]freqEntry, len(bytesSeen))
	for i, b := range bytesSeen {
		entries[i] = freqEntry{Byte: b, Count: counts[b]}
	}
	return entries
}

// Compress encodes a single independent chunk. in must be non-empty — the
// reader layer never produces zero-length chunks, so a zero-entry frequency
// table is never built here.
func Compress(in []byte) []byte {
	freq := buildFrequencyTable(in)
	ar, root := buildTree(freq)
	table := assignCodes(ar, root)

	bw := bitio.NewWriter()
	var bitCount uint64
	for _, b := range in {
		for _, bit := range table[b] {
			bw.WriteBit(bit)
		}
		bitCount += uint64(len(table[b]))
	}
	payload := bw.Finish()

	var out bytes.Buffer
	out.Grow(2 + len(freq)*headerRecordSize + 8 + len(payload))

	var kBuf [2]byte
	binary.BigEndian.PutUint16(kBuf[:], uint16(len(freq)))
	out.Write(kBuf[:])

	for _, e := range freq {
		out.WriteByte(e.Byte)
		var cBuf [4]byte
		binary.BigEndian.PutUint32(cBuf[:], e.Count)
		out.Write(cBuf[:])
	}

	var bBuf [8]byte
	binary.BigEndian.PutUint64(bBuf[:], bitCount)
	out.Write(bBuf[:])

	out.Write(payload)
	return out.Bytes()
}

// Decompress reverses Compress, validating the header and payload length
// before ever touching the bit reader so that truncated or corrupt input
// yields an error instead of a panic.
func Decompress(in []byte) ([]byte, error) {
	if len(in) < 2 {
		return nil, fmt.Errorf("huffman: header truncated: need at least 2 bytes, got %d", len(in))
	}
	k := int(binary.BigEndian.Uint16(in[0:2]))
	if k == 0 {
		return nil, fmt.Errorf("huffman: frequency table is empty")
	}

	headerEnd := 2 + k*headerRecordSize + 8
	if len(in) < headerEnd {
		return nil, fmt.Errorf("huffman: header truncated: need %d bytes, got %d", headerEnd, len(in))
	}

	freq := make([]freqEntry, k)
	var lastByte int = -1
	off := 2
	for i := 0; i < k; i++ {
		b := in[off]
		if int(b) <= lastByte {
			return nil, fmt.Errorf("huffman: frequency table entries out of order at index %d", i)
		}
		lastByte = int(b)
		count := binary.BigEndian.Uint32(in[off+1 : off+5])
		if count == 0 {
			return nil, fmt.Errorf("huffman: zero count for byte %d", b)
		}
		freq[i] = freqEntry{Byte: b, Count: count}
		off += headerRecordSize
	}

	bitCount := binary.BigEndian.Uint64(in[off : off+8])
	off += 8

	payload := in[off:]
	neededBytes := (bitCount + 7) / 8
	if uint64(len(payload)) < neededBytes {
		return nil, fmt.Errorf("huffman: payload truncated: need %d bytes for %d bits, got %d", neededBytes, bitCount, len(payload))
	}

	ar, root := buildTree(freq)
	r := bitio.NewReader(payload)

	var totalSymbols uint64
	for _, e := range freq {
		totalSymbols += uint64(e.Count)
	}

	out := make([]byte, 0, totalSymbols)

	if ar[root].isLeaf {
		// Degenerate single-symbol tree: every code is the explicit 1-bit
		// code "0", so each symbol consumes exactly one bit.
		for i := uint64(0); i < bitCount; i++ {
			r.ReadBit()
			out = append(out, ar[root].value)
		}
		return out, nil
	}

	cur := root
	var consumed uint64
	for consumed < bitCount {
		if r.ReadBit() {
			cur = ar[cur].right
		} else {
			cur = ar[cur].left
		}
		consumed++
		if ar[cur].isLeaf {
			out = append(out, ar[cur].value)
			cur = root
		}
	}

	if cur != root {
		return nil, fmt.Errorf("huffman: payload ends mid-code")
	}
	return out, nil
}
