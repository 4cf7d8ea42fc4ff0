package huffman

import "container/heap"

// node is one entry in an arena-addressed binary tree: either a leaf
// carrying a byte value, or an internal node referencing two children by
// index. Addressing nodes by small integer index avoids the pointer-chasing
// and "optional child that's never actually absent" asymmetry of a
// heap-allocated recursive tree.
type node struct {
	weight uint32
	isLeaf bool
	value  byte
	left   int
	right  int
}

type arena []node

func (a *arena) newLeaf(value byte, weight uint32) int {
	*a = append(*a, node{weight: weight, isLeaf: true, value: value})
	return len(*a) - 1
}

func (a *arena) newInternal(left, right int, weight uint32) int {
	*a = append(*a, node{weight: weight, left: left, right: right})
	return len(*a) - 1
}

// freqEntry is one row of a frequency table, kept in ascending byte order.
type freqEntry struct {
	Byte  byte
	Count uint32
}

// item is a priority-queue entry referencing an arena node. Ties are broken
// canonically so two independent runs over the same frequency table always
// build the identical tree: leaves order by byte value ascending, a leaf
// precedes an internal node of equal weight, and two internal nodes of
// equal weight order by the sequence in which they were combined (itself
// deterministic, since the queue is seeded in ascending byte order and pops
// two-at-a-time).
type item struct {
	nodeIdx  int
	weight   uint32
	isLeaf   bool
	leafByte byte
	seq      int
}

type priorityQueue []*item

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	if a.isLeaf != b.isLeaf {
		return a.isLeaf
	}
	if a.isLeaf {
		return a.leafByte < b.leafByte
	}
	return a.seq < b.seq
}

func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) { *pq = append(*pq, x.(*item)) }

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	*pq = old[:n-1]
	return it
}

// buildTree constructs the canonical Huffman tree for a frequency table that
// is already in ascending-byte order, as required by the seeding rule above.
// It returns the node arena and the index of the root.
func buildTree(freq []freqEntry) (arena, int) {
	ar := make(arena, 0, 2*len(freq)-1)
	pq := make(priorityQueue, 0, len(freq))
	heap.Init(&pq)

	for _, e := range freq {
		idx := ar.newLeaf(e.Byte, e.Count)
		heap.Push(&pq, &item{nodeIdx: idx, weight: e.Count, isLeaf: true, leafByte: e.Byte})
	}

	seq := 0
	for pq.Len() > 1 {
		left := heap.Pop(&pq).(*item)
		right := heap.Pop(&pq).(*item)
		weight := left.weight + right.weight
		idx := ar.newInternal(left.nodeIdx, right.nodeIdx, weight)
		heap.Push(&pq, &item{nodeIdx: idx, weight: weight, seq: seq})
		seq++
	}

	root := heap.Pop(&pq).(*item)
	return ar, root.nodeIdx
}

// code is one entry's prefix code, stored as a bit sequence since the
// deepest possible tree (one leaf per distinct byte, maximally unbalanced)
// can exceed the width of a machine word.
type code []bool

// assignCodes walks the tree from root, extending the prefix with 0 at each
// left branch and 1 at each right branch. The single-leaf degenerate case
// (one distinct byte in the chunk) is handled specially: the natural walk
// would assign it the empty code, which can't be written or read back, so
// it is assigned the one-bit code 0 instead.
func assignCodes(ar arena, root int) map[byte]code {
	table := make(map[byte]code)
	if ar[root].isLeaf {
		table[ar[root].value] = code{false}
		return table
	}

	var walk func(idx int, prefix code)
	walk = func(idx int, prefix code) {
		n := ar[idx]
		if n.isLeaf {
			c := make(code, len(prefix))
			copy(c, prefix)
			table[n.value] = c
			return
		}
		left := append(append(code{}, prefix...), false)
		right := append(append(code{}, prefix...), true)
		walk(n.left, left)
		walk(n.right, right)
	}
	walk(root, nil)
	return table
}
