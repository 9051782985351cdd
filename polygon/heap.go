package polygon

import "container/heap"

// edgeEntry snapshots an edge's pending area at push time. The entry is stale
// once the edge's current pending area differs from the snapshot, which
// happens when the edge is split or re-estimated.
type edgeEntry struct {
	h    Handle
	area float64
}

// edgeQueue is a max-heap of edge entries ordered by pending area, with ties
// broken toward the lower handle. Stale entries are left in place and skipped
// on pop (lazy invalidation), which keeps both push and pop O(log n).
type edgeQueue []edgeEntry

func (q edgeQueue) Len() int { return len(q) }

func (q edgeQueue) Less(i, j int) bool {
	if q[i].area != q[j].area {
		return q[i].area > q[j].area
	}
	return q[i].h < q[j].h
}

func (q edgeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *edgeQueue) Push(x any) { *q = append(*q, x.(edgeEntry)) }

func (q *edgeQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

func (q *edgeQueue) push(h Handle, area float64) {
	heap.Push(q, edgeEntry{h: h, area: area})
}

func (q *edgeQueue) pop() edgeEntry {
	return heap.Pop(q).(edgeEntry)
}
