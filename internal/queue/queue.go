// Package queue provides value-based binary heaps specialized for
// (node id, distance) pairs. Both min- and max-ordered heaps are supported;
// storage is a flat slice to keep traversal allocation-free.
package queue

// Item is a single heap entry.
type Item struct {
	ID   uint32  // node identifier
	Dist float32 // priority
}

// Queue is a binary heap of Items ordered by Dist.
type Queue struct {
	max   bool // true = max-heap (worst on top), false = min-heap
	items []Item
}

// NewMin returns a min-ordered queue with the given initial capacity.
func NewMin(capacity int) *Queue {
	return &Queue{max: false, items: make([]Item, 0, capacity)}
}

// NewMax returns a max-ordered queue with the given initial capacity.
func NewMax(capacity int) *Queue {
	return &Queue{max: true, items: make([]Item, 0, capacity)}
}

// Len returns the number of items currently in the queue.
func (q *Queue) Len() int { return len(q.items) }

// Reset truncates the queue for reuse without releasing its backing storage.
func (q *Queue) Reset() { q.items = q.items[:0] }

// Top returns the root item without removing it.
func (q *Queue) Top() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Push inserts an item while maintaining the heap invariant.
func (q *Queue) Push(it Item) {
	q.items = append(q.items, it)
	q.siftUp(len(q.items) - 1)
}

// PushBounded inserts an item into a max-heap whose size is capped at limit.
// When the heap is full the item replaces the current worst entry only if it
// is strictly better; otherwise it is dropped.
func (q *Queue) PushBounded(it Item, limit int) {
	if len(q.items) < limit {
		q.Push(it)
		return
	}
	if limit == 0 || !q.less(q.items[0], it) {
		return
	}
	q.items[0] = it
	q.siftDown(0)
}

// Pop removes and returns the root item.
func (q *Queue) Pop() (Item, bool) {
	n := len(q.items)
	if n == 0 {
		return Item{}, false
	}
	root := q.items[0]
	last := q.items[n-1]
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}
	return root, true
}

// Min returns the smallest-distance item in the queue. For min-heaps this is
// the root; for max-heaps the backing slice is scanned.
func (q *Queue) Min() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	if !q.max {
		return q.items[0], true
	}
	best := q.items[0]
	for _, it := range q.items[1:] {
		if it.Dist < best.Dist {
			best = it
		}
	}
	return best, true
}

// less reports whether a should be closer to the root than b.
func (q *Queue) less(a, b Item) bool {
	if q.max {
		return a.Dist > b.Dist
	}
	return a.Dist < b.Dist
}

func (q *Queue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(q.items[i], q.items[p]) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *Queue) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && q.less(q.items[r], q.items[l]) {
			best = r
		}
		if !q.less(q.items[best], q.items[i]) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
