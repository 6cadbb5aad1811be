package hnsw

import "sync/atomic"

// node is a single graph member. The adjacency structure is immutable once
// stored: every update builds a fresh outer slice and swaps it in through
// the atomic pointer, so readers never observe a partially updated
// neighborhood.
type node struct {
	id    uint32
	level int32

	// conns[l] holds the neighbor ids at layer l, sorted by ascending
	// distance to this node at the time the list was built.
	conns atomic.Pointer[[][]uint32]
}

func newNode(id uint32, level int) *node {
	n := &node{id: id, level: int32(level)}
	conns := make([][]uint32, level+1)
	n.conns.Store(&conns)
	return n
}

// neighbors returns the published adjacency at layer l. The slice is
// immutable; callers must not modify it.
func (n *node) neighbors(l int) []uint32 {
	conns := *n.conns.Load()
	if l < 0 || l >= len(conns) {
		return nil
	}
	return conns[l]
}

// replaceNeighbors atomically swaps the adjacency at layer l. Only the
// serialized writer calls this.
func (n *node) replaceNeighbors(l int, ids []uint32) {
	old := *n.conns.Load()
	next := make([][]uint32, len(old))
	copy(next, old)
	next[l] = ids
	n.conns.Store(&next)
}

// degree returns the number of neighbors at layer l.
func (n *node) degree(l int) int {
	return len(n.neighbors(l))
}
