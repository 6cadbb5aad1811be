package queue

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinQueueOrder(t *testing.T) {
	q := NewMin(8)
	for _, d := range []float32{5, 1, 3, 2, 4} {
		q.Push(Item{ID: uint32(d), Dist: d})
	}

	var got []float32
	for q.Len() > 0 {
		it, ok := q.Pop()
		require.True(t, ok)
		got = append(got, it.Dist)
	}
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, got)
}

func TestMaxQueueOrder(t *testing.T) {
	q := NewMax(8)
	for _, d := range []float32{5, 1, 3, 2, 4} {
		q.Push(Item{ID: uint32(d), Dist: d})
	}

	var got []float32
	for q.Len() > 0 {
		it, _ := q.Pop()
		got = append(got, it.Dist)
	}
	assert.Equal(t, []float32{5, 4, 3, 2, 1}, got)
}

func TestPushBounded(t *testing.T) {
	q := NewMax(4)
	for d := float32(1); d <= 10; d++ {
		q.PushBounded(Item{ID: uint32(d), Dist: d}, 4)
	}

	// The four smallest distances survive; the worst of them is on top.
	assert.Equal(t, 4, q.Len())
	top, ok := q.Top()
	require.True(t, ok)
	assert.Equal(t, float32(4), top.Dist)

	// An item worse than the current top must be dropped.
	q.PushBounded(Item{ID: 99, Dist: 100}, 4)
	assert.Equal(t, 4, q.Len())
	top, _ = q.Top()
	assert.Equal(t, float32(4), top.Dist)
}

func TestMinOnMaxHeap(t *testing.T) {
	q := NewMax(8)
	_, ok := q.Min()
	assert.False(t, ok)

	for _, d := range []float32{3, 7, 1, 9} {
		q.Push(Item{ID: uint32(d), Dist: d})
	}
	it, ok := q.Min()
	require.True(t, ok)
	assert.Equal(t, float32(1), it.Dist)
}

func TestPopEmpty(t *testing.T) {
	q := NewMin(0)
	_, ok := q.Pop()
	assert.False(t, ok)
	_, ok = q.Top()
	assert.False(t, ok)
}

func TestReset(t *testing.T) {
	q := NewMin(4)
	q.Push(Item{ID: 1, Dist: 1})
	q.Reset()
	assert.Equal(t, 0, q.Len())
}

func TestRandomizedHeapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	q := NewMin(128)
	ref := make([]float32, 0, 128)
	for i := 0; i < 128; i++ {
		d := rng.Float32()
		q.Push(Item{ID: uint32(i), Dist: d})
		ref = append(ref, d)
	}
	sort.Slice(ref, func(i, j int) bool { return ref[i] < ref[j] })

	for i := 0; i < len(ref); i++ {
		it, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, ref[i], it.Dist)
	}
}
