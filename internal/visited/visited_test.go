package visited

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisitAndReset(t *testing.T) {
	s := New(64)

	assert.False(t, s.Visited(7))
	s.Visit(7)
	s.Visit(63)
	assert.True(t, s.Visited(7))
	assert.True(t, s.Visited(63))
	assert.False(t, s.Visited(8))

	s.Reset()
	assert.False(t, s.Visited(7))
	assert.False(t, s.Visited(63))
}

func TestGrowBeyondCapacity(t *testing.T) {
	s := New(8)

	s.Visit(1000)
	assert.True(t, s.Visited(1000))
	assert.False(t, s.Visited(999))

	// Queries past the backing storage must not panic.
	assert.False(t, s.Visited(1 << 20))
}

func TestDoubleVisitIsIdempotent(t *testing.T) {
	s := New(8)
	s.Visit(3)
	s.Visit(3)
	s.Reset()
	assert.False(t, s.Visited(3))
}
