package hnsw

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyIndex is returned by searches against an index with no nodes.
	ErrEmptyIndex = errors.New("hnsw: empty index")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("hnsw: k must be positive")

	// ErrInvalidEF is returned when ef is smaller than k.
	ErrInvalidEF = errors.New("hnsw: ef must be >= k")

	// ErrZeroVector is returned when the cosine metric is asked to process a
	// vector with zero norm.
	ErrZeroVector = errors.New("hnsw: cannot normalize zero vector")
)

// ErrDuplicateID indicates an Insert with an id that is already present.
type ErrDuplicateID struct {
	ID uint32
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("hnsw: duplicate id: %d", e.ID)
}
