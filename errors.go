package annindex

import (
	"errors"
	"fmt"

	"github.com/hupe1980/annindex/column"
	"github.com/hupe1980/annindex/hnsw"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidEF is returned when the search width is smaller than k.
	ErrInvalidEF = errors.New("ef must be >= k")

	// ErrEmptyIndex is returned by searches against an empty index.
	ErrEmptyIndex = errors.New("empty index")

	// ErrZeroVector is returned when the cosine metric is given a vector
	// with zero norm.
	ErrZeroVector = errors.New("cannot normalize zero vector")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidDimension indicates an invalid configured dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimension struct {
	Dimension int
	cause     error
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

func (e *ErrInvalidDimension) Unwrap() error { return e.cause }

// translateError normalizes errors from the storage and graph layers into
// the package-level error surface.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *column.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var id *column.ErrInvalidDimension
	if errors.As(err, &id) {
		return &ErrInvalidDimension{Dimension: id.Dimension, cause: err}
	}

	if errors.Is(err, hnsw.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}
	if errors.Is(err, hnsw.ErrInvalidEF) {
		return fmt.Errorf("%w: %w", ErrInvalidEF, err)
	}
	if errors.Is(err, hnsw.ErrEmptyIndex) {
		return fmt.Errorf("%w: %w", ErrEmptyIndex, err)
	}
	if errors.Is(err, hnsw.ErrZeroVector) {
		return fmt.Errorf("%w: %w", ErrZeroVector, err)
	}

	return err
}
