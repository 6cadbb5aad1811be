package column

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidDimension indicates a non-positive configured dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("column: invalid dimension: %d", e.Dimension)
}

// ErrDimensionMismatch indicates a vector whose length disagrees with the
// column dimension.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("column: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidIndex indicates a negative row index.
type ErrInvalidIndex struct {
	Index int
}

func (e *ErrInvalidIndex) Error() string {
	return fmt.Sprintf("column: invalid row index: %d", e.Index)
}

// Options configures a Column.
type Options struct {
	// InitialCapacity is the number of rows to pre-allocate.
	InitialCapacity int
}

// DefaultOptions contains the default options for a Column.
var DefaultOptions = Options{
	InitialCapacity: 1024,
}

// Column is flat, contiguous storage for equal-dimension float32 vectors
// plus a validity bitmap.
//
// Readers access the backing storage through atomic pointers, so reads stay
// safe while a single writer appends and the column grows underneath them.
// Writers require external synchronization.
type Column struct {
	dim int

	data  atomic.Pointer[[]float32]     // len = capRows*dim, grown geometrically
	valid atomic.Pointer[bitset.BitSet] // one bit per row; immutable once published
	rows  atomic.Int64                  // published row high-water mark

	capRows int // writer-owned
}

// New creates a column for vectors of the given dimension.
func New(dim int, optFns ...func(o *Options)) (*Column, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if dim <= 0 {
		return nil, &ErrInvalidDimension{Dimension: dim}
	}
	if opts.InitialCapacity < 1 {
		opts.InitialCapacity = 1
	}

	c := &Column{
		dim:     dim,
		capRows: opts.InitialCapacity,
	}

	data := make([]float32, opts.InitialCapacity*dim)
	c.data.Store(&data)
	c.valid.Store(bitset.New(uint(opts.InitialCapacity)))

	return c, nil
}

// Dimension returns the vector dimensionality of the column.
func (c *Column) Dimension() int { return c.dim }

// Rows returns the row high-water mark: one past the largest index ever set.
func (c *Column) Rows() int { return int(c.rows.Load()) }

// ValidCount returns the number of rows holding a vector.
func (c *Column) ValidCount() int { return int(c.valid.Load().Count()) }

// NullCount returns the number of rows below the high-water mark that hold
// no vector.
func (c *Column) NullCount() int { return c.Rows() - c.ValidCount() }

// Set stores v at row i and marks the row valid, growing the column as
// needed. The vector is copied; the caller keeps ownership of v.
func (c *Column) Set(i int, v []float32) error {
	if i < 0 {
		return &ErrInvalidIndex{Index: i}
	}
	if len(v) != c.dim {
		return &ErrDimensionMismatch{Expected: c.dim, Actual: len(v)}
	}

	c.grow(i + 1)

	data := *c.data.Load()
	copy(data[i*c.dim:(i+1)*c.dim], v)

	// Publish order matters for concurrent readers: row data first, then the
	// validity bit, then the high-water mark. The published bitset is never
	// mutated; the bit is set on a clone swapped in through the pointer, so
	// readers racing with the write see either the old or the new bitmap.
	valid := c.valid.Load().Clone()
	valid.Set(uint(i))
	c.valid.Store(valid)
	if int64(i+1) > c.rows.Load() {
		c.rows.Store(int64(i + 1))
	}
	return nil
}

// SetBatch stores vecs at consecutive rows starting at start. All vectors
// are validated before any row is written, and the copies run in parallel
// since the target rows are disjoint. Rows become visible only after every
// copy has finished.
func (c *Column) SetBatch(ctx context.Context, start int, vecs [][]float32) error {
	if start < 0 {
		return &ErrInvalidIndex{Index: start}
	}
	for _, v := range vecs {
		if len(v) != c.dim {
			return &ErrDimensionMismatch{Expected: c.dim, Actual: len(v)}
		}
	}
	if len(vecs) == 0 {
		return nil
	}

	c.grow(start + len(vecs))
	data := *c.data.Load()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	const chunk = 256
	for lo := 0; lo < len(vecs); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(vecs))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				row := start + i
				copy(data[row*c.dim:(row+1)*c.dim], vecs[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	valid := c.valid.Load().Clone()
	for i := range vecs {
		valid.Set(uint(start + i))
	}
	c.valid.Store(valid)
	if end := int64(start + len(vecs)); end > c.rows.Load() {
		c.rows.Store(end)
	}
	return nil
}

// Get returns the vector at row i, or false if the row is null or out of
// range. The returned slice aliases internal storage; callers must not
// modify it.
func (c *Column) Get(i int) ([]float32, bool) {
	if i < 0 || int64(i) >= c.rows.Load() {
		return nil, false
	}
	if !c.valid.Load().Test(uint(i)) {
		return nil, false
	}
	data := *c.data.Load()
	off := i * c.dim
	return data[off : off+c.dim : off+c.dim], true
}

// IsValid reports whether row i holds a vector.
func (c *Column) IsValid(i int) bool {
	if i < 0 || int64(i) >= c.rows.Load() {
		return false
	}
	return c.valid.Load().Test(uint(i))
}

// Size returns the memory footprint of the backing storage in bytes.
func (c *Column) Size() int64 {
	return int64(len(*c.data.Load())) * 4
}

// grow ensures capacity for at least rows rows. Old backing arrays stay
// untouched so in-flight readers keep a consistent view.
func (c *Column) grow(rows int) {
	if rows <= c.capRows {
		return
	}

	newCap := c.capRows * 2
	if newCap < rows {
		newCap = rows
	}

	data := make([]float32, newCap*c.dim)
	copy(data, *c.data.Load())
	c.data.Store(&data)

	valid := bitset.New(uint(newCap))
	valid.InPlaceUnion(c.valid.Load())
	c.valid.Store(valid)

	c.capRows = newCap
}
