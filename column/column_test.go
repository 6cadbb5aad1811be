package column

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Dimension())
	assert.Equal(t, 0, c.Rows())

	_, err = New(0)
	var eid *ErrInvalidDimension
	require.ErrorAs(t, err, &eid)
	assert.Equal(t, 0, eid.Dimension)

	_, err = New(-3)
	assert.Error(t, err)
}

func TestSetGet(t *testing.T) {
	c, err := New(3)
	require.NoError(t, err)

	require.NoError(t, c.Set(0, []float32{1, 2, 3}))
	require.NoError(t, c.Set(2, []float32{7, 8, 9}))

	v, ok := c.Get(0)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, v)

	// Row 1 was skipped and is null.
	_, ok = c.Get(1)
	assert.False(t, ok)
	assert.False(t, c.IsValid(1))

	v, ok = c.Get(2)
	require.True(t, ok)
	assert.Equal(t, []float32{7, 8, 9}, v)

	assert.Equal(t, 3, c.Rows())
	assert.Equal(t, 2, c.ValidCount())
	assert.Equal(t, 1, c.NullCount())
}

func TestSetDimensionMismatch(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	err = c.Set(0, []float32{1, 2})
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 4, dm.Expected)
	assert.Equal(t, 2, dm.Actual)

	// The failed set must not mark the row valid.
	assert.Equal(t, 0, c.Rows())
	_, ok := c.Get(0)
	assert.False(t, ok)
}

func TestSetNegativeIndex(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	err = c.Set(-1, []float32{1, 2})
	var ei *ErrInvalidIndex
	require.ErrorAs(t, err, &ei)
	assert.Equal(t, -1, ei.Index)
}

func TestGetOutOfRange(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	require.NoError(t, c.Set(0, []float32{1, 2}))

	_, ok := c.Get(-1)
	assert.False(t, ok)
	_, ok = c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(1 << 20)
	assert.False(t, ok)
}

func TestGetIsZeroCopy(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	src := []float32{1, 2}
	require.NoError(t, c.Set(0, src))

	// The column copies on Set, so mutating the caller's slice afterwards
	// must not leak into storage.
	src[0] = 99
	v, ok := c.Get(0)
	require.True(t, ok)
	assert.Equal(t, float32(1), v[0])

	// Two Gets of the same row alias the same backing memory.
	w, _ := c.Get(0)
	assert.Equal(t, &v[0], &w[0])
}

func TestGrowthPreservesRows(t *testing.T) {
	c, err := New(4, func(o *Options) { o.InitialCapacity = 2 })
	require.NoError(t, err)

	vecs := make([][]float32, 100)
	for i := range vecs {
		vecs[i] = []float32{float32(i), float32(i + 1), float32(i + 2), float32(i + 3)}
		require.NoError(t, c.Set(i, vecs[i]))
	}

	for i, want := range vecs {
		got, ok := c.Get(i)
		require.True(t, ok, "row %d", i)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 100, c.Rows())
	assert.Equal(t, 100, c.ValidCount())
}

func TestSetOverwrite(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	require.NoError(t, c.Set(0, []float32{1, 1}))
	require.NoError(t, c.Set(0, []float32{2, 2}))

	v, ok := c.Get(0)
	require.True(t, ok)
	assert.Equal(t, []float32{2, 2}, v)
	assert.Equal(t, 1, c.ValidCount())
}

func TestSetBatch(t *testing.T) {
	ctx := context.Background()

	c, err := New(2, func(o *Options) { o.InitialCapacity = 1 })
	require.NoError(t, err)

	vecs := make([][]float32, 1000)
	for i := range vecs {
		vecs[i] = []float32{float32(i), float32(-i)}
	}
	require.NoError(t, c.SetBatch(ctx, 5, vecs))

	assert.Equal(t, 1005, c.Rows())
	assert.Equal(t, 1000, c.ValidCount())

	for i := range vecs {
		got, ok := c.Get(5 + i)
		require.True(t, ok, "row %d", 5+i)
		assert.Equal(t, vecs[i], got)
	}

	// Rows below the batch start stay null.
	_, ok := c.Get(0)
	assert.False(t, ok)
}

func TestSetBatchValidatesBeforeMutation(t *testing.T) {
	ctx := context.Background()

	c, err := New(2)
	require.NoError(t, err)

	err = c.SetBatch(ctx, 0, [][]float32{{1, 2}, {1, 2, 3}})
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)

	// Nothing may have been written, including the valid leading vector.
	assert.Equal(t, 0, c.Rows())
	assert.Equal(t, 0, c.ValidCount())
}

func TestSetBatchEmpty(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	require.NoError(t, c.SetBatch(context.Background(), 0, nil))
	assert.Equal(t, 0, c.Rows())
}

func TestConcurrentReadersDuringSet(t *testing.T) {
	c, err := New(4, func(o *Options) {
		o.InitialCapacity = 8 // force growth mid-run
	})
	require.NoError(t, err)

	const rows = 512

	done := make(chan struct{})
	var wg sync.WaitGroup

	// Readers hammer Get/IsValid/ValidCount across the whole range while the
	// writer appends. Any row observed valid must read back complete.
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				for i := 0; i < rows; i++ {
					if v, ok := c.Get(i); ok {
						if v[0] != float32(i) {
							t.Errorf("row %d: torn read %v", i, v)
							return
						}
					}
					c.IsValid(i)
				}
				c.ValidCount()
			}
		}()
	}

	for i := 0; i < rows; i++ {
		require.NoError(t, c.Set(i, []float32{float32(i), 1, 2, 3}))
	}
	close(done)
	wg.Wait()

	assert.Equal(t, rows, c.ValidCount())
}
