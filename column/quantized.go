package column

import (
	"runtime"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"
)

// quantizeParallelThreshold is the row count above which Quantize fans the
// scan and encode out across goroutines.
const quantizeParallelThreshold = 2048

// Quantized is the lossy int8 sibling of a Column.
//
// Every component satisfies original ≈ Offset + (code+128) * Scale, where
// code is the stored int8. The reconstruction error is bounded by Scale/2
// per component. The validity bitmap is copied from the source column at
// quantization time.
type Quantized struct {
	dim    int
	rows   int
	data   []int8
	valid  *bitset.BitSet
	scale  float32
	offset float32
}

// Dimension returns the vector dimensionality.
func (q *Quantized) Dimension() int { return q.dim }

// Rows returns the number of rows captured from the source column.
func (q *Quantized) Rows() int { return q.rows }

// Scale returns the shared quantization step size.
func (q *Quantized) Scale() float32 { return q.scale }

// Offset returns the shared quantization offset (the column-wide minimum).
func (q *Quantized) Offset() float32 { return q.offset }

// Get returns the int8 codes at row i, or false if the row is null or out
// of range. The returned slice aliases internal storage.
func (q *Quantized) Get(i int) ([]int8, bool) {
	if i < 0 || i >= q.rows || !q.valid.Test(uint(i)) {
		return nil, false
	}
	off := i * q.dim
	return q.data[off : off+q.dim : off+q.dim], true
}

// Decode reconstructs the float32 vector at row i.
func (q *Quantized) Decode(i int) ([]float32, bool) {
	return q.DecodeTo(i, make([]float32, q.dim))
}

// DecodeTo reconstructs the float32 vector at row i into dst, which must
// have length Dimension.
func (q *Quantized) DecodeTo(i int, dst []float32) ([]float32, bool) {
	codes, ok := q.Get(i)
	if !ok || len(dst) != q.dim {
		return nil, false
	}
	for j, c := range codes {
		dst[j] = q.offset + float32(int(c)+128)*q.scale
	}
	return dst, true
}

// CompressionRatio returns the storage ratio versus float32 (always 4).
func (q *Quantized) CompressionRatio() float64 { return 4.0 }

// Quantize produces the int8 representation of the column. The original
// column is retained unmodified.
//
// A single (scale, offset) pair is derived from the min and max over all
// valid components. Each component is mapped to [0, 255], clamped, and only
// then biased into the signed int8 range: narrowing without the clamp would
// wrap for boundary values.
func (c *Column) Quantize() *Quantized {
	rows := c.Rows()
	data := *c.data.Load()
	valid := c.valid.Load().Clone()

	q := &Quantized{
		dim:   c.dim,
		rows:  rows,
		data:  make([]int8, rows*c.dim),
		valid: valid,
	}

	lo, hi, any := c.scanRange(rows, data, valid)
	if !any {
		q.scale, q.offset = 1, 0
		return q
	}

	scale := (hi - lo) / 255
	if scale == 0 {
		// Constant column: any positive step preserves exact reconstruction.
		scale = 1
	}
	q.scale, q.offset = scale, lo

	encode := func(row int) {
		off := row * c.dim
		src := data[off : off+c.dim]
		dst := q.data[off : off+c.dim]
		for j, x := range src {
			code := int((x-lo)/scale + 0.5)
			if code < 0 {
				code = 0
			} else if code > 255 {
				code = 255
			}
			dst[j] = int8(code - 128)
		}
	}

	if rows < quantizeParallelThreshold {
		for row := 0; row < rows; row++ {
			if valid.Test(uint(row)) {
				encode(row)
			}
		}
		return q
	}

	// Rows are disjoint, so the encode pass is embarrassingly parallel.
	var g errgroup.Group
	workers := runtime.GOMAXPROCS(0)
	chunk := (rows + workers - 1) / workers
	for from := 0; from < rows; from += chunk {
		from := from
		to := min(from+chunk, rows)
		g.Go(func() error {
			for row := from; row < to; row++ {
				if valid.Test(uint(row)) {
					encode(row)
				}
			}
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	return q
}

// scanRange returns the min and max over all valid components, and whether
// any valid component exists.
func (c *Column) scanRange(rows int, data []float32, valid *bitset.BitSet) (lo, hi float32, any bool) {
	if rows < quantizeParallelThreshold {
		return scanRangeRows(0, rows, c.dim, data, valid)
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (rows + workers - 1) / workers

	var mu sync.Mutex
	var g errgroup.Group
	for start := 0; start < rows; start += chunk {
		start := start
		end := min(start+chunk, rows)
		g.Go(func() error {
			clo, chi, cany := scanRangeRows(start, end, c.dim, data, valid)
			if !cany {
				return nil
			}
			mu.Lock()
			if !any || clo < lo {
				lo = clo
			}
			if !any || chi > hi {
				hi = chi
			}
			any = true
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return lo, hi, any
}

func scanRangeRows(start, end, dim int, data []float32, valid *bitset.BitSet) (lo, hi float32, any bool) {
	for row := start; row < end; row++ {
		if !valid.Test(uint(row)) {
			continue
		}
		off := row * dim
		for _, x := range data[off : off+dim] {
			if !any {
				lo, hi, any = x, x, true
				continue
			}
			if x < lo {
				lo = x
			}
			if x > hi {
				hi = x
			}
		}
	}
	return lo, hi, any
}
