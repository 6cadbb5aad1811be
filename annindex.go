package annindex

import (
	"context"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/annindex/column"
	"github.com/hupe1980/annindex/distance"
	"github.com/hupe1980/annindex/hnsw"
)

// SearchResult is a single nearest-neighbor hit.
type SearchResult struct {
	// ID is the identifier assigned by Insert.
	ID uint32

	// Distance is the distance to the query under the configured metric.
	Distance float32
}

// Index is an in-memory approximate nearest-neighbor index. Vectors live in
// a columnar store; an HNSW graph over them answers similarity queries.
//
// Writes are serialized internally, so a single Index may be shared freely:
// any number of Search calls can run concurrently with each other and with
// in-flight inserts.
type Index struct {
	col   *column.Column
	graph *hnsw.Index

	logger  *Logger
	metrics MetricsCollector

	// mu serializes id assignment with the insert it belongs to.
	mu     sync.Mutex
	nextID uint32
}

// New creates an empty index for vectors of the given dimensionality.
func New(dim int, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	col, err := column.New(dim, func(co *column.Options) {
		co.InitialCapacity = o.initialCapacity
	})
	if err != nil {
		return nil, translateError(err)
	}

	graph, err := hnsw.New(col, func(ho *hnsw.Options) {
		ho.M = o.m
		ho.EFConstruction = o.efConstruction
		ho.Metric = o.metric
		ho.RandomSeed = o.randomSeed
	})
	if err != nil {
		return nil, translateError(err)
	}

	o.logger.InfoContext(context.Background(), "index created",
		"dimension", dim,
		"metric", o.metric.String(),
		"m", o.m,
		"ef_construction", o.efConstruction,
	)

	return &Index{
		col:     col,
		graph:   graph,
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// Dimension returns the vector dimensionality of the index.
func (i *Index) Dimension() int { return i.col.Dimension() }

// Metric returns the configured distance metric.
func (i *Index) Metric() distance.Metric { return i.graph.Metric() }

// Count returns the number of indexed vectors.
func (i *Index) Count() int { return i.graph.Count() }

// SizeBytes returns the memory footprint of the vector storage.
func (i *Index) SizeBytes() int64 { return i.col.Size() }

// Insert adds vector to the index and returns its assigned id. Ids are
// dense and start at 0. The vector is copied; the caller keeps ownership.
func (i *Index) Insert(ctx context.Context, vector []float32) (uint32, error) {
	start := time.Now()

	i.mu.Lock()
	id := i.nextID
	err := i.graph.Insert(id, vector)
	if err == nil {
		i.nextID++
	}
	i.mu.Unlock()

	err = translateError(err)
	i.metrics.RecordInsert(time.Since(start), err)
	i.logger.LogInsert(ctx, id, len(vector), err)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// BatchInsert adds vectors in order and returns their assigned ids. All
// vectors are validated before any is inserted, so a bad batch leaves the
// index untouched. The context is checked between vectors; on cancellation
// the vectors inserted so far remain indexed and their ids are returned
// alongside the error.
func (i *Index) BatchInsert(ctx context.Context, vectors [][]float32) ([]uint32, error) {
	start := time.Now()

	for _, v := range vectors {
		if len(v) != i.col.Dimension() {
			err := translateError(&column.ErrDimensionMismatch{
				Expected: i.col.Dimension(),
				Actual:   len(v),
			})
			i.metrics.RecordBatchInsert(len(vectors), len(vectors), time.Since(start))
			i.logger.LogBatchInsert(ctx, len(vectors), len(vectors))
			return nil, err
		}
	}

	ids := make([]uint32, 0, len(vectors))

	i.mu.Lock()
	for _, v := range vectors {
		if err := ctx.Err(); err != nil {
			i.mu.Unlock()
			i.metrics.RecordBatchInsert(len(vectors), len(vectors)-len(ids), time.Since(start))
			i.logger.LogBatchInsert(ctx, len(vectors), len(vectors)-len(ids))
			return ids, err
		}

		id := i.nextID
		if err := i.graph.Insert(id, v); err != nil {
			i.mu.Unlock()
			err = translateError(err)
			i.metrics.RecordBatchInsert(len(vectors), len(vectors)-len(ids), time.Since(start))
			i.logger.LogBatchInsert(ctx, len(vectors), len(vectors)-len(ids))
			return ids, err
		}
		i.nextID++
		ids = append(ids, id)
	}
	i.mu.Unlock()

	i.metrics.RecordBatchInsert(len(vectors), 0, time.Since(start))
	i.logger.LogBatchInsert(ctx, len(vectors), 0)
	return ids, nil
}

// Get returns the stored vector for id, or false if the id has not been
// assigned. For the cosine metric the returned vector is the normalized
// form actually indexed. The slice aliases internal storage and must not be
// modified.
func (i *Index) Get(id uint32) ([]float32, bool) {
	return i.col.Get(int(id))
}

// Search returns the k nearest neighbors of query, ordered by ascending
// distance with ties broken by ascending id.
func (i *Index) Search(ctx context.Context, query []float32, k int, optFns ...func(o *SearchOptions)) ([]SearchResult, error) {
	opts := SearchOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	// Only an unset EF gets the default; an explicit ef < k is an error and
	// surfaces from the graph as ErrInvalidEF.
	if opts.EF == 0 {
		opts.EF = max(DefaultEF, k)
	}

	start := time.Now()

	var (
		results []hnsw.Result
		err     error
	)
	switch {
	case opts.Exact:
		results, err = i.graph.BruteSearch(query, k)
	case opts.Filter != nil:
		results, err = i.graph.SearchWithFilter(query, k, opts.EF, opts.Filter)
	default:
		results, err = i.graph.Search(query, k, opts.EF)
	}

	err = translateError(err)
	i.metrics.RecordSearch(k, time.Since(start), err)
	i.logger.LogSearch(ctx, k, len(results), err)
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, len(results))
	for j, r := range results {
		out[j] = SearchResult{ID: r.ID, Distance: r.Distance}
	}
	return out, nil
}

// Quantize compresses the stored vectors to int8 codes using column-wide
// scalar quantization and returns the compressed view. The quantized copy
// is an independent snapshot; later inserts do not update it.
func (i *Index) Quantize(ctx context.Context) (*column.Quantized, error) {
	start := time.Now()

	i.mu.Lock()
	q := i.col.Quantize()
	i.mu.Unlock()

	i.metrics.RecordQuantize(q.Rows(), time.Since(start))
	i.logger.InfoContext(ctx, "column quantized",
		"rows", q.Rows(),
		"scale", q.Scale(),
		"offset", q.Offset(),
	)
	return q, nil
}

// Stats returns a snapshot of the graph shape.
func (i *Index) Stats() hnsw.Stats {
	return i.graph.Stats()
}

// SearchOptions tune a single Search call.
type SearchOptions struct {
	// EF bounds the candidate list during search. Zero selects
	// max(DefaultEF, k); an explicit value must be at least k. Larger
	// values trade latency for recall.
	EF int

	// Filter restricts results to the given id set. The graph is still
	// traversed through filtered-out nodes, so sparse filters stay
	// reachable.
	Filter *roaring.Bitmap

	// Exact switches to a full scan, bypassing the graph. Useful for small
	// indexes and for verifying recall.
	Exact bool
}

// DefaultEF is the candidate-list width used when SearchOptions.EF is zero.
const DefaultEF = 100

// WithEF sets the candidate-list width for one search.
func WithEF(ef int) func(o *SearchOptions) {
	return func(o *SearchOptions) {
		o.EF = ef
	}
}

// WithFilter restricts one search to ids contained in the bitmap.
func WithFilter(allow *roaring.Bitmap) func(o *SearchOptions) {
	return func(o *SearchOptions) {
		o.Filter = allow
	}
}

// WithExact switches one search to a brute-force scan.
func WithExact() func(o *SearchOptions) {
	return func(o *SearchOptions) {
		o.Exact = true
	}
}
