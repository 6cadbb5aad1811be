// Package annindex provides an in-memory approximate nearest-neighbor index
// for dense float32 vectors.
//
// Vectors are stored in a columnar layout with a validity bitmap; an HNSW
// (Hierarchical Navigable Small World) graph built over the column answers
// similarity queries in logarithmic time with tunable recall.
//
// # Quick Start
//
//	ctx := context.Background()
//	idx, _ := annindex.New(128, annindex.WithMetric(distance.MetricCosine))
//
//	id, _ := idx.Insert(ctx, vector)
//	ids, _ := idx.BatchInsert(ctx, vectors)
//
//	results, _ := idx.Search(ctx, query, 10)
//	for _, r := range results {
//	    fmt.Println(r.ID, r.Distance)
//	}
//
// # Search Tuning
//
// Search accuracy is controlled per call via the ef parameter, the width of
// the candidate list explored at the base layer:
//
//	results, _ := idx.Search(ctx, query, 10, annindex.WithEF(200))
//
// Results can be restricted to an id set, or computed exactly by brute
// force:
//
//	allow := roaring.BitmapOf(1, 5, 9)
//	results, _ := idx.Search(ctx, query, 10, annindex.WithFilter(allow))
//	results, _ := idx.Search(ctx, query, 10, annindex.WithExact())
//
// # Compression
//
// The stored column can be compressed 4x with int8 scalar quantization:
//
//	q, _ := idx.Quantize(ctx)
//	codes, _ := q.Get(id)
//
// # Concurrency
//
// Inserts are serialized internally; searches are lock-free and may run
// concurrently with each other and with in-flight inserts.
//
// # Key Features
//
//   - HNSW graph with diversity-preferring neighbor selection
//   - Columnar float32 storage with validity bitmap
//   - Squared Euclidean, cosine and inner-product metrics
//   - Filtered search via roaring bitmaps
//   - int8 scalar quantization (4x compression)
//   - Deterministic builds via seeded layer selection
package annindex
