package annindex_test

import (
	"context"
	"fmt"
	"log"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/annindex"
	"github.com/hupe1980/annindex/distance"
)

// Example demonstrates the basic insert/search lifecycle.
func Example() {
	ctx := context.Background()

	idx, err := annindex.New(2, annindex.WithRandomSeed(42))
	if err != nil {
		log.Fatal(err)
	}

	vectors := [][]float32{
		{0, 0},
		{1, 0},
		{0, 2},
		{5, 5},
	}
	if _, err := idx.BatchInsert(ctx, vectors); err != nil {
		log.Fatal(err)
	}

	results, err := idx.Search(ctx, []float32{0.1, 0}, 2)
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range results {
		fmt.Println(r.ID)
	}
	// Output:
	// 0
	// 1
}

// Example_cosine demonstrates cosine similarity search. Vectors are
// normalized on insert, so only direction matters.
func Example_cosine() {
	ctx := context.Background()

	idx, err := annindex.New(2,
		annindex.WithMetric(distance.MetricCosine),
		annindex.WithRandomSeed(42),
	)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := idx.BatchInsert(ctx, [][]float32{{100, 0}, {0, 1}}); err != nil {
		log.Fatal(err)
	}

	results, err := idx.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(results[0].ID, results[0].Distance)
	// Output: 0 0
}

// Example_filteredSearch restricts results to an allow-list of ids.
func Example_filteredSearch() {
	ctx := context.Background()

	idx, err := annindex.New(2, annindex.WithRandomSeed(42))
	if err != nil {
		log.Fatal(err)
	}

	if _, err := idx.BatchInsert(ctx, [][]float32{{0, 0}, {1, 0}, {2, 0}}); err != nil {
		log.Fatal(err)
	}

	allow := roaring.BitmapOf(2)
	results, err := idx.Search(ctx, []float32{0, 0}, 1, annindex.WithFilter(allow))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(results[0].ID)
	// Output: 2
}

// Example_quantize compresses the stored vectors to int8 codes.
func Example_quantize() {
	ctx := context.Background()

	idx, err := annindex.New(4, annindex.WithRandomSeed(42))
	if err != nil {
		log.Fatal(err)
	}

	if _, err := idx.Insert(ctx, []float32{0.1, 0.2, 0.3, 0.4}); err != nil {
		log.Fatal(err)
	}

	q, err := idx.Quantize(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(q.Rows(), q.CompressionRatio())
	// Output: 1 4
}
