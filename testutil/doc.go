// Package testutil provides testing utilities for annindex.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vectors, computing exact
// nearest neighbors, and verifying search recall.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(1000, 16) // uniform [0, 1)
//	unit := rng.UnitVectors(1000, 16)    // on the hypersphere
//
// # Exact Search (Ground Truth)
//
//	truth := testutil.ExactTopK(dataset, query, k, distance.SquaredL2)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(truth, approximate)
package testutil
