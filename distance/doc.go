// Package distance provides the distance metrics used by the vector index.
//
// Three metrics are supported:
//
//   - MetricL2: squared Euclidean distance. Monotonic with true Euclidean
//     distance, so nearest-neighbor ordering is identical and the square root
//     is skipped.
//   - MetricCosine: cosine distance (1 - cosine similarity), computed as
//     1 - dot product over unit vectors. Callers are expected to normalize
//     stored vectors and queries; the index does this automatically.
//   - MetricDot: negated dot product. This is a similarity turned into a
//     score, not a metric: it can be negative and does not satisfy the
//     triangle inequality, so best-first search over it loses its early
//     termination guarantee and behaves as a heuristic.
//
// The kernels are portable Go with bounds-check-friendly, four-way unrolled
// loops that current compilers auto-vectorize on amd64 and arm64.
package distance
