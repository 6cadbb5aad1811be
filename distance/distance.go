package distance

import "fmt"

// Metric identifies a distance metric.
type Metric int

const (
	// MetricL2 is the squared Euclidean distance.
	MetricL2 Metric = iota
	// MetricCosine is the cosine distance over unit vectors.
	MetricCosine
	// MetricDot is the negated dot product. Not a metric; see the package
	// documentation for the search implications.
	MetricDot
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricCosine:
		return "Cosine"
	case MetricDot:
		return "Dot"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	return m == MetricL2 || m == MetricCosine || m == MetricDot
}

// Func computes the distance between two equal-length vectors.
// Implementations assume len(a) == len(b); callers validate at the API
// boundary.
type Func func(a, b []float32) float32

// ErrLengthMismatch is returned by Distance when the operands differ in length.
type ErrLengthMismatch struct {
	A int
	B int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("distance: vector length mismatch: %d vs %d", e.A, e.B)
}

// Provider returns the distance function for the given metric.
//
// The cosine function requires unit vectors; combining it with unnormalized
// input silently degrades to a dot-product ranking.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return SquaredL2, nil
	case MetricCosine:
		return func(a, b []float32) float32 {
			return 1 - Dot(a, b)
		}, nil
	case MetricDot:
		return func(a, b []float32) float32 {
			return -Dot(a, b)
		}, nil
	default:
		return nil, fmt.Errorf("distance: unsupported metric: %v", m)
	}
}

// Distance is the checked entry point: it validates operand lengths before
// dispatching to the metric kernel.
func Distance(m Metric, a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, &ErrLengthMismatch{A: len(a), B: len(b)}
	}
	fn, err := Provider(m)
	if err != nil {
		return 0, err
	}
	return fn(a, b), nil
}
