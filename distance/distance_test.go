package distance

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naive reference implementations the unrolled kernels are checked against.

func naiveSquaredL2(a, b []float32) float64 {
	var s float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		s += d * d
	}
	return s
}

func naiveDot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestKernelsMatchNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// Odd lengths exercise the scalar tail of the unrolled loops.
	for _, n := range []int{1, 3, 4, 7, 8, 16, 33, 128, 1000} {
		a := make([]float32, n)
		b := make([]float32, n)
		for i := 0; i < n; i++ {
			a[i] = rng.Float32()*2 - 1
			b[i] = rng.Float32()*2 - 1
		}

		tol := 1e-4 * float64(n)
		assert.InDelta(t, naiveSquaredL2(a, b), float64(SquaredL2(a, b)), tol, "SquaredL2 n=%d", n)
		assert.InDelta(t, naiveDot(a, b), float64(Dot(a, b)), tol, "Dot n=%d", n)
	}
}

func TestSquaredL2Identity(t *testing.T) {
	v := []float32{1.5, -2.5, 3.25, 0}
	assert.Equal(t, float32(0), SquaredL2(v, v))
}

func TestProvider(t *testing.T) {
	tests := []struct {
		metric Metric
		a, b   []float32
		want   float32
	}{
		{MetricL2, []float32{0, 0}, []float32{3, 4}, 25},
		{MetricDot, []float32{1, 2}, []float32{3, 4}, -11},
		{MetricCosine, []float32{1, 0}, []float32{1, 0}, 0},
		{MetricCosine, []float32{1, 0}, []float32{0, 1}, 1},
	}

	for _, tt := range tests {
		fn, err := Provider(tt.metric)
		require.NoError(t, err, tt.metric)
		assert.InDelta(t, tt.want, fn(tt.a, tt.b), 1e-6, "%v", tt.metric)
	}

	_, err := Provider(Metric(99))
	assert.Error(t, err)
}

func TestDistanceChecked(t *testing.T) {
	_, err := Distance(MetricL2, []float32{1, 2}, []float32{1, 2, 3})
	var lm *ErrLengthMismatch
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 2, lm.A)
	assert.Equal(t, 3, lm.B)

	d, err := Distance(MetricL2, []float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.Equal(t, float32(25), d)
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	ok := NormalizeL2InPlace(v)
	require.True(t, ok)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.InDelta(t, 1.0, math.Sqrt(float64(Dot(v, v))), 1e-6)

	zero := []float32{0, 0, 0}
	assert.False(t, NormalizeL2InPlace(zero))

	cp, ok := NormalizeL2Copy([]float32{0, 5})
	require.True(t, ok)
	assert.Equal(t, []float32{0, 1}, cp)
	_, ok = NormalizeL2Copy([]float32{0, 0})
	assert.False(t, ok)
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "L2", MetricL2.String())
	assert.Equal(t, "Cosine", MetricCosine.String())
	assert.Equal(t, "Dot", MetricDot.String())
	assert.Equal(t, "Unknown(99)", Metric(99).String())

	assert.True(t, MetricL2.Valid())
	assert.False(t, Metric(99).Valid())
}
