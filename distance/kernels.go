package distance

import "math"

// SquaredL2 returns the squared Euclidean distance between a and b.
// Assumes equal lengths; validated by callers.
func SquaredL2(a, b []float32) float32 {
	var s0, s1, s2, s3 float32

	n := len(a)
	b = b[:n] // hoist the bounds check out of the loop

	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}
	for ; i < n; i++ {
		d := a[i] - b[i]
		s0 += d * d
	}

	return s0 + s1 + s2 + s3
}

// Dot returns the dot product of a and b.
// Assumes equal lengths; validated by callers.
func Dot(a, b []float32) float32 {
	var s0, s1, s2, s3 float32

	n := len(a)
	b = b[:n]

	i := 0
	for ; i+4 <= n; i += 4 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}

	return s0 + s1 + s2 + s3
}

// NormalizeL2InPlace scales v to unit L2 norm.
// Returns false if v has zero norm, in which case v is left unchanged.
func NormalizeL2InPlace(v []float32) bool {
	norm2 := Dot(v, v)
	if norm2 == 0 {
		return false
	}
	inv := float32(1 / math.Sqrt(float64(norm2)))
	for i := range v {
		v[i] *= inv
	}
	return true
}

// NormalizeL2Copy returns a unit-norm copy of src.
// Returns false if src has zero norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := make([]float32, len(src))
	copy(dst, src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}
