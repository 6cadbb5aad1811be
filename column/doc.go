// Package column implements flat columnar storage for fixed-dimension
// float32 vectors.
//
// Vectors are stored contiguously in a single []float32 slice, giving O(1)
// row access and good cache locality for distance kernels. A validity bitmap
// tracks which rows hold a vector: a row is either fully present or entirely
// null, never partially written.
//
// A column can produce a lossy int8 sibling via Quantize. Quantization uses a
// single (scale, offset) pair derived from the column-wide min and max, so a
// quantized column compresses 4x at a worst-case reconstruction error of half
// a quantization step per component.
//
// Thread safety: any number of concurrent readers are safe, including while a
// single writer appends; writers require external synchronization.
package column
