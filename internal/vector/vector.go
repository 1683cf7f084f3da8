// Package vector holds the embedding math shared by the cache stores.
package vector

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const float32Size = 4

// ErrDimensionMismatch is returned when two vectors differ in length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Cosine returns the cosine similarity of a and b. Zero vectors have
// similarity 0 with everything.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Encode packs v as little-endian float32 values, the layout RediSearch
// expects for FLOAT32 vector fields.
func Encode(v []float64) []byte {
	buf := make([]byte, len(v)*float32Size)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*float32Size:], math.Float32bits(float32(f)))
	}
	return buf
}

// Decode unpacks a blob written by Encode.
func Decode(blob []byte) ([]float64, error) {
	if len(blob)%float32Size != 0 {
		return nil, fmt.Errorf("invalid vector blob length %d", len(blob))
	}

	v := make([]float64, len(blob)/float32Size)
	for i := range v {
		v[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(blob[i*float32Size:])))
	}
	return v, nil
}
