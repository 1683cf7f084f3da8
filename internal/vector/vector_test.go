package vector_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/relay/internal/vector"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, want: -1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "scaled", a: []float64{1, 1}, b: []float64{5, 5}, want: 1},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vector.Cosine(tt.a, tt.b)
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 1e-9)
		})
	}

	t.Run("should reject mismatched dimensions", func(t *testing.T) {
		_, err := vector.Cosine([]float64{1}, []float64{1, 2})
		require.ErrorIs(t, err, vector.ErrDimensionMismatch)
	})
}

func TestEncodeDecode(t *testing.T) {
	t.Run("should preserve float32 precision", func(t *testing.T) {
		in := []float64{0.5, -1.25, 3}

		blob := vector.Encode(in)
		require.Len(t, blob, 12)

		out, err := vector.Decode(blob)
		require.NoError(t, err)
		require.Equal(t, in, out)
	})

	t.Run("should encode little endian", func(t *testing.T) {
		require.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, vector.Encode([]float64{1}))
	})

	t.Run("should reject truncated blobs", func(t *testing.T) {
		_, err := vector.Decode([]byte{1, 2, 3})
		require.Error(t, err)
	})
}
