package encoding

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func encode(values []float64) []byte {
	enc := NewGorillaEncoder()
	enc.WriteSlice(values)

	return enc.Finish()
}

func TestGorilla_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	walk := make([]float64, 2000)
	cur := 42.0
	for i := range walk {
		// rejected proposals repeat the previous draw
		if rng.Float64() < 0.6 {
			cur += rng.NormFloat64() * 0.5
		}
		walk[i] = cur
	}

	tests := []struct {
		name   string
		values []float64
	}{
		{name: "single", values: []float64{3.25}},
		{name: "constant", values: []float64{1, 1, 1, 1, 1}},
		{name: "random walk", values: walk},
		{name: "special values", values: []float64{0, math.Copysign(0, -1), math.Inf(1), math.Inf(-1), math.MaxFloat64, math.SmallestNonzeroFloat64, -1}},
		{name: "sign flips", values: []float64{1.5, -1.5, 1.5, -1.5, 2e300, -2e-300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encode(tt.values)

			got, err := GorillaDecoder{}.Decode(nil, data, len(tt.values))
			require.NoError(t, err)
			require.Len(t, got, len(tt.values))
			for i := range tt.values {
				require.Equal(t, math.Float64bits(tt.values[i]), math.Float64bits(got[i]), "index %d", i)
			}
		})
	}
}

func TestGorilla_RepeatedValuesAreCompact(t *testing.T) {
	values := make([]float64, 1000)
	for i := range values {
		values[i] = 0.123456789
	}

	data := encode(values)
	// 64 bits for the first value, one bit per repeat
	require.Equal(t, (64+999+7)/8, len(data))
}

func TestGorilla_AllStopsEarly(t *testing.T) {
	data := encode([]float64{1, 2, 3, 4})

	var got []float64
	for v := range (GorillaDecoder{}).All(data, 4) {
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}
	require.Equal(t, []float64{1, 2}, got)
}

func TestGorilla_Truncated(t *testing.T) {
	data := encode([]float64{1, 2, 3, 4, 5})

	_, err := GorillaDecoder{}.Decode(nil, data[:4], 5)
	require.Error(t, err)

	got, err := GorillaDecoder{}.Decode(nil, nil, 0)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGorillaEncoder_FinishTwice(t *testing.T) {
	enc := NewGorillaEncoder()
	enc.Write(1)
	require.Equal(t, 1, enc.Len())
	require.NotEmpty(t, enc.Finish())
	require.Nil(t, enc.Finish())
	require.Panics(t, func() { enc.Write(2) })
}
