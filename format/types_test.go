package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    CompressionType
		wantErr bool
	}{
		{in: "", want: CompressionNone},
		{in: "none", want: CompressionNone},
		{in: "ZSTD", want: CompressionZstd},
		{in: " s2 ", want: CompressionS2},
		{in: "lz4", want: CompressionLZ4},
		{in: "brotli", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompression(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseEncoding(t *testing.T) {
	et, err := ParseEncoding("")
	require.NoError(t, err)
	require.Equal(t, TypeGorilla, et)

	et, err = ParseEncoding("RAW")
	require.NoError(t, err)
	require.Equal(t, TypeRaw, et)

	_, err = ParseEncoding("delta")
	require.Error(t, err)
}

func TestStrings(t *testing.T) {
	require.Equal(t, "Gorilla", TypeGorilla.String())
	require.Equal(t, "Raw", TypeRaw.String())
	require.Equal(t, "Unknown", EncodingType(0).String())
	require.Equal(t, "LZ4", CompressionLZ4.String())
	require.Equal(t, "Unknown", CompressionType(0).String())
}
