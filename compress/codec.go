package compress

import (
	"fmt"

	"github.com/arloliu/ic50/format"
)

// Compressor compresses an encoded trace column.
//
// The returned slice is owned by the caller; the input is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores data produced by the matching Compressor.
//
// An error is returned if data is corrupted or was produced by another codec.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// Stats summarizes how well a set of columns compressed.
type Stats struct {
	// Algorithm identifies the codec used.
	Algorithm format.CompressionType
	// RawSize is the size of the columns as dense float64 slices.
	RawSize int64
	// PackedSize is the size after encoding and compression.
	PackedSize int64
}

// Ratio returns PackedSize / RawSize, or 0 when RawSize is zero.
func (s Stats) Ratio() float64 {
	if s.RawSize == 0 {
		return 0
	}

	return float64(s.PackedSize) / float64(s.RawSize)
}

// SpaceSavings returns the saved space as a percentage.
func (s Stats) SpaceSavings() float64 {
	if s.RawSize == 0 {
		return 0
	}

	return (1 - s.Ratio()) * 100
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in Codec for compressionType.
//
// Parameters:
//   - compressionType: One of the format.Compression* constants
//
// Returns:
//   - Codec: Shared, stateless codec instance
//   - error: If the type is not a known codec
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
