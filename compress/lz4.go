package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4MaxBlock bounds the decompression buffer; a column above this size is
// considered corrupt.
const lz4MaxBlock = 128 * 1024 * 1024

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses columns with the LZ4 block format.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data with a pooled lz4.Compressor.
//
// Incompressible input yields a zero-length block from lz4, so the raw bytes
// are returned behind a marker instead.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, 1+lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[1:])
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		dst[0] = lz4Stored
		n = copy(dst[1:], data)

		return dst[:1+n], nil
	}
	dst[0] = lz4Block

	return dst[:1+n], nil
}

const (
	lz4Block  byte = 0
	lz4Stored byte = 1
)

// Decompress decompresses an LZ4 block, growing the output buffer until the
// block fits since the original size is not stored.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	switch data[0] {
	case lz4Stored:
		out := make([]byte, len(data)-1)
		copy(out, data[1:])

		return out, nil
	case lz4Block:
	default:
		return nil, fmt.Errorf("lz4 decompression failed: unknown block marker %#x", data[0])
	}

	payload := data[1:]
	for size := max(len(payload)*4, 64); size <= lz4MaxBlock; size *= 2 {
		buf := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
	}

	return nil, fmt.Errorf("lz4 decompression failed: %w", lz4.ErrInvalidSourceShortBuffer)
}
