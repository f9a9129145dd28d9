package encoding

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"
	"math/bits"

	"github.com/arloliu/ic50/internal/pool"
)

// maxLeading is the largest leading-zero count representable in the 5-bit field.
const maxLeading = 31

// GorillaEncoder encodes a sequence of float64 values.
//
// Layout per value after the first (stored as 64 raw bits):
//   - '0': value unchanged
//   - '1','0': XOR fits the previous block window, followed by its meaningful bits
//   - '1','1': new window, 5 bits leading zeros, 6 bits (block size - 1), meaningful bits
type GorillaEncoder struct {
	bitBuf        uint64
	bitCount      int
	prev          uint64
	prevTrailing  int
	prevLeading   int
	prevBlockSize int
	count         int

	buf *pool.ByteBuffer
}

// NewGorillaEncoder creates an encoder backed by a pooled buffer.
// Finish must be called to obtain the encoded bytes and release the buffer.
func NewGorillaEncoder() *GorillaEncoder {
	return &GorillaEncoder{buf: pool.GetColumnBuffer()}
}

// Write appends one value.
func (e *GorillaEncoder) Write(val float64) {
	if e.buf == nil {
		panic("gorilla encoder already finished")
	}

	v := math.Float64bits(val)
	e.count++
	if e.count == 1 {
		e.prev = v
		e.writeBits(v, 64)

		return
	}

	xor := v ^ e.prev
	e.prev = v
	if xor == 0 {
		e.writeBits(0, 1)
		return
	}

	leading := min(bits.LeadingZeros64(xor), maxLeading)
	trailing := bits.TrailingZeros64(xor)

	if e.prevBlockSize > 0 && leading >= e.prevLeading && trailing >= e.prevTrailing {
		e.writeBits(0b10, 2)
		e.writeBits(xor>>e.prevTrailing, e.prevBlockSize)

		return
	}

	blockSize := 64 - leading - trailing
	e.writeBits(0b11, 2)
	e.writeBits(uint64(leading), 5)     //nolint:gosec // leading is in [0,31]
	e.writeBits(uint64(blockSize-1), 6) //nolint:gosec // blockSize is in [1,64]
	e.writeBits(xor>>trailing, blockSize)

	e.prevLeading = leading
	e.prevTrailing = trailing
	e.prevBlockSize = blockSize
}

// WriteSlice appends all values in order.
func (e *GorillaEncoder) WriteSlice(values []float64) {
	for _, v := range values {
		e.Write(v)
	}
}

// Len returns the number of values written.
func (e *GorillaEncoder) Len() int {
	return e.count
}

// Finish flushes pending bits, returns a copy of the encoded bytes and releases
// the pooled buffer. The encoder is unusable afterwards.
func (e *GorillaEncoder) Finish() []byte {
	if e.buf == nil {
		return nil
	}

	e.flush()
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())

	pool.PutColumnBuffer(e.buf)
	e.buf = nil

	return out
}

func (e *GorillaEncoder) writeBits(value uint64, numBits int) {
	if numBits < 64 {
		value &= (1 << numBits) - 1
	}

	available := 64 - e.bitCount
	if numBits <= available {
		if numBits == 64 {
			e.bitBuf = value
		} else {
			e.bitBuf = (e.bitBuf << numBits) | value
		}
		e.bitCount += numBits
		if e.bitCount == 64 {
			e.flush()
		}

		return
	}

	high := numBits - available
	e.bitBuf = (e.bitBuf << available) | (value >> high)
	e.bitCount = 64
	e.flush()

	e.bitBuf = value & ((1 << high) - 1)
	e.bitCount = high
}

// flush writes the pending bits, left-aligned, in big-endian byte order.
func (e *GorillaEncoder) flush() {
	if e.bitCount == 0 {
		return
	}

	numBytes := (e.bitCount + 7) / 8
	aligned := e.bitBuf << (64 - e.bitCount)
	dst := e.buf.Extend(numBytes)
	if numBytes == 8 {
		binary.BigEndian.PutUint64(dst, aligned)
	} else {
		for i := range numBytes {
			dst[i] = byte(aligned >> (56 - 8*i))
		}
	}

	e.bitBuf = 0
	e.bitCount = 0
}

// GorillaDecoder decodes data produced by GorillaEncoder. It is stateless.
type GorillaDecoder struct{}

// All returns an iterator over the count values encoded in data.
//
// If data is truncated or malformed the iterator stops early; use Decode to
// detect that condition.
func (GorillaDecoder) All(data []byte, count int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		if len(data) == 0 || count <= 0 {
			return
		}

		br := bitReader{data: data}
		v, ok := br.readBits(64)
		if !ok || !yield(math.Float64frombits(v)) {
			return
		}

		trailing, blockSize := 0, 0
		for i := 1; i < count; i++ {
			ctrl, ok := br.readBits(1)
			if !ok {
				return
			}
			if ctrl == 1 {
				reuse, ok := br.readBits(1)
				if !ok {
					return
				}
				if reuse == 1 {
					leading, ok1 := br.readBits(5)
					size, ok2 := br.readBits(6)
					if !ok1 || !ok2 {
						return
					}
					blockSize = int(size) + 1
					trailing = 64 - int(leading) - blockSize
					if trailing < 0 {
						return
					}
				} else if blockSize == 0 {
					return
				}

				meaningful, ok := br.readBits(blockSize)
				if !ok {
					return
				}
				v ^= meaningful << uint(trailing) //nolint:gosec // trailing is in [0,63]
			}

			if !yield(math.Float64frombits(v)) {
				return
			}
		}
	}
}

// Decode appends the count values encoded in data to dst.
//
// Returns:
//   - []float64: dst with the decoded values appended
//   - error: if data holds fewer than count values
func (d GorillaDecoder) Decode(dst []float64, data []byte, count int) ([]float64, error) {
	start := len(dst)
	for v := range d.All(data, count) {
		dst = append(dst, v)
	}
	if got := len(dst) - start; got != count {
		return dst, fmt.Errorf("gorilla column truncated: decoded %d of %d values", got, count)
	}

	return dst, nil
}

// bitReader reads big-endian bit fields from a byte slice.
type bitReader struct {
	data     []byte
	bytePos  int
	bitBuf   uint64
	bitCount int
}

func (br *bitReader) fill() bool {
	if br.bytePos >= len(br.data) {
		return false
	}

	n := min(8, len(br.data)-br.bytePos)
	if n == 8 {
		br.bitBuf = binary.BigEndian.Uint64(br.data[br.bytePos:])
	} else {
		br.bitBuf = 0
		for i := range n {
			br.bitBuf |= uint64(br.data[br.bytePos+i]) << (56 - 8*i)
		}
	}
	br.bytePos += n
	br.bitCount = 8 * n

	return true
}

// readBits reads numBits (1-64) bits, right-aligned in the result.
func (br *bitReader) readBits(numBits int) (uint64, bool) {
	var result uint64
	for numBits > 0 {
		if br.bitCount == 0 && !br.fill() {
			return 0, false
		}

		n := min(numBits, br.bitCount)
		chunk := br.bitBuf >> (64 - n)
		if n == 64 {
			result = chunk
			br.bitBuf = 0
		} else {
			result = (result << n) | chunk
			br.bitBuf <<= n
		}
		br.bitCount -= n
		numBits -= n
	}

	return result, true
}
