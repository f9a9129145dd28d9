package encoding

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"

	"github.com/arloliu/ic50/format"
	"github.com/arloliu/ic50/internal/pool"
)

// ColumnEncoder encodes one column of float64 values.
type ColumnEncoder interface {
	Write(val float64)
	WriteSlice(values []float64)
	Len() int
	Finish() []byte
}

var (
	_ ColumnEncoder = (*GorillaEncoder)(nil)
	_ ColumnEncoder = (*RawEncoder)(nil)
)

// NewEncoder returns a pooled encoder for et.
func NewEncoder(et format.EncodingType) (ColumnEncoder, error) {
	switch et {
	case format.TypeGorilla:
		return NewGorillaEncoder(), nil
	case format.TypeRaw:
		return NewRawEncoder(), nil
	default:
		return nil, fmt.Errorf("unsupported column encoding: %s", et)
	}
}

// Decode appends the count values of a column encoded with et to dst.
func Decode(et format.EncodingType, dst []float64, data []byte, count int) ([]float64, error) {
	switch et {
	case format.TypeGorilla:
		return GorillaDecoder{}.Decode(dst, data, count)
	case format.TypeRaw:
		return RawDecoder{}.Decode(dst, data, count)
	default:
		return dst, fmt.Errorf("unsupported column encoding: %s", et)
	}
}

// RawEncoder stores float64 values as their IEEE 754 bits, 8 bytes each, in
// little-endian order.
type RawEncoder struct {
	buf   *pool.ByteBuffer
	count int
}

// NewRawEncoder creates an encoder backed by a pooled buffer.
func NewRawEncoder() *RawEncoder {
	return &RawEncoder{buf: pool.GetColumnBuffer()}
}

// Write appends one value.
func (e *RawEncoder) Write(val float64) {
	if e.buf == nil {
		panic("raw encoder already finished")
	}

	e.count++
	binary.LittleEndian.PutUint64(e.buf.Extend(8), math.Float64bits(val))
}

// WriteSlice appends all values with a single buffer extension.
func (e *RawEncoder) WriteSlice(values []float64) {
	if e.buf == nil {
		panic("raw encoder already finished")
	}
	if len(values) == 0 {
		return
	}

	e.count += len(values)
	dst := e.buf.Extend(8 * len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(dst[8*i:], math.Float64bits(v))
	}
}

// Len returns the number of values written.
func (e *RawEncoder) Len() int {
	return e.count
}

// Finish returns a copy of the encoded bytes and releases the pooled buffer.
func (e *RawEncoder) Finish() []byte {
	if e.buf == nil {
		return nil
	}

	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	pool.PutColumnBuffer(e.buf)
	e.buf = nil

	return out
}

// RawDecoder decodes data produced by RawEncoder.
type RawDecoder struct{}

// All iterates over the values in data, stopping at the first incomplete one.
func (RawDecoder) All(data []byte) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for len(data) >= 8 {
			if !yield(math.Float64frombits(binary.LittleEndian.Uint64(data))) {
				return
			}
			data = data[8:]
		}
	}
}

// Decode appends the count values encoded in data to dst.
func (d RawDecoder) Decode(dst []float64, data []byte, count int) ([]float64, error) {
	if len(data) != 8*count {
		return dst, fmt.Errorf("raw column holds %d bytes, want %d for %d values", len(data), 8*count, count)
	}
	for v := range d.All(data) {
		dst = append(dst, v)
	}

	return dst, nil
}
