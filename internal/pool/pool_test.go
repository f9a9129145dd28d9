package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.B = append(bb.B, 1, 2, 3)

	bb.Grow(2)
	require.GreaterOrEqual(t, cap(bb.B)-len(bb.B), 2)
	assert.Equal(t, []byte{1, 2, 3}, bb.Bytes(), "growing must preserve content")
}

func TestByteBuffer_Extend(t *testing.T) {
	bb := NewByteBuffer(0)
	tail := bb.Extend(3)
	require.Len(t, tail, 3)
	tail[0], tail[1], tail[2] = 7, 8, 9

	assert.Equal(t, 3, bb.Len())
	assert.Equal(t, []byte{7, 8, 9}, bb.Bytes())

	bb.Reset()
	assert.Equal(t, 0, bb.Len())
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(8, 16)

	big := NewByteBuffer(64)
	big.B = append(big.B, 1)
	p.Put(big)

	got := p.Get()
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Len())
	assert.LessOrEqual(t, cap(got.B), 16)
}

func TestColumnBuffer(t *testing.T) {
	bb := GetColumnBuffer()
	require.NotNil(t, bb)
	bb.B = append(bb.B, 42)
	PutColumnBuffer(bb)
	PutColumnBuffer(nil)
}

func TestGetFloat64Slice(t *testing.T) {
	s, release := GetFloat64Slice(5)
	require.Len(t, s, 5)
	for i := range s {
		s[i] = float64(i + 1)
	}
	release()

	s2, release2 := GetFloat64Slice(3)
	defer release2()
	require.Len(t, s2, 3)
	assert.Equal(t, []float64{0, 0, 0}, s2, "pooled slice must be zeroed")
}
