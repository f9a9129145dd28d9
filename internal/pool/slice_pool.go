package pool

import "sync"

var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice retrieves a zeroed float64 slice of the given length from the pool.
//
// The caller must call the returned cleanup function to give the slice back.
//
// Parameters:
//   - size: The desired length of the slice
//
// Returns:
//   - []float64: A zeroed slice with length equal to size
//   - func(): Cleanup function returning the slice to the pool
//
// Example:
//
//	proposal, release := pool.GetFloat64Slice(model.Dim())
//	defer release()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
		clear(slice)
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}
