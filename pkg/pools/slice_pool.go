package pools

import (
	"sync"

	"golang.org/x/exp/constraints"
)

// SlicePool pools scratch slices of an integer element type, such as node ID
// or weight buffers.
type SlicePool[T constraints.Integer] struct {
	small  sync.Pool // <= 64 elements
	medium sync.Pool // <= 1024 elements
	large  sync.Pool // <= 16384 elements
}

// NewSlicePool creates a new slice pool.
func NewSlicePool[T constraints.Integer]() *SlicePool[T] {
	return &SlicePool[T]{
		small: sync.Pool{
			New: func() any {
				s := make([]T, 0, 64)
				return &s
			},
		},
		medium: sync.Pool{
			New: func() any {
				s := make([]T, 0, 1024)
				return &s
			},
		},
		large: sync.Pool{
			New: func() any {
				s := make([]T, 0, 16384)
				return &s
			},
		},
	}
}

// Get returns a slice with length 0 and at least the requested capacity.
func (p *SlicePool[T]) Get(size int) []T {
	var pool *sync.Pool
	switch {
	case size <= 64:
		pool = &p.small
	case size <= 1024:
		pool = &p.medium
	case size <= 16384:
		pool = &p.large
	default:
		return make([]T, 0, size)
	}

	sp, ok := pool.Get().(*[]T)
	if !ok || cap(*sp) < size {
		return make([]T, 0, size)
	}
	return (*sp)[:0]
}

// Put returns a slice to the pool.
func (p *SlicePool[T]) Put(s []T) {
	c := cap(s)
	if c > 16384 {
		return
	}

	s = s[:0]

	var pool *sync.Pool
	switch {
	case c <= 64:
		pool = &p.small
	case c <= 1024:
		pool = &p.medium
	default:
		pool = &p.large
	}

	pool.Put(&s)
}

// Default global pools for the element types the partitioner's hot paths use.
var (
	defaultIDPool     = NewSlicePool[uint32]()
	defaultWeightPool = NewSlicePool[int64]()
)

// GetIDs returns a uint32 scratch slice from the default pool.
func GetIDs(size int) []uint32 {
	return defaultIDPool.Get(size)
}

// PutIDs returns a uint32 scratch slice to the default pool.
func PutIDs(s []uint32) {
	defaultIDPool.Put(s)
}

// GetWeights returns an int64 scratch slice from the default pool.
func GetWeights(size int) []int64 {
	return defaultWeightPool.Get(size)
}

// PutWeights returns an int64 scratch slice to the default pool.
func PutWeights(s []int64) {
	defaultWeightPool.Put(s)
}
