package pools

import (
	"sync"
)

// RatingMapPool pools map[uint32]int64 suited to small cluster-rating maps.
// Label propagation itself rates clusters with concurrent.RatingMap.
type RatingMapPool struct {
	pool sync.Pool
}

// NewRatingMapPool creates a new rating map pool.
func NewRatingMapPool() *RatingMapPool {
	return &RatingMapPool{
		pool: sync.Pool{
			New: func() any {
				return make(map[uint32]int64, 8)
			},
		},
	}
}

// Get returns a cleared map from the pool.
func (p *RatingMapPool) Get() map[uint32]int64 {
	m, ok := p.pool.Get().(map[uint32]int64)
	if !ok {
		return make(map[uint32]int64, 8)
	}
	clear(m)
	return m
}

// Put returns a map to the pool.
func (p *RatingMapPool) Put(m map[uint32]int64) {
	if m == nil || len(m) > 1000 {
		return // Don't pool nil or very large maps
	}
	p.pool.Put(m)
}

// Default global rating map pool
var defaultRatingMapPool = NewRatingMapPool()

// GetRatingMap returns a rating map from the default pool.
func GetRatingMap() map[uint32]int64 {
	return defaultRatingMapPool.Get()
}

// PutRatingMap returns a rating map to the default pool.
func PutRatingMap(m map[uint32]int64) {
	defaultRatingMapPool.Put(m)
}
