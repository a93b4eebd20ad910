package concurrent

// RatingMap aggregates edge weights per block (or cluster) while iterating a
// node's neighborhood. Each worker owns one. It starts with a small
// hash-based representation and switches to a dense array once the caller
// announces the key upper bound via SetMaxEntries.
//
// The dense representation pays O(touched) on Clear, never O(universe).
type RatingMap struct {
	small map[uint32]int64

	dense   []int64
	touched []uint32

	useDense bool
}

// denseThreshold is the key universe size above which the hash
// representation stays cheaper than allocating the dense array.
const denseThreshold = 1 << 22

// NewRatingMap creates an empty rating map.
func NewRatingMap() *RatingMap {
	return &RatingMap{small: make(map[uint32]int64)}
}

// SetMaxEntries announces the key universe [0, maxEntries). Switches to the
// dense representation when the universe is small enough to allocate.
func (m *RatingMap) SetMaxEntries(maxEntries int) {
	if maxEntries <= denseThreshold {
		if len(m.dense) < maxEntries {
			m.dense = make([]int64, maxEntries)
			m.touched = make([]uint32, 0, 64)
		}
		m.useDense = true
	} else {
		m.useDense = false
	}
}

// Add accumulates delta into the rating of key.
func (m *RatingMap) Add(key uint32, delta int64) {
	if m.useDense {
		if m.dense[key] == 0 && delta != 0 {
			m.touched = append(m.touched, key)
		}
		m.dense[key] += delta
		return
	}
	m.small[key] += delta
}

// Get returns the rating of key.
func (m *RatingMap) Get(key uint32) int64 {
	if m.useDense {
		return m.dense[key]
	}
	return m.small[key]
}

// Entries calls fn for every touched key. Iteration order is unspecified.
func (m *RatingMap) Entries(fn func(key uint32, rating int64)) {
	if m.useDense {
		for _, key := range m.touched {
			if rating := m.dense[key]; rating != 0 {
				fn(key, rating)
			}
		}
		return
	}
	for key, rating := range m.small {
		if rating != 0 {
			fn(key, rating)
		}
	}
}

// Len returns the number of touched keys.
func (m *RatingMap) Len() int {
	if m.useDense {
		return len(m.touched)
	}
	return len(m.small)
}

// Clear discards all ratings.
func (m *RatingMap) Clear() {
	if m.useDense {
		for _, key := range m.touched {
			m.dense[key] = 0
		}
		m.touched = m.touched[:0]
		return
	}
	clear(m.small)
}
