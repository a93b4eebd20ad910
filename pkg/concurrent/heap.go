package concurrent

// AddressableMaxHeap is a binary max-heap over uint32 ids with addressable
// entries: priorities can be changed in place and membership queried in
// O(1). Used by the balancer for its BFS frontier and for tracking the best
// target block of a growing move set.
type AddressableMaxHeap struct {
	ids  []uint32
	keys []int64
	pos  []int // pos[id] = index into ids, -1 if absent
}

// NewAddressableMaxHeap creates a heap for ids in [0, capacity).
func NewAddressableMaxHeap(capacity int) *AddressableMaxHeap {
	pos := make([]int, capacity)
	for i := range pos {
		pos[i] = -1
	}
	return &AddressableMaxHeap{pos: pos}
}

// Empty reports whether the heap has no entries.
func (h *AddressableMaxHeap) Empty() bool {
	return len(h.ids) == 0
}

// Len returns the number of entries.
func (h *AddressableMaxHeap) Len() int {
	return len(h.ids)
}

// Contains reports whether id is in the heap.
func (h *AddressableMaxHeap) Contains(id uint32) bool {
	return h.pos[id] >= 0
}

// Key returns the priority of id, which must be contained.
func (h *AddressableMaxHeap) Key(id uint32) int64 {
	return h.keys[h.pos[id]]
}

// Push inserts id with the given priority.
func (h *AddressableMaxHeap) Push(id uint32, key int64) {
	h.ids = append(h.ids, id)
	h.keys = append(h.keys, key)
	h.pos[id] = len(h.ids) - 1
	h.siftUp(len(h.ids) - 1)
}

// PeekID returns the id with maximum priority.
func (h *AddressableMaxHeap) PeekID() uint32 {
	return h.ids[0]
}

// PeekKey returns the maximum priority.
func (h *AddressableMaxHeap) PeekKey() int64 {
	return h.keys[0]
}

// Pop removes and returns the id with maximum priority.
func (h *AddressableMaxHeap) Pop() uint32 {
	top := h.ids[0]
	last := len(h.ids) - 1
	h.swap(0, last)
	h.pos[top] = -1
	h.ids = h.ids[:last]
	h.keys = h.keys[:last]
	if last > 0 {
		h.siftDown(0)
	}
	return top
}

// ChangeKey sets the priority of id, which must be contained.
func (h *AddressableMaxHeap) ChangeKey(id uint32, key int64) {
	i := h.pos[id]
	old := h.keys[i]
	h.keys[i] = key
	if key > old {
		h.siftUp(i)
	} else if key < old {
		h.siftDown(i)
	}
}

// AddKey adds delta to the priority of id, inserting it at delta if absent.
func (h *AddressableMaxHeap) AddKey(id uint32, delta int64) {
	if h.Contains(id) {
		h.ChangeKey(id, h.Key(id)+delta)
	} else {
		h.Push(id, delta)
	}
}

// Clear removes all entries.
func (h *AddressableMaxHeap) Clear() {
	for _, id := range h.ids {
		h.pos[id] = -1
	}
	h.ids = h.ids[:0]
	h.keys = h.keys[:0]
}

func (h *AddressableMaxHeap) swap(i, j int) {
	h.ids[i], h.ids[j] = h.ids[j], h.ids[i]
	h.keys[i], h.keys[j] = h.keys[j], h.keys[i]
	h.pos[h.ids[i]] = i
	h.pos[h.ids[j]] = j
}

func (h *AddressableMaxHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.keys[parent] >= h.keys[i] {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *AddressableMaxHeap) siftDown(i int) {
	n := len(h.ids)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		best := left
		if right := left + 1; right < n && h.keys[right] > h.keys[left] {
			best = right
		}
		if h.keys[i] >= h.keys[best] {
			return
		}
		h.swap(i, best)
		i = best
	}
}
