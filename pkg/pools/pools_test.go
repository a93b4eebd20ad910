package pools

import (
	"encoding/binary"
	"sync"
	"testing"
)

func TestBytePool_Get(t *testing.T) {
	pool := NewBytePool()

	tests := []struct {
		name   string
		size   int
		minCap int
		maxCap int
	}{
		{"tiny", 8, 8, TinySize},
		{"tiny_exact", TinySize, TinySize, TinySize},
		{"small", 32, 32, SmallSize},
		{"small_exact", SmallSize, SmallSize, SmallSize},
		{"medium", 128, 128, MediumSize},
		{"medium_exact", MediumSize, MediumSize, MediumSize},
		{"large", 512, 512, LargeSize},
		{"large_exact", LargeSize, LargeSize, LargeSize},
		{"huge", 2048, 2048, HugeSize},
		{"huge_exact", HugeSize, HugeSize, HugeSize},
		{"oversized", 10000, 10000, 10000}, // Allocated directly
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pool.Get(tt.size)
			if len(b) != 0 {
				t.Errorf("Get(%d) length = %d, want 0", tt.size, len(b))
			}
			if cap(b) < tt.minCap {
				t.Errorf("Get(%d) capacity = %d, want >= %d", tt.size, cap(b), tt.minCap)
			}
		})
	}
}

func TestBytePool_GetSized(t *testing.T) {
	pool := NewBytePool()

	b := pool.GetSized(100)
	if len(b) != 100 {
		t.Errorf("GetSized(100) length = %d, want 100", len(b))
	}
	if cap(b) < 100 {
		t.Errorf("GetSized(100) capacity = %d, want >= 100", cap(b))
	}
}

func TestBytePool_PutAndReuse(t *testing.T) {
	pool := NewBytePool()

	// Get and return multiple buffers
	for i := 0; i < 10; i++ {
		b := pool.Get(64)
		b = append(b, "test data"...)
		pool.Put(b)
	}

	// Get again and verify it's clean
	b := pool.Get(64)
	if len(b) != 0 {
		t.Errorf("After Put, Get returned slice with length %d, want 0", len(b))
	}
}

func TestBytePool_OversizedNotPooled(t *testing.T) {
	pool := NewBytePool()

	large := make([]byte, MaxPool+1000)
	pool.Put(large) // Should not panic or error
}

func TestDefaultBytePool(t *testing.T) {
	b := GetBytes(100)
	if cap(b) < 100 {
		t.Errorf("GetBytes(100) capacity = %d, want >= 100", cap(b))
	}
	PutBytes(b)

	b2 := GetBytesSized(50)
	if len(b2) != 50 {
		t.Errorf("GetBytesSized(50) length = %d, want 50", len(b2))
	}
	PutBytes(b2)
}

func TestSlicePool_Get(t *testing.T) {
	pool := NewSlicePool[uint32]()

	tests := []struct {
		name   string
		size   int
		minCap int
	}{
		{"small", 8, 8},
		{"small_max", 64, 64},
		{"medium", 128, 128},
		{"medium_max", 1024, 1024},
		{"large", 2048, 2048},
		{"large_max", 16384, 16384},
		{"oversized", 100000, 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := pool.Get(tt.size)
			if len(s) != 0 {
				t.Errorf("Get(%d) length = %d, want 0", tt.size, len(s))
			}
			if cap(s) < tt.minCap {
				t.Errorf("Get(%d) capacity = %d, want >= %d", tt.size, cap(s), tt.minCap)
			}
		})
	}
}

func TestSlicePool_PutAndReuse(t *testing.T) {
	pool := NewSlicePool[int64]()

	for i := 0; i < 10; i++ {
		s := pool.Get(64)
		s = append(s, 1, 2, 3, 4, 5)
		pool.Put(s)
	}

	s := pool.Get(64)
	if len(s) != 0 {
		t.Errorf("After Put, Get returned slice with length %d, want 0", len(s))
	}
}

func TestDefaultSlicePools(t *testing.T) {
	ids := GetIDs(32)
	if cap(ids) < 32 {
		t.Errorf("GetIDs(32) capacity = %d, want >= 32", cap(ids))
	}
	PutIDs(ids)

	weights := GetWeights(32)
	if cap(weights) < 32 {
		t.Errorf("GetWeights(32) capacity = %d, want >= 32", cap(weights))
	}
	PutWeights(weights)
}

func TestRatingMapPool_Get(t *testing.T) {
	pool := NewRatingMapPool()

	m := pool.Get()
	if m == nil {
		t.Error("Get() returned nil")
	}
	if len(m) != 0 {
		t.Errorf("Get() returned map with length %d, want 0", len(m))
	}
}

func TestRatingMapPool_PutAndReuse(t *testing.T) {
	pool := NewRatingMapPool()

	m := pool.Get()
	m[1] = 10
	m[2] = -3
	pool.Put(m)

	// Get another map - should be cleared
	m2 := pool.Get()
	if len(m2) != 0 {
		t.Errorf("After Put, Get returned map with length %d, want 0", len(m2))
	}
}

func TestRatingMapPool_LargeMapsNotPooled(t *testing.T) {
	pool := NewRatingMapPool()

	m := pool.Get()
	for i := uint32(0); i < 2000; i++ {
		m[i] = int64(i)
	}
	pool.Put(m) // Should be dropped, not pooled

	pool.Put(nil) // Should not panic
}

func TestBufferBuilder_Varints(t *testing.T) {
	b := NewBufferBuilder(64)
	defer b.Release()

	b.WriteUvarint(300)
	b.WriteVarint(-7)
	b.WriteByte(0xFF)

	buf := b.Bytes()
	u, n := binary.Uvarint(buf)
	if u != 300 {
		t.Errorf("decoded uvarint = %d, want 300", u)
	}
	buf = buf[n:]
	v, n := binary.Varint(buf)
	if v != -7 {
		t.Errorf("decoded varint = %d, want -7", v)
	}
	buf = buf[n:]
	if len(buf) != 1 || buf[0] != 0xFF {
		t.Errorf("trailing byte = %v, want [255]", buf)
	}
}

func TestBufferBuilder_ResetAndLen(t *testing.T) {
	b := NewBufferBuilder(16)
	defer b.Release()

	b.Write([]byte("abc"))
	b.WriteUint32BE(1)
	if b.Len() != 7 {
		t.Errorf("Len() = %d, want 7", b.Len())
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", b.Len())
	}
}

func TestPools_ConcurrentAccess(t *testing.T) {
	pool := NewSlicePool[uint32]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := pool.Get(64)
				s = append(s, uint32(j))
				pool.Put(s)

				m := GetRatingMap()
				m[uint32(j)] = int64(j)
				PutRatingMap(m)

				b := GetBytes(128)
				PutBytes(b)
			}
		}()
	}
	wg.Wait()
}
