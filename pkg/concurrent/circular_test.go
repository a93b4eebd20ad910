package concurrent

import (
	"sync"
	"testing"
)

func TestCircularCounterSequential(t *testing.T) {
	c := NewCircularCounter(4)

	// Each entry receives the running total before its own delta.
	deltas := []uint64{5, 3, 0, 7}
	want := []uint64{0, 5, 8, 8}
	for i, d := range deltas {
		entry := c.Next()
		if entry != uint64(i) {
			t.Fatalf("Next() = %d, want %d", entry, i)
		}
		if got := c.FetchAndUpdate(entry, d); got != want[i] {
			t.Errorf("FetchAndUpdate(%d, %d) = %d, want %d", entry, d, got, want[i])
		}
	}
}

func TestCircularCounterWrapsAround(t *testing.T) {
	c := NewCircularCounter(3)

	var total uint64
	for i := 0; i < 20; i++ {
		entry := c.Next()
		got := c.FetchAndUpdate(entry, uint64(i))
		if got != total {
			t.Fatalf("entry %d: prefix = %d, want %d", entry, got, total)
		}
		total += uint64(i)
	}
}

func TestCircularCounterConcurrentPrefixSums(t *testing.T) {
	const workers = 8
	const perWorker = 200

	c := NewCircularCounter(workers)

	type result struct {
		delta  uint64
		prefix uint64
	}
	results := make([][]result, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				delta := uint64(w*perWorker + i + 1)
				entry := c.Next()
				prefix := c.FetchAndUpdate(entry, delta)
				results[w] = append(results[w], result{delta: delta, prefix: prefix})
			}
		}(w)
	}
	wg.Wait()

	// Prefix values must form a consistent exclusive prefix sum: collecting
	// all (prefix, delta) pairs sorted by prefix, each prefix equals the sum
	// of all earlier deltas.
	all := make(map[uint64]uint64, workers*perWorker)
	for w := range results {
		for _, r := range results[w] {
			if _, dup := all[r.prefix]; dup {
				t.Fatalf("duplicate prefix value %d", r.prefix)
			}
			all[r.prefix] = r.delta
		}
	}

	var expect uint64
	for len(all) > 0 {
		delta, ok := all[expect]
		if !ok {
			t.Fatalf("no entry with prefix %d", expect)
		}
		delete(all, expect)
		expect += delta
	}
}
