package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// minChunk is the smallest range a worker grabs at once. Smaller ranges are
// not worth the scheduling overhead.
const minChunk = 512

// DefaultWorkers returns the parallelism used when a caller does not specify
// a worker count.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// For splits [0, n) into chunks and runs fn on each chunk using p workers.
// fn receives a half-open range [start, end) and the worker index. Workers
// pull chunks from a shared cursor, so uneven chunks still balance.
func For[T constraints.Integer](n T, p int, fn func(start, end T, worker int)) {
	if n <= 0 {
		return
	}
	if p <= 1 || int64(n) <= minChunk {
		fn(0, n, 0)
		return
	}

	chunk := int64(n) / int64(4*p)
	if chunk < minChunk {
		chunk = minChunk
	}

	var cursor atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < p; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				start := cursor.Add(chunk) - chunk
				if start >= int64(n) {
					return
				}
				end := start + chunk
				if end > int64(n) {
					end = int64(n)
				}
				fn(T(start), T(end), worker)
			}
		}(w)
	}
	wg.Wait()
}

// ForStatic splits [0, n) into exactly p contiguous ranges, one per worker.
// Used when each worker accumulates into its own slot and the assignment of
// ranges to workers must stay fixed for the whole phase.
func ForStatic[T constraints.Integer](n T, p int, fn func(start, end T, worker int)) {
	if n <= 0 {
		return
	}
	if p <= 1 {
		fn(0, n, 0)
		return
	}
	if int64(p) > int64(n) {
		p = int(n)
	}

	var wg sync.WaitGroup
	size := (int64(n) + int64(p) - 1) / int64(p)
	for w := 0; w < p; w++ {
		start := int64(w) * size
		if start >= int64(n) {
			break
		}
		end := start + size
		if end > int64(n) {
			end = int64(n)
		}
		wg.Add(1)
		go func(start, end T, worker int) {
			defer wg.Done()
			fn(start, end, worker)
		}(T(start), T(end), w)
	}
	wg.Wait()
}

// Invoke runs the given functions concurrently and waits for all of them.
func Invoke(fns ...func()) {
	var wg sync.WaitGroup
	for _, fn := range fns {
		wg.Add(1)
		go func(fn func()) {
			defer wg.Done()
			fn()
		}(fn)
	}
	wg.Wait()
}

// PrefixSum computes the exclusive prefix sum of values into out, which must
// have len(values)+1 entries. Returns the total.
func PrefixSum[T constraints.Integer](values []T, out []T) T {
	var sum T
	for i, v := range values {
		out[i] = sum
		sum += v
	}
	out[len(values)] = sum
	return sum
}

// Max returns the maximum of a slice computed with p workers.
func Max[T constraints.Ordered](values []T, p int, zero T) T {
	n := len(values)
	if n == 0 {
		return zero
	}
	locals := make([]T, p)
	for i := range locals {
		locals[i] = zero
	}
	ForStatic(n, p, func(start, end, worker int) {
		local := zero
		for i := start; i < end; i++ {
			if values[i] > local {
				local = values[i]
			}
		}
		locals[worker] = local
	})
	best := zero
	for _, v := range locals {
		if v > best {
			best = v
		}
	}
	return best
}

// Sum returns the sum of a slice computed with p workers.
func Sum[T constraints.Integer](values []T, p int) T {
	n := len(values)
	if n == 0 {
		return 0
	}
	locals := make([]T, p)
	ForStatic(n, p, func(start, end, worker int) {
		var local T
		for i := start; i < end; i++ {
			local += values[i]
		}
		locals[worker] = local
	})
	var total T
	for _, v := range locals {
		total += v
	}
	return total
}
