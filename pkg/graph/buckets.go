package graph

import "github.com/dd0wney/cluso-partition/pkg/parallel"

// computeDegreeBuckets builds the degree-bucket prefix sums shared by both
// graph representations. For unsorted graphs every node lands in one bucket.
// Returns exclusive prefix counts: buckets[b] = number of nodes in buckets
// smaller than b.
func computeDegreeBuckets(n NodeID, sorted bool, degree func(NodeID) NodeID) (buckets [NumDegreeBuckets + 1]NodeID, numBuckets int, maxDegree NodeID) {
	p := defaultWorkers()

	if sorted {
		locals := make([][NumDegreeBuckets + 1]NodeID, p)
		maxima := make([]NodeID, p)
		parallel.ForStatic(n, p, func(start, end NodeID, worker int) {
			for u := start; u < end; u++ {
				deg := degree(u)
				locals[worker][DegreeBucket(deg)+1]++
				if deg > maxima[worker] {
					maxima[worker] = deg
				}
			}
		})
		for w := 0; w < p; w++ {
			for b := 0; b <= NumDegreeBuckets; b++ {
				buckets[b] += locals[w][b]
			}
			if maxima[w] > maxDegree {
				maxDegree = maxima[w]
			}
		}

		for b := NumDegreeBuckets; b >= 1; b-- {
			if buckets[b] > 0 {
				numBuckets = b
				break
			}
		}
	} else {
		buckets[1] = n
		numBuckets = 1
		for u := NodeID(0); u < n; u++ {
			if deg := degree(u); deg > maxDegree {
				maxDegree = deg
			}
		}
	}

	for b := 1; b <= NumDegreeBuckets; b++ {
		buckets[b] += buckets[b-1]
	}
	return buckets, numBuckets, maxDegree
}
