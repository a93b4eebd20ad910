// Package clustering implements parallel label-propagation clustering under a
// cluster-weight constraint. The coarsener contracts its output to build the
// next level of the multilevel hierarchy.
package clustering

import (
	"math/rand"
	"sync/atomic"

	"github.com/dd0wney/cluso-partition/pkg/concurrent"
	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/parallel"
)

// Config controls a label-propagation run.
type Config struct {
	// MaxClusterWeight is the hard cap on the node weight of any cluster.
	MaxClusterWeight graph.NodeWeight

	// NumIterations bounds the number of passes over the node set.
	NumIterations int

	// LargeDegreeThreshold marks nodes whose neighborhood is sampled instead
	// of scanned. Zero disables sampling.
	LargeDegreeThreshold graph.NodeID

	// MaxNumNeighbors caps the sampled neighborhood size of large nodes.
	MaxNumNeighbors graph.NodeID

	// Seed drives the per-worker tie-break randomness.
	Seed int64

	// Workers is the parallelism degree; zero means all CPUs.
	Workers int

	// Order optionally fixes the node visit order, for example a derived
	// degree-bucket order. Nil means natural order.
	Order []graph.NodeID
}

// Clusterer runs label propagation on one graph. It keeps its scratch arrays
// across the iterations of one Cluster call; each call allocates them anew.
type Clusterer struct {
	cfg Config

	clusters       []graph.ClusterID
	clusterWeights []atomic.Int64
}

// NewClusterer creates a clusterer with the given configuration.
func NewClusterer(cfg Config) *Clusterer {
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = 5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = parallel.DefaultWorkers()
	}
	return &Clusterer{cfg: cfg}
}

// Cluster computes a clustering of g. The result maps every node to a cluster
// ID from the node ID space; IDs are not compacted. Terminal clusters respect
// the configured weight cap.
func (c *Clusterer) Cluster(g graph.Graph) []graph.ClusterID {
	n := g.N()
	c.clusters = make([]graph.ClusterID, n)
	c.clusterWeights = make([]atomic.Int64, n)
	for u := graph.NodeID(0); u < n; u++ {
		c.clusters[u] = graph.ClusterID(u)
		c.clusterWeights[u].Store(int64(g.NodeWeight(u)))
	}

	workers := c.cfg.Workers
	ratings := make([]*concurrent.RatingMap, workers)
	rngs := make([]*rand.Rand, workers)
	for w := 0; w < workers; w++ {
		ratings[w] = concurrent.NewRatingMap()
		ratings[w].SetMaxEntries(int(n))
		rngs[w] = rand.New(rand.NewSource(c.cfg.Seed + int64(w)))
	}

	for iter := 0; iter < c.cfg.NumIterations; iter++ {
		var moved atomic.Int64

		parallel.For(n, workers, func(start, end graph.NodeID, worker int) {
			rating := ratings[worker]
			rng := rngs[worker]
			for i := start; i < end; i++ {
				u := i
				if c.cfg.Order != nil {
					u = c.cfg.Order[i]
				}
				if c.moveNode(g, u, rating, rng) {
					moved.Add(1)
				}
			}
		})

		if moved.Load() == 0 {
			break
		}
	}

	return c.clusters
}

// moveNode relabels u to the adjacent cluster of maximum rating that can
// still take u's weight. Returns true when u changed cluster.
func (c *Clusterer) moveNode(g graph.Graph, u graph.NodeID, rating *concurrent.RatingMap, rng *rand.Rand) bool {
	degree := g.Degree(u)
	if degree == 0 {
		return false
	}

	current := c.currentCluster(u)
	uWeight := int64(g.NodeWeight(u))

	rating.Clear()
	c.rateNeighborhood(g, u, degree, rating, rng)

	best := current
	bestRating := rating.Get(uint32(current))

	rating.Entries(func(key uint32, r int64) {
		candidate := graph.ClusterID(key)
		if candidate == current {
			return
		}
		// Staying put is always allowed; joining another cluster must
		// respect the hard weight cap.
		if c.overload(candidate, uWeight) > 0 {
			return
		}
		switch {
		case r > bestRating:
		case r == bestRating && rng.Intn(2) == 0:
		default:
			return
		}
		best, bestRating = candidate, r
	})

	if best == current {
		return false
	}
	if !c.tryMoveWeight(current, best, uWeight) {
		return false
	}
	atomic.StoreUint32(&c.clusters[u], best)
	return true
}

// rateNeighborhood accumulates the weighted connectivity of u per adjacent
// cluster. Large neighborhoods are subsampled to bound work.
func (c *Clusterer) rateNeighborhood(g graph.Graph, u graph.NodeID, degree graph.NodeID, rating *concurrent.RatingMap, rng *rand.Rand) {
	sample := c.cfg.LargeDegreeThreshold > 0 && degree >= c.cfg.LargeDegreeThreshold
	var keep float64
	if sample {
		keep = float64(c.cfg.MaxNumNeighbors) / float64(degree)
	}

	var visited graph.NodeID
	g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
		if v == u {
			return true
		}
		if sample {
			if visited >= c.cfg.MaxNumNeighbors {
				return false
			}
			if rng.Float64() >= keep {
				return true
			}
			visited++
		}
		rating.Add(uint32(c.currentCluster(v)), int64(g.EdgeWeight(e)))
		return true
	})
}

func (c *Clusterer) currentCluster(u graph.NodeID) graph.ClusterID {
	return atomic.LoadUint32(&c.clusters[u])
}

// overload returns how far the cluster would exceed the cap after taking on
// weight w.
func (c *Clusterer) overload(cluster graph.ClusterID, w int64) int64 {
	over := c.clusterWeights[cluster].Load() + w - int64(c.cfg.MaxClusterWeight)
	if over < 0 {
		return 0
	}
	return over
}

// tryMoveWeight transfers w from one cluster's weight to another, refusing
// the move when the target would exceed the cap. The add side runs as a CAS
// loop so two concurrent movers cannot jointly overshoot.
func (c *Clusterer) tryMoveWeight(from, to graph.ClusterID, w int64) bool {
	for {
		cur := c.clusterWeights[to].Load()
		if cur+w > int64(c.cfg.MaxClusterWeight) {
			return false
		}
		if c.clusterWeights[to].CompareAndSwap(cur, cur+w) {
			break
		}
	}
	c.clusterWeights[from].Add(-w)
	return true
}

// ClusterWeight returns the current weight of a cluster. Valid after Cluster
// has run.
func (c *Clusterer) ClusterWeight(cluster graph.ClusterID) graph.NodeWeight {
	return graph.NodeWeight(c.clusterWeights[cluster].Load())
}

// BucketOrder derives a degree-bucket visit order without permuting the
// graph: nodes of smaller buckets come first, preserving relative order
// inside each bucket.
func BucketOrder(g graph.Graph) []graph.NodeID {
	n := g.N()
	order := make([]graph.NodeID, 0, n)

	buckets := make([][]graph.NodeID, graph.NumDegreeBuckets+1)
	for u := graph.NodeID(0); u < n; u++ {
		b := graph.DegreeBucket(g.Degree(u))
		buckets[b] = append(buckets[b], u)
	}
	for _, bucket := range buckets {
		order = append(order, bucket...)
	}
	return order
}
