// Package coarsening manages the multilevel hierarchy: repeated clustering
// and contraction on the way down, partition projection on the way back up.
package coarsening

import (
	"github.com/dd0wney/cluso-partition/pkg/clustering"
	"github.com/dd0wney/cluso-partition/pkg/contraction"
	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/parallel"
)

// shrinkThreshold aborts coarsening when a contraction keeps at least this
// fraction of the nodes. Further levels would not pay for themselves.
const shrinkThreshold = 0.95

// Config controls the coarsening loop.
type Config struct {
	// MaxLevels bounds the hierarchy depth. Zero means unbounded.
	MaxLevels int

	// NumIterations, LargeDegreeThreshold and MaxNumNeighbors configure the
	// label-propagation clusterer run on every level.
	NumIterations        int
	LargeDegreeThreshold graph.NodeID
	MaxNumNeighbors      graph.NodeID

	Seed    int64
	Workers int

	// UseBucketOrder schedules label propagation in derived degree-bucket
	// order without physically permuting the graph.
	UseBucketOrder bool
}

// level is one entry of the hierarchy. Mapping projects the nodes of the
// graph one level below onto Graph; the input level has no mapping.
type level struct {
	graph   graph.Graph
	mapping []graph.NodeID
}

// Coarsener owns the hierarchy. Level 0 is the input graph; the top level is
// the coarsest graph built so far.
type Coarsener struct {
	cfg    Config
	levels []level

	converged bool
}

// New creates a coarsener rooted at the input graph.
func New(input graph.Graph, cfg Config) *Coarsener {
	if cfg.Workers <= 0 {
		cfg.Workers = parallel.DefaultWorkers()
	}
	return &Coarsener{
		cfg:    cfg,
		levels: []level{{graph: input}},
	}
}

// CurrentGraph returns the coarsest graph built so far.
func (c *Coarsener) CurrentGraph() graph.Graph {
	return c.levels[len(c.levels)-1].graph
}

// Level returns the current hierarchy depth; 0 means only the input exists.
func (c *Coarsener) Level() int {
	return len(c.levels) - 1
}

// Converged reports whether further coarsening is pointless.
func (c *Coarsener) Converged() bool {
	return c.converged
}

// CoarsenOnce clusters the top graph under the given weight cap and
// contracts it. Returns the new top graph and true when a level was added;
// the current top graph and false once coarsening has converged.
func (c *Coarsener) CoarsenOnce(maxClusterWeight graph.NodeWeight) (graph.Graph, bool) {
	if c.converged {
		return c.CurrentGraph(), false
	}
	if c.cfg.MaxLevels > 0 && c.Level() >= c.cfg.MaxLevels {
		c.converged = true
		return c.CurrentGraph(), false
	}

	top := c.CurrentGraph()

	clusterer := clustering.NewClusterer(clustering.Config{
		MaxClusterWeight:     maxClusterWeight,
		NumIterations:        c.cfg.NumIterations,
		LargeDegreeThreshold: c.cfg.LargeDegreeThreshold,
		MaxNumNeighbors:      c.cfg.MaxNumNeighbors,
		Seed:                 c.cfg.Seed + int64(c.Level()),
		Workers:              c.cfg.Workers,
		Order:                c.order(top),
	})
	clusters := clusterer.Cluster(top)

	result := contraction.Contract(top, clusters, c.cfg.Workers)
	newN, oldN := result.Graph.N(), top.N()

	if newN == oldN {
		// Trivial clustering: every node kept its own cluster.
		c.converged = true
		return top, false
	}
	if float64(newN)/float64(oldN) >= shrinkThreshold {
		c.converged = true
		return top, false
	}

	c.levels = append(c.levels, level{graph: result.Graph, mapping: result.Mapping})
	return result.Graph, true
}

// UncoarsenOnce pops the top level and projects the partition onto the graph
// below. The caller must refresh any held graph reference with the returned
// one.
func (c *Coarsener) UncoarsenOnce(partition []graph.BlockID) ([]graph.BlockID, graph.Graph) {
	if len(c.levels) == 1 {
		return partition, c.levels[0].graph
	}

	top := c.levels[len(c.levels)-1]
	c.levels = c.levels[:len(c.levels)-1]
	below := c.levels[len(c.levels)-1].graph

	projected := make([]graph.BlockID, below.N())
	parallel.For(below.N(), c.cfg.Workers, func(start, end graph.NodeID, worker int) {
		for u := start; u < end; u++ {
			projected[u] = partition[top.mapping[u]]
		}
	})
	return projected, below
}

func (c *Coarsener) order(g graph.Graph) []graph.NodeID {
	if !c.cfg.UseBucketOrder || g.Sorted() {
		return nil
	}
	return clustering.BucketOrder(g)
}
