// Package partition holds the k-way partition state shared by the refiners:
// the block assignment, atomically maintained block weights, and the derived
// quality metrics.
package partition

import (
	"sync/atomic"

	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/parallel"
)

// Context carries the partitioning parameters shared across levels.
type Context struct {
	K       graph.BlockID
	Epsilon float64

	// maxBlockWeights caches the per-block caps derived from K and Epsilon
	// for one input graph.
	maxBlockWeights []graph.NodeWeight
	perfectWeight   graph.NodeWeight
}

// NewContext derives the block-weight caps for the given input graph:
// every block may hold at most (1+epsilon) * ceil(total_weight / k).
func NewContext(totalNodeWeight graph.NodeWeight, k graph.BlockID, epsilon float64) *Context {
	perfect := (totalNodeWeight + graph.NodeWeight(k) - 1) / graph.NodeWeight(k)
	limit := graph.NodeWeight(float64(perfect) * (1.0 + epsilon))
	if limit < perfect {
		limit = perfect
	}

	caps := make([]graph.NodeWeight, k)
	for b := range caps {
		caps[b] = limit
	}
	return &Context{
		K:               k,
		Epsilon:         epsilon,
		maxBlockWeights: caps,
		perfectWeight:   perfect,
	}
}

// MaxBlockWeight returns the weight cap of block b.
func (c *Context) MaxBlockWeight(b graph.BlockID) graph.NodeWeight {
	return c.maxBlockWeights[b]
}

// PerfectBlockWeight returns ceil(total_weight / k).
func (c *Context) PerfectBlockWeight() graph.NodeWeight {
	return c.perfectWeight
}

// PartitionedGraph binds a graph to a block assignment. Block reads and
// writes go through atomics so refiners can move nodes concurrently.
type PartitionedGraph struct {
	g graph.Graph
	k graph.BlockID

	partition    []graph.BlockID
	blockWeights []atomic.Int64
}

// NewPartitionedGraph wraps g with the given assignment, which must assign
// every node a block in [0, k). Block weights are computed on construction.
func NewPartitionedGraph(g graph.Graph, k graph.BlockID, assignment []graph.BlockID) *PartitionedGraph {
	p := &PartitionedGraph{
		g:            g,
		k:            k,
		partition:    assignment,
		blockWeights: make([]atomic.Int64, k),
	}
	p.RecomputeBlockWeights()
	return p
}

// Graph returns the underlying graph.
func (p *PartitionedGraph) Graph() graph.Graph {
	return p.g
}

// K returns the number of blocks.
func (p *PartitionedGraph) K() graph.BlockID {
	return p.k
}

// N returns the node count of the underlying graph.
func (p *PartitionedGraph) N() graph.NodeID {
	return p.g.N()
}

// Block returns the block of u.
func (p *PartitionedGraph) Block(u graph.NodeID) graph.BlockID {
	return atomic.LoadUint32(&p.partition[u])
}

// SetBlock performs a hard assignment: it stores the block and maintains the
// block weights.
func (p *PartitionedGraph) SetBlock(u graph.NodeID, b graph.BlockID) {
	old := atomic.SwapUint32(&p.partition[u], b)
	if old == b {
		return
	}
	w := int64(p.g.NodeWeight(u))
	p.blockWeights[old].Add(-w)
	p.blockWeights[b].Add(w)
}

// AtomicSetBlock stores the block of u without touching block weights. The
// caller reconciles weights separately, as the JET executor does through its
// per-pass weight deltas.
func (p *PartitionedGraph) AtomicSetBlock(u graph.NodeID, b graph.BlockID) {
	atomic.StoreUint32(&p.partition[u], b)
}

// BlockWeight returns the node weight currently assigned to b.
func (p *PartitionedGraph) BlockWeight(b graph.BlockID) graph.NodeWeight {
	return p.blockWeights[b].Load()
}

// AddBlockWeight adjusts the weight of b by delta.
func (p *PartitionedGraph) AddBlockWeight(b graph.BlockID, delta graph.NodeWeight) {
	p.blockWeights[b].Add(delta)
}

// TryMoveWeight transfers w from one block weight to the other only if the
// target stays at or below limit. The CAS loop on the target keeps concurrent
// movers from overshooting the cap together.
func (p *PartitionedGraph) TryMoveWeight(from, to graph.BlockID, w, limit graph.NodeWeight) bool {
	for {
		cur := p.blockWeights[to].Load()
		if cur+w > limit {
			return false
		}
		if p.blockWeights[to].CompareAndSwap(cur, cur+w) {
			p.blockWeights[from].Add(-w)
			return true
		}
	}
}

// RecomputeBlockWeights rebuilds the block weights from the assignment.
func (p *PartitionedGraph) RecomputeBlockWeights() {
	for b := graph.BlockID(0); b < p.k; b++ {
		p.blockWeights[b].Store(0)
	}
	workers := parallel.DefaultWorkers()
	locals := make([][]graph.NodeWeight, workers)
	parallel.ForStatic(p.g.N(), workers, func(start, end graph.NodeID, worker int) {
		local := make([]graph.NodeWeight, p.k)
		for u := start; u < end; u++ {
			local[p.partition[u]] += p.g.NodeWeight(u)
		}
		locals[worker] = local
	})
	for _, local := range locals {
		for b, w := range local {
			if w != 0 {
				p.blockWeights[b].Add(w)
			}
		}
	}
}

// Raw returns the assignment array. Callers must not mutate it while
// refiners run.
func (p *PartitionedGraph) Raw() []graph.BlockID {
	return p.partition
}

// CopyPartition returns a snapshot of the assignment.
func (p *PartitionedGraph) CopyPartition() []graph.BlockID {
	out := make([]graph.BlockID, len(p.partition))
	copy(out, p.partition)
	return out
}

// RestorePartition replaces the assignment with a snapshot and rebuilds the
// block weights.
func (p *PartitionedGraph) RestorePartition(snapshot []graph.BlockID) {
	copy(p.partition, snapshot)
	p.RecomputeBlockWeights()
}

// IsBorderNode reports whether u has a neighbor in another block.
func (p *PartitionedGraph) IsBorderNode(u graph.NodeID) bool {
	b := p.Block(u)
	border := false
	p.g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
		if p.Block(v) != b {
			border = true
			return false
		}
		return true
	})
	return border
}
