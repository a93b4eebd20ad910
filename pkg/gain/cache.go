// Package gain answers "how does the cut change if node u moves from block a
// to block b" in O(1) per query, with O(deg) incremental maintenance under
// concurrent moves.
package gain

import (
	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/partition"
)

// Cache is the common contract of the gain cache variants. Conn(u, b) is the
// weighted degree of u into block b; Gain(u, a, b) = Conn(u, b) - Conn(u, a).
//
// Under concurrent moves the cached values are eventually consistent:
// refiners that need exact decisions re-validate with projected gains.
type Cache interface {
	Gain(u graph.NodeID, from, to graph.BlockID) graph.EdgeWeight
	Conn(u graph.NodeID, b graph.BlockID) graph.EdgeWeight
	WeightedDegree(u graph.NodeID) graph.EdgeWeight
	IsBorderNode(u graph.NodeID, b graph.BlockID) bool

	// Move updates the cached connectivity of u's neighbors after u moved
	// from one block to another.
	Move(u graph.NodeID, from, to graph.BlockID)
}

// MaxGainer describes the best move target of a node.
type MaxGainer struct {
	Block        graph.BlockID
	IntDegree    graph.EdgeWeight
	ExtDegree    graph.EdgeWeight
	AbsoluteGain graph.EdgeWeight
}

// ComputeMaxGainer scans all blocks for the target maximizing connectivity,
// excluding u's own block and any block whose weight cap the move would
// break. Returns false when no admissible target exists.
func ComputeMaxGainer(c Cache, p *partition.PartitionedGraph, ctx *partition.Context, u graph.NodeID) (MaxGainer, bool) {
	from := p.Block(u)
	intDegree := c.Conn(u, from)
	uWeight := p.Graph().NodeWeight(u)

	best := MaxGainer{Block: graph.InvalidBlockID, IntDegree: intDegree}
	found := false
	for b := graph.BlockID(0); b < p.K(); b++ {
		if b == from {
			continue
		}
		if p.BlockWeight(b)+uWeight > ctx.MaxBlockWeight(b) {
			continue
		}
		ext := c.Conn(u, b)
		if !found || ext > best.ExtDegree || (ext == best.ExtDegree && b < best.Block) {
			best.Block = b
			best.ExtDegree = ext
			found = true
		}
	}
	best.AbsoluteGain = best.ExtDegree - best.IntDegree
	return best, found
}
