package partition

import "github.com/dd0wney/cluso-partition/pkg/graph"

// DeltaPartition overlays tentative moves on a base partition without
// mutating it. It owns neither the graph nor the base; Clear discards all
// staged moves.
type DeltaPartition struct {
	base *PartitionedGraph

	blocks       map[graph.NodeID]graph.BlockID
	weightDeltas map[graph.BlockID]graph.NodeWeight
}

// NewDeltaPartition creates an empty overlay over base.
func NewDeltaPartition(base *PartitionedGraph) *DeltaPartition {
	return &DeltaPartition{
		base:         base,
		blocks:       make(map[graph.NodeID]graph.BlockID),
		weightDeltas: make(map[graph.BlockID]graph.NodeWeight),
	}
}

// Block returns the staged block of u, falling back to the base partition.
func (d *DeltaPartition) Block(u graph.NodeID) graph.BlockID {
	if b, ok := d.blocks[u]; ok {
		return b
	}
	return d.base.Block(u)
}

// SetBlock stages a move of u and tracks the block-weight deltas.
func (d *DeltaPartition) SetBlock(u graph.NodeID, b graph.BlockID) {
	old := d.Block(u)
	if old == b {
		return
	}
	w := d.base.Graph().NodeWeight(u)
	d.weightDeltas[old] -= w
	d.weightDeltas[b] += w
	d.blocks[u] = b
}

// BlockWeight returns the base weight of b adjusted by staged moves.
func (d *DeltaPartition) BlockWeight(b graph.BlockID) graph.NodeWeight {
	return d.base.BlockWeight(b) + d.weightDeltas[b]
}

// Moves calls fn for every staged move.
func (d *DeltaPartition) Moves(fn func(u graph.NodeID, b graph.BlockID)) {
	for u, b := range d.blocks {
		fn(u, b)
	}
}

// Apply commits all staged moves to the base partition and clears the
// overlay.
func (d *DeltaPartition) Apply() {
	for u, b := range d.blocks {
		d.base.SetBlock(u, b)
	}
	d.Clear()
}

// Clear discards all staged moves.
func (d *DeltaPartition) Clear() {
	clear(d.blocks)
	clear(d.weightDeltas)
}
