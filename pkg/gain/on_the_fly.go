package gain

import (
	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/partition"
)

// OnTheFlyCache recomputes connectivity from the adjacency on every query.
// It keeps no per-node state, so it fits when n*k is too large to allocate.
// Queries use no scratch space; every query scans u's adjacency afresh.
type OnTheFlyCache struct {
	p *partition.PartitionedGraph
}

// NewOnTheFlyCache creates a stateless cache over p.
func NewOnTheFlyCache(p *partition.PartitionedGraph) *OnTheFlyCache {
	return &OnTheFlyCache{p: p}
}

// Conn iterates u's adjacency and sums the weight into b.
func (c *OnTheFlyCache) Conn(u graph.NodeID, b graph.BlockID) graph.EdgeWeight {
	g := c.p.Graph()
	var conn graph.EdgeWeight
	g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
		if c.p.Block(v) == b {
			conn += g.EdgeWeight(e)
		}
		return true
	})
	return conn
}

// Gain computes both connectivities in a single adjacency scan.
func (c *OnTheFlyCache) Gain(u graph.NodeID, from, to graph.BlockID) graph.EdgeWeight {
	g := c.p.Graph()
	var connFrom, connTo graph.EdgeWeight
	g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
		switch c.p.Block(v) {
		case from:
			connFrom += g.EdgeWeight(e)
		case to:
			connTo += g.EdgeWeight(e)
		}
		return true
	})
	return connTo - connFrom
}

// WeightedDegree sums all edge weights of u.
func (c *OnTheFlyCache) WeightedDegree(u graph.NodeID) graph.EdgeWeight {
	g := c.p.Graph()
	var total graph.EdgeWeight
	g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
		total += g.EdgeWeight(e)
		return true
	})
	return total
}

// IsBorderNode reports whether u has a neighbor outside b.
func (c *OnTheFlyCache) IsBorderNode(u graph.NodeID, b graph.BlockID) bool {
	g := c.p.Graph()
	border := false
	g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
		if c.p.Block(v) != b {
			border = true
			return false
		}
		return true
	})
	return border
}

// Move is a no-op: there is no cached state to maintain.
func (c *OnTheFlyCache) Move(u graph.NodeID, from, to graph.BlockID) {}
