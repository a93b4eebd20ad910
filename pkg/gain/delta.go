package gain

import (
	"github.com/dd0wney/cluso-partition/pkg/graph"
)

// DeltaCache overlays tentative moves on a DenseCache during a try-before-
// commit block. Queries add the staged deltas to the parent's values; Move
// writes only into the overlay; Clear discards everything. The overlay is
// single-threaded.
type DeltaCache struct {
	parent *DenseCache
	delta  map[int]graph.EdgeWeight
}

// NewDeltaCache creates an empty overlay over parent.
func NewDeltaCache(parent *DenseCache) *DeltaCache {
	return &DeltaCache{
		parent: parent,
		delta:  make(map[int]graph.EdgeWeight),
	}
}

// Conn returns the parent's connectivity adjusted by staged moves.
func (c *DeltaCache) Conn(u graph.NodeID, b graph.BlockID) graph.EdgeWeight {
	return c.parent.Conn(u, b) + c.delta[c.parent.index(u, b)]
}

// Gain returns Conn(u, to) - Conn(u, from) including staged deltas.
func (c *DeltaCache) Gain(u graph.NodeID, from, to graph.BlockID) graph.EdgeWeight {
	return c.Conn(u, to) - c.Conn(u, from)
}

// WeightedDegree returns the parent's total weighted degree; moves never
// change it.
func (c *DeltaCache) WeightedDegree(u graph.NodeID) graph.EdgeWeight {
	return c.parent.WeightedDegree(u)
}

// IsBorderNode reports whether u has staged-adjusted connectivity outside b.
func (c *DeltaCache) IsBorderNode(u graph.NodeID, b graph.BlockID) bool {
	return c.WeightedDegree(u) != c.Conn(u, b)
}

// Move stages the connectivity shift of u's neighbors in the overlay only.
func (c *DeltaCache) Move(u graph.NodeID, from, to graph.BlockID) {
	g := c.parent.p.Graph()
	g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
		w := g.EdgeWeight(e)
		c.delta[c.parent.index(v, from)] -= w
		c.delta[c.parent.index(v, to)] += w
		return true
	})
}

// Clear discards all staged deltas.
func (c *DeltaCache) Clear() {
	clear(c.delta)
}
