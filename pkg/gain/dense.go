package gain

import (
	"fmt"
	"sync/atomic"

	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/parallel"
	"github.com/dd0wney/cluso-partition/pkg/partition"
)

// DenseCache materializes the full n*k connectivity table. Queries are O(1);
// Move touches each neighbor once with atomic adds.
type DenseCache struct {
	p *partition.PartitionedGraph
	k graph.BlockID

	wdeg []atomic.Int64
	deg  []graph.EdgeWeight
}

// NewDenseCache allocates and initializes the table from the current
// partition.
func NewDenseCache(p *partition.PartitionedGraph) *DenseCache {
	g := p.Graph()
	n := g.N()
	k := p.K()

	c := &DenseCache{
		p:    p,
		k:    k,
		wdeg: make([]atomic.Int64, int(n)*int(k)),
		deg:  make([]graph.EdgeWeight, n),
	}

	parallel.For(n, parallel.DefaultWorkers(), func(start, end graph.NodeID, worker int) {
		for u := start; u < end; u++ {
			var total graph.EdgeWeight
			g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
				w := g.EdgeWeight(e)
				c.wdeg[c.index(u, p.Block(v))].Add(w)
				total += w
				return true
			})
			c.deg[u] = total
		}
	})
	return c
}

// index maps (node, block) to a table slot. The delta overlay reuses it so
// both address the same logical cell.
func (c *DenseCache) index(u graph.NodeID, b graph.BlockID) int {
	return int(u)*int(c.k) + int(b)
}

// Conn returns the weighted degree of u into b.
func (c *DenseCache) Conn(u graph.NodeID, b graph.BlockID) graph.EdgeWeight {
	return c.wdeg[c.index(u, b)].Load()
}

// Gain returns Conn(u, to) - Conn(u, from).
func (c *DenseCache) Gain(u graph.NodeID, from, to graph.BlockID) graph.EdgeWeight {
	return c.Conn(u, to) - c.Conn(u, from)
}

// WeightedDegree returns the total weighted degree of u.
func (c *DenseCache) WeightedDegree(u graph.NodeID) graph.EdgeWeight {
	return c.deg[u]
}

// IsBorderNode reports whether u, currently in b, has connectivity outside b.
func (c *DenseCache) IsBorderNode(u graph.NodeID, b graph.BlockID) bool {
	return c.deg[u] != c.Conn(u, b)
}

// Move shifts the connectivity contribution of u in every neighbor's row
// from one block column to the other.
func (c *DenseCache) Move(u graph.NodeID, from, to graph.BlockID) {
	g := c.p.Graph()
	g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
		w := g.EdgeWeight(e)
		c.wdeg[c.index(v, from)].Add(-w)
		c.wdeg[c.index(v, to)].Add(w)
		return true
	})
}

// Validate recomputes the table from the partition and compares. Meant for
// tests and debugging only.
func (c *DenseCache) Validate() error {
	g := c.p.Graph()
	for u := graph.NodeID(0); u < g.N(); u++ {
		expect := make([]graph.EdgeWeight, c.k)
		var total graph.EdgeWeight
		g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			expect[c.p.Block(v)] += g.EdgeWeight(e)
			total += g.EdgeWeight(e)
			return true
		})
		for b := graph.BlockID(0); b < c.k; b++ {
			if got := c.Conn(u, b); got != expect[b] {
				return fmt.Errorf("gain: wdeg[%d,%d] = %d, recomputed %d", u, b, got, expect[b])
			}
		}
		if c.deg[u] != total {
			return fmt.Errorf("gain: deg[%d] = %d, recomputed %d", u, c.deg[u], total)
		}
	}
	return nil
}
