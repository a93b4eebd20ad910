package gain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/partition"
)

// maskGraph builds an 8-node graph from an upper-triangle edge bitmask.
// Edge weights cycle through 1..3 so gains are not all equal.
func maskGraph(mask uint32) *graph.CSRGraph {
	const n = 8
	type edge struct {
		to graph.NodeID
		w  graph.EdgeWeight
	}
	adj := make([][]edge, n)
	bit := 0
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if mask&(1<<bit) != 0 {
				w := graph.EdgeWeight(bit%3 + 1)
				adj[u] = append(adj[u], edge{graph.NodeID(v), w})
				adj[v] = append(adj[v], edge{graph.NodeID(u), w})
			}
			bit++
		}
	}

	nodes := make([]graph.EdgeID, n+1)
	var edges []graph.NodeID
	var weights []graph.EdgeWeight
	for u := 0; u < n; u++ {
		nodes[u] = graph.EdgeID(len(edges))
		for _, e := range adj[u] {
			edges = append(edges, e.to)
			weights = append(weights, e.w)
		}
	}
	nodes[n] = graph.EdgeID(len(edges))
	return graph.NewCSRGraph(nodes, edges, nil, weights, true)
}

func TestDenseCacheConsistencyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("dense cache matches on-the-fly recomputation after any move sequence", prop.ForAll(
		func(mask uint32, moves []uint8) bool {
			const k = graph.BlockID(3)
			g := maskGraph(mask)

			assignment := make([]graph.BlockID, g.N())
			for u := range assignment {
				assignment[u] = graph.BlockID(u) % k
			}
			p := partition.NewPartitionedGraph(g, k, assignment)
			dense := NewDenseCache(p)

			for _, m := range moves {
				u := graph.NodeID(m) % g.N()
				to := graph.BlockID(m>>4) % k
				from := p.Block(u)
				if from == to {
					continue
				}
				p.SetBlock(u, to)
				dense.Move(u, from, to)
			}

			if err := dense.Validate(); err != nil {
				return false
			}

			otf := NewOnTheFlyCache(p)
			for u := graph.NodeID(0); u < g.N(); u++ {
				for b := graph.BlockID(0); b < k; b++ {
					if dense.Conn(u, b) != otf.Conn(u, b) {
						return false
					}
					if dense.IsBorderNode(u, b) != otf.IsBorderNode(u, b) {
						return false
					}
				}
				from := p.Block(u)
				for b := graph.BlockID(0); b < k; b++ {
					if dense.Gain(u, from, b) != otf.Gain(u, from, b) {
						return false
					}
				}
			}
			return true
		},
		gen.UInt32(),
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
