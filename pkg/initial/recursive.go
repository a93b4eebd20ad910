package initial

import (
	"math/rand"

	"github.com/dd0wney/cluso-partition/pkg/graph"
)

// Config tunes the initial partitioner.
type Config struct {
	// Seed feeds the bipartitioner's random source.
	Seed int64

	// NumAttempts is the number of greedy growing attempts per bisection.
	// Defaults to 4.
	NumAttempts int
}

// PartitionKWay recursively bisects g into k blocks. Each bisection splits
// the remaining block budget as evenly as possible and sizes the two sides
// proportionally, with the allowed imbalance spread over both sides.
func PartitionKWay(g graph.Graph, k graph.BlockID, epsilon float64, cfg Config) []graph.BlockID {
	out := make([]graph.BlockID, g.N())
	rng := rand.New(rand.NewSource(cfg.Seed))
	ids := make([]graph.NodeID, g.N())
	for u := range ids {
		ids[u] = graph.NodeID(u)
	}
	bisectInto(g, ids, k, 0, epsilon, cfg, rng, out)
	return out
}

// bisectInto assigns blocks [firstBlock, firstBlock+k) to the nodes of sub,
// whose node u corresponds to origIDs[u] in the root graph.
func bisectInto(sub graph.Graph, origIDs []graph.NodeID, k, firstBlock graph.BlockID, epsilon float64, cfg Config, rng *rand.Rand, out []graph.BlockID) {
	if sub.N() == 0 {
		return
	}
	if k == 1 {
		for _, orig := range origIDs {
			out[orig] = firstBlock
		}
		return
	}

	k0 := (k + 1) / 2
	k1 := k - k0
	total := sub.TotalNodeWeight()

	target0 := (total*graph.NodeWeight(k0) + graph.NodeWeight(k) - 1) / graph.NodeWeight(k)
	target1 := total - target0
	max0 := graph.NodeWeight(float64(target0) * (1.0 + epsilon))
	max1 := graph.NodeWeight(float64(target1) * (1.0 + epsilon))
	if max0 < target0 {
		max0 = target0
	}
	if max1 < target1 {
		max1 = target1
	}

	part := Bisect(sub, target0, max0, max1, cfg.NumAttempts, rng)

	if k0 == 1 && k1 == 1 {
		for u, orig := range origIDs {
			out[orig] = firstBlock + part[u]
		}
		return
	}

	sub0, ids0 := inducedSubgraph(sub, part, 0, origIDs)
	sub1, ids1 := inducedSubgraph(sub, part, 1, origIDs)
	bisectInto(sub0, ids0, k0, firstBlock, epsilon, cfg, rng, out)
	bisectInto(sub1, ids1, k1, firstBlock+k0, epsilon, cfg, rng, out)
}

// inducedSubgraph extracts the side-induced subgraph and the original ids of
// its nodes. Edges leaving the side are dropped.
func inducedSubgraph(g graph.Graph, part []graph.BlockID, side graph.BlockID, origIDs []graph.NodeID) (*graph.CSRGraph, []graph.NodeID) {
	n := g.N()
	remap := make([]graph.NodeID, n)
	var subN graph.NodeID
	for u := graph.NodeID(0); u < n; u++ {
		if part[u] == side {
			remap[u] = subN
			subN++
		} else {
			remap[u] = graph.InvalidNodeID
		}
	}

	nodes := make([]graph.EdgeID, subN+1)
	ids := make([]graph.NodeID, subN)
	nodeWeights := make([]graph.NodeWeight, subN)
	var edges []graph.NodeID
	var edgeWeights []graph.EdgeWeight

	for u := graph.NodeID(0); u < n; u++ {
		if part[u] != side {
			continue
		}
		su := remap[u]
		ids[su] = origIDs[u]
		nodeWeights[su] = g.NodeWeight(u)
		g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			if part[v] == side {
				edges = append(edges, remap[v])
				edgeWeights = append(edgeWeights, g.EdgeWeight(e))
			}
			return true
		})
		nodes[su+1] = graph.EdgeID(len(edges))
	}
	return graph.NewCSRGraph(nodes, edges, nodeWeights, edgeWeights, false), ids
}
