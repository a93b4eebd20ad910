// Package initial computes the first k-way partition on the coarsest graph.
// A greedy graph-growing bipartitioner supplies the bisections and a
// recursive driver composes them into k blocks.
package initial

import (
	"math/rand"

	"github.com/dd0wney/cluso-partition/pkg/concurrent"
	"github.com/dd0wney/cluso-partition/pkg/graph"
)

// GreedyGraphGrowing grows block 0 from a random seed by best-first search
// keyed by connectivity to the grown side, everything else stays in block 1.
// Growth continues until block 0 reaches target0 and block 1 fits max1; a
// node that would push block 0 past max0 is skipped. Disconnected components
// are handled by reseeding.
func GreedyGraphGrowing(g graph.Graph, target0, max0, max1 graph.NodeWeight, rng *rand.Rand) []graph.BlockID {
	n := g.N()
	part := make([]graph.BlockID, n)
	for u := range part {
		part[u] = 1
	}

	total := g.TotalNodeWeight()
	need := total - max1
	if target0 > need {
		need = target0
	}

	frontier := concurrent.NewAddressableMaxHeap(int(n))
	taken := make([]bool, n)
	var weight0 graph.NodeWeight

	reseed := func() bool {
		// Sample a handful of positions before falling back to a scan.
		for attempt := 0; attempt < 8; attempt++ {
			u := graph.NodeID(rng.Intn(int(n)))
			if !taken[u] {
				frontier.Push(u, 0)
				return true
			}
		}
		for u := graph.NodeID(0); u < n; u++ {
			if !taken[u] {
				frontier.Push(u, 0)
				return true
			}
		}
		return false
	}

	for weight0 < need {
		if frontier.Empty() && !reseed() {
			break
		}
		u := frontier.Pop()
		if taken[u] {
			continue
		}
		w := g.NodeWeight(u)
		if weight0+w > max0 {
			taken[u] = true
			continue
		}
		taken[u] = true
		part[u] = 0
		weight0 += w

		g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			if !taken[v] {
				frontier.AddKey(v, g.EdgeWeight(e))
			}
			return true
		})
	}
	return part
}

// RandomBipartition assigns nodes in random order, each to the side with the
// most remaining capacity relative to its target.
func RandomBipartition(g graph.Graph, target0, max0, max1 graph.NodeWeight, rng *rand.Rand) []graph.BlockID {
	n := g.N()
	part := make([]graph.BlockID, n)
	order := rng.Perm(int(n))

	total := g.TotalNodeWeight()
	target1 := total - target0
	var weights [2]graph.NodeWeight
	maxes := [2]graph.NodeWeight{max0, max1}
	targets := [2]graph.NodeWeight{target0, target1}

	for _, i := range order {
		u := graph.NodeID(i)
		w := g.NodeWeight(u)
		side := graph.BlockID(0)
		if targets[1]-weights[1] > targets[0]-weights[0] {
			side = 1
		}
		if weights[side]+w > maxes[side] {
			side = 1 - side
		}
		part[u] = side
		weights[side] += w
	}
	return part
}

// bipartitionCut sums the weights of edges crossing the two sides, each
// counted once.
func bipartitionCut(g graph.Graph, part []graph.BlockID) graph.EdgeWeight {
	var cut graph.EdgeWeight
	for u := graph.NodeID(0); u < g.N(); u++ {
		g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
			if u < v && part[u] != part[v] {
				cut += g.EdgeWeight(e)
			}
			return true
		})
	}
	return cut
}

func sideWeights(g graph.Graph, part []graph.BlockID) [2]graph.NodeWeight {
	var weights [2]graph.NodeWeight
	for u := graph.NodeID(0); u < g.N(); u++ {
		weights[part[u]] += g.NodeWeight(u)
	}
	return weights
}

// Bisect runs several greedy attempts plus a random fallback and returns the
// bipartition with the best (feasible, cut) ranking.
func Bisect(g graph.Graph, target0, max0, max1 graph.NodeWeight, attempts int, rng *rand.Rand) []graph.BlockID {
	if attempts <= 0 {
		attempts = 4
	}

	var best []graph.BlockID
	var bestCut graph.EdgeWeight
	bestFeasible := false

	consider := func(part []graph.BlockID) {
		weights := sideWeights(g, part)
		feasible := weights[0] <= max0 && weights[1] <= max1
		cut := bipartitionCut(g, part)
		if best == nil ||
			(feasible && !bestFeasible) ||
			(feasible == bestFeasible && cut < bestCut) {
			best = part
			bestCut = cut
			bestFeasible = feasible
		}
	}

	for i := 0; i < attempts; i++ {
		consider(GreedyGraphGrowing(g, target0, max0, max1, rng))
	}
	consider(RandomBipartition(g, target0, max0, max1, rng))
	return best
}
