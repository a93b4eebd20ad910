package initial

import (
	"math/rand"
	"testing"

	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/partition"
)

func buildCSR(t *testing.T, adjacency [][]graph.NodeID, edgeWeights []graph.EdgeWeight) *graph.CSRGraph {
	t.Helper()

	nodes := make([]graph.EdgeID, len(adjacency)+1)
	var edges []graph.NodeID
	for u, neighbors := range adjacency {
		nodes[u+1] = nodes[u] + graph.EdgeID(len(neighbors))
		edges = append(edges, neighbors...)
	}
	return graph.NewCSRGraph(nodes, edges, nil, edgeWeights, false)
}

func pathCSR(t *testing.T, n int) *graph.CSRGraph {
	t.Helper()

	adjacency := make([][]graph.NodeID, n)
	for u := 0; u < n; u++ {
		if u > 0 {
			adjacency[u] = append(adjacency[u], graph.NodeID(u-1))
		}
		if u < n-1 {
			adjacency[u] = append(adjacency[u], graph.NodeID(u+1))
		}
	}
	return buildCSR(t, adjacency, nil)
}

func cliqueRing(t *testing.T, r int) *graph.CSRGraph {
	t.Helper()

	n := 4 * r
	adjacency := make([][]graph.NodeID, n)
	weights := make([][]graph.EdgeWeight, n)
	addEdge := func(u, v graph.NodeID, w graph.EdgeWeight) {
		adjacency[u] = append(adjacency[u], v)
		weights[u] = append(weights[u], w)
		adjacency[v] = append(adjacency[v], u)
		weights[v] = append(weights[v], w)
	}
	for c := 0; c < r; c++ {
		base := graph.NodeID(4 * c)
		for i := graph.NodeID(0); i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				addEdge(base+i, base+j, 10)
			}
		}
		addEdge(base+3, graph.NodeID((4*c+4)%n), 1)
	}
	var flat []graph.EdgeWeight
	for _, ws := range weights {
		flat = append(flat, ws...)
	}
	return buildCSR(t, adjacency, flat)
}

func TestGreedyGraphGrowingBalancedPath(t *testing.T) {
	g := pathCSR(t, 8)
	rng := rand.New(rand.NewSource(1))

	part := GreedyGraphGrowing(g, 4, 4, 4, rng)
	weights := sideWeights(g, part)
	if weights[0] != 4 || weights[1] != 4 {
		t.Fatalf("side weights = %v, want [4 4]", weights)
	}
	// The grown side is connected, so at most two path edges are cut.
	if cut := bipartitionCut(g, part); cut > 2 {
		t.Errorf("cut = %d, want at most 2", cut)
	}
}

func TestRandomBipartitionRespectsCaps(t *testing.T) {
	g := pathCSR(t, 17)
	rng := rand.New(rand.NewSource(9))

	part := RandomBipartition(g, 9, 10, 10, rng)
	weights := sideWeights(g, part)
	if weights[0] > 10 || weights[1] > 10 {
		t.Errorf("side weights %v exceed cap 10", weights)
	}
	if weights[0]+weights[1] != 17 {
		t.Errorf("side weights %v do not cover all nodes", weights)
	}
}

func TestBisectPrefersFeasible(t *testing.T) {
	g := pathCSR(t, 8)
	rng := rand.New(rand.NewSource(3))

	part := Bisect(g, 4, 4, 4, 4, rng)
	weights := sideWeights(g, part)
	if weights[0] > 4 || weights[1] > 4 {
		t.Errorf("side weights %v exceed cap 4", weights)
	}
}

func TestInducedSubgraph(t *testing.T) {
	// Path 0-1-2-3 split into even and odd nodes: both sides lose all edges.
	g := pathCSR(t, 4)
	origIDs := []graph.NodeID{0, 1, 2, 3}
	sub, ids := inducedSubgraph(g, []graph.BlockID{0, 1, 0, 1}, 0, origIDs)

	if sub.N() != 2 || sub.M() != 0 {
		t.Fatalf("subgraph has %d nodes, %d edges, want 2, 0", sub.N(), sub.M())
	}
	if ids[0] != 0 || ids[1] != 2 {
		t.Errorf("original ids = %v, want [0 2]", ids)
	}

	// A contiguous side keeps its internal edge.
	sub, ids = inducedSubgraph(g, []graph.BlockID{0, 0, 1, 1}, 1, origIDs)
	if sub.N() != 2 || sub.M() != 2 {
		t.Fatalf("subgraph has %d nodes, %d edges, want 2, 2", sub.N(), sub.M())
	}
	if ids[0] != 2 || ids[1] != 3 {
		t.Errorf("original ids = %v, want [2 3]", ids)
	}
}

func TestPartitionKWayCliqueRing(t *testing.T) {
	g := cliqueRing(t, 4)
	part := PartitionKWay(g, 4, 0.0, Config{Seed: 1})

	p := partition.NewPartitionedGraph(g, 4, part)
	ctx := partition.NewContext(g.TotalNodeWeight(), 4, 0.0)
	if !partition.Feasible(p, ctx) {
		t.Fatal("initial partition infeasible")
	}
	if got := partition.EdgeCut(p); got != 4 {
		t.Errorf("cut = %d, want 4 (one bridge per ring edge)", got)
	}
}

func TestPartitionKWayOddK(t *testing.T) {
	g := pathCSR(t, 9)
	part := PartitionKWay(g, 3, 0.0, Config{Seed: 7})

	p := partition.NewPartitionedGraph(g, 3, part)
	ctx := partition.NewContext(g.TotalNodeWeight(), 3, 0.0)
	for u, b := range part {
		if b >= 3 {
			t.Fatalf("block[%d] = %d out of range", u, b)
		}
	}
	if !partition.Feasible(p, ctx) {
		weights := []graph.NodeWeight{p.BlockWeight(0), p.BlockWeight(1), p.BlockWeight(2)}
		t.Errorf("initial partition infeasible, block weights %v", weights)
	}
}
