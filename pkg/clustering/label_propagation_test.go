package clustering

import (
	"testing"

	"github.com/dd0wney/cluso-partition/pkg/graph"
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

// cliqueRing builds numCliques cliques of size 4 with heavy internal edges
// and unit bridges between adjacent cliques in a ring.
func cliqueRing(t *testing.T, numCliques int) *graph.CSRGraph {
	t.Helper()

	n := numCliques * 4
	adjacency := make([][]graph.NodeID, n)
	weights := make([][]graph.EdgeWeight, n)

	addEdge := func(u, v graph.NodeID, w graph.EdgeWeight) {
		adjacency[u] = append(adjacency[u], v)
		weights[u] = append(weights[u], w)
		adjacency[v] = append(adjacency[v], u)
		weights[v] = append(weights[v], w)
	}

	for c := 0; c < numCliques; c++ {
		base := graph.NodeID(c * 4)
		for i := graph.NodeID(0); i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				addEdge(base+i, base+j, 10)
			}
		}
		next := graph.NodeID(((c + 1) % numCliques) * 4)
		addEdge(base, next, 1)
	}

	var flat []graph.EdgeWeight
	for _, ws := range weights {
		flat = append(flat, ws...)
	}
	return buildCSR(t, adjacency, flat)
}

func TestClusterWeightCapHonored(t *testing.T) {
	g := cliqueRing(t, 4)

	c := NewClusterer(Config{
		MaxClusterWeight: 4,
		NumIterations:    5,
		Seed:             1,
		Workers:          2,
	})
	clusters := c.Cluster(g)

	weights := make(map[graph.ClusterID]graph.NodeWeight)
	for u := graph.NodeID(0); u < g.N(); u++ {
		weights[clusters[u]] += g.NodeWeight(u)
	}
	for cluster, w := range weights {
		if w > 4 {
			t.Errorf("cluster %d has weight %d, cap is 4", cluster, w)
		}
	}
}

func TestClusteringCollapsesCliques(t *testing.T) {
	g := cliqueRing(t, 4)

	c := NewClusterer(Config{
		MaxClusterWeight: 4,
		NumIterations:    8,
		Seed:             7,
		Workers:          1,
	})
	clusters := c.Cluster(g)

	// Heavy internal edges dominate the unit bridges, so each clique should
	// end up in a single cluster.
	for clique := 0; clique < 4; clique++ {
		base := graph.NodeID(clique * 4)
		for i := graph.NodeID(1); i < 4; i++ {
			if clusters[base+i] != clusters[base] {
				t.Errorf("clique %d split: node %d in %d, node %d in %d",
					clique, base, clusters[base], base+i, clusters[base+i])
			}
		}
	}
}

func TestIsolatedNodesStayPut(t *testing.T) {
	adjacency := [][]graph.NodeID{{1}, {0}, {}}
	g := buildCSR(t, adjacency, nil)

	c := NewClusterer(Config{MaxClusterWeight: 10, NumIterations: 3, Workers: 1})
	clusters := c.Cluster(g)

	if clusters[2] != 2 {
		t.Errorf("isolated node moved to cluster %d", clusters[2])
	}
}

func TestBucketOrder(t *testing.T) {
	// Node 0 has degree 4, nodes 1..4 degree 1 or 2, node 5 isolated.
	adjacency := [][]graph.NodeID{
		{1, 2, 3, 4},
		{0, 2},
		{0, 1},
		{0},
		{0},
		{},
	}
	g := buildCSR(t, adjacency, nil)

	order := BucketOrder(g)
	if len(order) != 6 {
		t.Fatalf("order has %d entries, want 6", len(order))
	}
	for i := 0; i+1 < len(order); i++ {
		bi := graph.DegreeBucket(g.Degree(order[i]))
		bj := graph.DegreeBucket(g.Degree(order[i+1]))
		if bi > bj {
			t.Errorf("order[%d]=%d (bucket %d) precedes order[%d]=%d (bucket %d)",
				i, order[i], bi, i+1, order[i+1], bj)
		}
	}
	if order[0] != 5 {
		t.Errorf("isolated node should come first, got %d", order[0])
	}
}
