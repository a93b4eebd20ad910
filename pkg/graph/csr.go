package graph

import (
	"fmt"

	"github.com/dd0wney/cluso-partition/pkg/parallel"
)

// CSRGraph is the uncompressed adjacency representation: a prefix-sum array
// over per-node degrees and a flat edge array. Node and edge weights are
// optional; a nil slice means unit weights.
type CSRGraph struct {
	nodes       []EdgeID
	edges       []NodeID
	nodeWeights []NodeWeight
	edgeWeights []EdgeWeight

	totalNodeWeight NodeWeight
	totalEdgeWeight EdgeWeight
	maxNodeWeight   NodeWeight
	maxDegree       NodeID

	sorted     bool
	buckets    [NumDegreeBuckets + 1]NodeID
	numBuckets int

	// n is the logical node count; fullN the allocated one. They differ
	// while isolated nodes are removed.
	n     NodeID
	fullN NodeID
}

// NewCSRGraph wraps pre-built CSR arrays. nodes must have one entry per node
// plus one, with nodes[0] == 0. sorted declares that nodes are ordered by
// degree buckets.
func NewCSRGraph(nodes []EdgeID, edges []NodeID, nodeWeights []NodeWeight, edgeWeights []EdgeWeight, sorted bool) *CSRGraph {
	n := NodeID(len(nodes) - 1)
	g := &CSRGraph{
		nodes:       nodes,
		edges:       edges,
		nodeWeights: nodeWeights,
		edgeWeights: edgeWeights,
		sorted:      sorted,
		n:           n,
		fullN:       n,
	}
	g.updateTotalNodeWeight()
	g.updateTotalEdgeWeight()
	g.initDegreeBuckets()
	return g
}

// N returns the logical node count.
func (g *CSRGraph) N() NodeID {
	return g.n
}

// M returns the directed half-edge count.
func (g *CSRGraph) M() EdgeID {
	return EdgeID(len(g.edges))
}

// Degree returns the number of neighbors of u.
func (g *CSRGraph) Degree(u NodeID) NodeID {
	return NodeID(g.nodes[u+1] - g.nodes[u])
}

// MaxDegree returns the largest degree in the graph.
func (g *CSRGraph) MaxDegree() NodeID {
	return g.maxDegree
}

// FirstEdge returns the edge ID of the first half-edge leaving u.
func (g *CSRGraph) FirstEdge(u NodeID) EdgeID {
	return g.nodes[u]
}

// Neighbors iterates the adjacency of u in storage order.
func (g *CSRGraph) Neighbors(u NodeID, yield func(e EdgeID, v NodeID) bool) {
	for e := g.nodes[u]; e < g.nodes[u+1]; e++ {
		if !yield(e, g.edges[e]) {
			return
		}
	}
}

// RawEdges returns the adjacency slice of u. Callers must not mutate it.
func (g *CSRGraph) RawEdges(u NodeID) []NodeID {
	return g.edges[g.nodes[u]:g.nodes[u+1]]
}

// NodeWeight returns the weight of u (1 when the graph is unweighted).
func (g *CSRGraph) NodeWeight(u NodeID) NodeWeight {
	if g.nodeWeights == nil {
		return 1
	}
	return g.nodeWeights[u]
}

// EdgeWeight returns the weight of half-edge e (1 when unweighted).
func (g *CSRGraph) EdgeWeight(e EdgeID) EdgeWeight {
	if g.edgeWeights == nil {
		return 1
	}
	return g.edgeWeights[e]
}

// TotalNodeWeight returns the sum of all node weights.
func (g *CSRGraph) TotalNodeWeight() NodeWeight {
	return g.totalNodeWeight
}

// TotalEdgeWeight returns the sum of all edge weights.
func (g *CSRGraph) TotalEdgeWeight() EdgeWeight {
	return g.totalEdgeWeight
}

// MaxNodeWeight returns the largest node weight.
func (g *CSRGraph) MaxNodeWeight() NodeWeight {
	return g.maxNodeWeight
}

// Sorted reports whether nodes are ordered by degree buckets.
func (g *CSRGraph) Sorted() bool {
	return g.sorted
}

// BucketStart returns the prefix count of nodes in buckets < b.
func (g *CSRGraph) BucketStart(b int) NodeID {
	return g.buckets[b]
}

// NumBuckets returns the number of non-empty leading degree buckets.
func (g *CSRGraph) NumBuckets() int {
	return g.numBuckets
}

// RemoveIsolatedNodes restricts the logical node count by the given number
// of trailing isolated nodes without copying. Requires a sorted graph where
// isolated nodes occupy the tail of the node ordering.
func (g *CSRGraph) RemoveIsolatedNodes(isolatedNodes NodeID) {
	if !g.sorted {
		panic("graph: cannot remove isolated nodes from an unsorted graph")
	}
	if isolatedNodes == 0 {
		return
	}
	if isolatedNodes > g.n {
		panic(fmt.Sprintf("graph: removing %d isolated nodes from %d nodes", isolatedNodes, g.n))
	}

	g.n -= isolatedNodes
	g.updateTotalNodeWeight()

	for b := 1; b < len(g.buckets); b++ {
		g.buckets[b] -= isolatedNodes
	}
	if g.numBuckets == 1 {
		g.numBuckets = 0
	}
}

// IntegrateIsolatedNodes restores the nodes removed by RemoveIsolatedNodes.
func (g *CSRGraph) IntegrateIsolatedNodes() {
	if !g.sorted {
		panic("graph: cannot integrate isolated nodes into an unsorted graph")
	}

	isolatedNodes := g.fullN - g.n
	g.n = g.fullN
	g.updateTotalNodeWeight()

	for b := 1; b < len(g.buckets); b++ {
		g.buckets[b] += isolatedNodes
	}
	if g.numBuckets == 0 {
		g.numBuckets = 1
	}
}

func (g *CSRGraph) updateTotalNodeWeight() {
	if g.nodeWeights == nil {
		g.totalNodeWeight = NodeWeight(g.n)
		g.maxNodeWeight = 1
		return
	}
	weights := g.nodeWeights[:g.n]
	g.totalNodeWeight = parallel.Sum(weights, defaultWorkers())
	g.maxNodeWeight = parallel.Max(weights, defaultWorkers(), 0)
}

func (g *CSRGraph) updateTotalEdgeWeight() {
	if g.edgeWeights == nil {
		g.totalEdgeWeight = EdgeWeight(len(g.edges))
		return
	}
	g.totalEdgeWeight = parallel.Sum(g.edgeWeights, defaultWorkers())
}

func (g *CSRGraph) initDegreeBuckets() {
	g.buckets, g.numBuckets, g.maxDegree = computeDegreeBuckets(g.n, g.sorted, g.Degree)
}
