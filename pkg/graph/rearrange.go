package graph

import (
	"sort"

	"github.com/dd0wney/cluso-partition/pkg/parallel"
)

// NodePermutation maps between the external node order and the order the
// partitioner works on. NewToOld and OldToNew are inverse permutations.
type NodePermutation struct {
	OldToNew []NodeID
	NewToOld []NodeID
}

// Identity reports whether the permutation leaves every node in place.
func (p *NodePermutation) Identity() bool {
	return p.OldToNew == nil
}

// RearrangeByDegreeBuckets reorders nodes so that bucket b precedes bucket
// b+1, with isolated nodes at the end of the ordering reversed into bucket 0
// last. The returned graph is marked sorted; the permutation maps partitions
// back to the input order.
//
// Within a bucket the original relative order is kept, which makes the
// rearrangement deterministic for a fixed input.
func RearrangeByDegreeBuckets(g *CSRGraph) (*CSRGraph, *NodePermutation) {
	n := g.N()

	// Count nodes per bucket, then place nodes bucket by bucket. Isolated
	// nodes (bucket 0) go last so that RemoveIsolatedNodes can restrict
	// the tail.
	var counts [NumDegreeBuckets + 1]NodeID
	for u := NodeID(0); u < n; u++ {
		counts[bucketRank(g.Degree(u))]++
	}
	var starts [NumDegreeBuckets + 1]NodeID
	var acc NodeID
	for b := 0; b <= NumDegreeBuckets; b++ {
		starts[b] = acc
		acc += counts[b]
	}

	oldToNew := make([]NodeID, n)
	newToOld := make([]NodeID, n)
	for u := NodeID(0); u < n; u++ {
		b := bucketRank(g.Degree(u))
		pos := starts[b]
		starts[b]++
		oldToNew[u] = pos
		newToOld[pos] = u
	}

	nodes := make([]EdgeID, n+1)
	for newU := NodeID(0); newU < n; newU++ {
		nodes[newU+1] = nodes[newU] + EdgeID(g.Degree(newToOld[newU]))
	}

	edges := make([]NodeID, g.M())
	var edgeWeights []EdgeWeight
	if g.edgeWeights != nil {
		edgeWeights = make([]EdgeWeight, g.M())
	}
	var nodeWeights []NodeWeight
	if g.nodeWeights != nil {
		nodeWeights = make([]NodeWeight, n)
	}

	parallel.For(n, defaultWorkers(), func(start, end NodeID, worker int) {
		for newU := start; newU < end; newU++ {
			oldU := newToOld[newU]
			if nodeWeights != nil {
				nodeWeights[newU] = g.nodeWeights[oldU]
			}

			out := nodes[newU]
			g.Neighbors(oldU, func(e EdgeID, v NodeID) bool {
				edges[out] = oldToNew[v]
				if edgeWeights != nil {
					edgeWeights[out] = g.edgeWeights[e]
				}
				out++
				return true
			})

			// Keep adjacencies sorted so that interval encoding and the
			// symmetry validator stay applicable after the permutation.
			sortAdjacency(edges[nodes[newU]:out], edgeWeights, nodes[newU])
		}
	})

	rearranged := NewCSRGraph(nodes, edges, nodeWeights, edgeWeights, true)
	return rearranged, &NodePermutation{OldToNew: oldToNew, NewToOld: newToOld}
}

// bucketRank orders buckets ascending by degree but places isolated nodes
// after everything else.
func bucketRank(degree NodeID) int {
	if degree == 0 {
		return NumDegreeBuckets
	}
	return DegreeBucket(degree) - 1
}

func sortAdjacency(adj []NodeID, weights []EdgeWeight, base EdgeID) {
	if weights == nil {
		sort.Slice(adj, func(i, j int) bool { return adj[i] < adj[j] })
		return
	}
	w := weights[base : base+EdgeID(len(adj))]
	sort.Sort(&adjacencySorter{adj: adj, weights: w})
}

type adjacencySorter struct {
	adj     []NodeID
	weights []EdgeWeight
}

func (s *adjacencySorter) Len() int           { return len(s.adj) }
func (s *adjacencySorter) Less(i, j int) bool { return s.adj[i] < s.adj[j] }
func (s *adjacencySorter) Swap(i, j int) {
	s.adj[i], s.adj[j] = s.adj[j], s.adj[i]
	s.weights[i], s.weights[j] = s.weights[j], s.weights[i]
}

// CountIsolatedNodes returns the number of degree-zero nodes.
func CountIsolatedNodes(g Graph) NodeID {
	var isolated NodeID
	for u := NodeID(0); u < g.N(); u++ {
		if g.Degree(u) == 0 {
			isolated++
		}
	}
	return isolated
}

// ProjectPartition maps a partition computed on the rearranged graph back to
// the input node order.
func (p *NodePermutation) ProjectPartition(partition []BlockID) []BlockID {
	if p.Identity() {
		return partition
	}
	out := make([]BlockID, len(partition))
	for oldU, newU := range p.OldToNew {
		out[oldU] = partition[newU]
	}
	return out
}
