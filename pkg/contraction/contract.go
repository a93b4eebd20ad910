// Package contraction builds the coarse graph induced by a clustering. Nodes
// of one cluster collapse into one coarse node; parallel edges between
// clusters merge with summed weights.
package contraction

import (
	"sort"
	"sync/atomic"

	"github.com/dd0wney/cluso-partition/pkg/concurrent"
	"github.com/dd0wney/cluso-partition/pkg/graph"
	"github.com/dd0wney/cluso-partition/pkg/parallel"
)

// Result carries the coarse graph and the fine-to-coarse node mapping.
type Result struct {
	Graph   *graph.CSRGraph
	Mapping []graph.NodeID
}

// Contract collapses g along the given clustering. The coarse node IDs are
// the cluster IDs compacted into [0, n') in ascending cluster order, so the
// mapping is deterministic for a fixed clustering.
func Contract(g graph.Graph, clustering []graph.ClusterID, workers int) *Result {
	if workers <= 0 {
		workers = parallel.DefaultWorkers()
	}
	n := g.N()

	mapping, coarseN := compactClusters(n, clustering, workers)

	coarseNodeWeights := make([]graph.NodeWeight, coarseN)
	for u := graph.NodeID(0); u < n; u++ {
		coarseNodeWeights[mapping[u]] += g.NodeWeight(u)
	}

	// Group fine nodes by coarse node with a counting sort so each coarse
	// adjacency can be aggregated from a contiguous slice.
	memberStarts := make([]graph.NodeID, coarseN+1)
	for u := graph.NodeID(0); u < n; u++ {
		memberStarts[mapping[u]+1]++
	}
	for c := graph.NodeID(0); c < coarseN; c++ {
		memberStarts[c+1] += memberStarts[c]
	}
	members := make([]graph.NodeID, n)
	fill := make([]graph.NodeID, coarseN)
	for u := graph.NodeID(0); u < n; u++ {
		c := mapping[u]
		members[memberStarts[c]+fill[c]] = u
		fill[c]++
	}

	// Aggregate each coarse adjacency into a shared edge buffer. Workers
	// process chunks of coarse nodes and claim a contiguous buffer range per
	// chunk through the ticket counter, which yields an ordered prefix sum
	// of chunk sizes without a lock. The fine edge count bounds the buffer.
	bufEdges := make([]graph.NodeID, g.M())
	bufWeights := make([]graph.EdgeWeight, g.M())
	bufOffsets := make([]graph.EdgeID, coarseN)
	degrees := make([]graph.EdgeID, coarseN)

	counter := concurrent.NewCircularCounter(workers + 1)
	ratings := make([]*concurrent.RatingMap, workers)
	for w := 0; w < workers; w++ {
		ratings[w] = concurrent.NewRatingMap()
		ratings[w].SetMaxEntries(int(coarseN))
	}

	parallel.For(coarseN, workers, func(start, end graph.NodeID, worker int) {
		rating := ratings[worker]

		type pending struct {
			node  graph.NodeID
			edges []graph.NodeID
			ws    []graph.EdgeWeight
		}
		var local []pending
		var localSize graph.EdgeID

		for c := start; c < end; c++ {
			rating.Clear()
			for _, u := range members[memberStarts[c]:memberStarts[c+1]] {
				g.Neighbors(u, func(e graph.EdgeID, v graph.NodeID) bool {
					if cv := mapping[v]; cv != c {
						rating.Add(cv, g.EdgeWeight(e))
					}
					return true
				})
			}

			edges := make([]graph.NodeID, 0, rating.Len())
			ws := make([]graph.EdgeWeight, 0, rating.Len())
			rating.Entries(func(key uint32, weight int64) {
				edges = append(edges, key)
				ws = append(ws, weight)
			})
			local = append(local, pending{node: c, edges: edges, ws: ws})
			localSize += graph.EdgeID(len(edges))
			degrees[c] = graph.EdgeID(len(edges))
		}

		entry := counter.Next()
		offset := graph.EdgeID(counter.FetchAndUpdate(entry, uint64(localSize)))
		for _, p := range local {
			bufOffsets[p.node] = offset
			copy(bufEdges[offset:], p.edges)
			copy(bufWeights[offset:], p.ws)
			offset += graph.EdgeID(len(p.edges))
		}
	})

	// Prefix-sum the degrees and copy each adjacency from its buffer range
	// to its final CSR range, sorted by neighbor ID.
	nodes := make([]graph.EdgeID, coarseN+1)
	parallel.PrefixSum(degrees, nodes)

	edges := make([]graph.NodeID, nodes[coarseN])
	edgeWeights := make([]graph.EdgeWeight, nodes[coarseN])
	parallel.For(coarseN, workers, func(start, end graph.NodeID, worker int) {
		for c := start; c < end; c++ {
			deg := degrees[c]
			src := bufOffsets[c]
			dst := nodes[c]
			copy(edges[dst:dst+deg], bufEdges[src:src+deg])
			copy(edgeWeights[dst:dst+deg], bufWeights[src:src+deg])
			sortAdjacencyPair(edges[dst:dst+deg], edgeWeights[dst:dst+deg])
		}
	})

	coarse := graph.NewCSRGraph(nodes, edges, coarseNodeWeights, edgeWeights, false)
	return &Result{Graph: coarse, Mapping: mapping}
}

// compactClusters renumbers the distinct cluster IDs into [0, n') in
// ascending order and maps every fine node to its coarse node. Cluster IDs
// may lie outside [0, n); the flag array is sized by the largest one.
func compactClusters(n graph.NodeID, clustering []graph.ClusterID, workers int) ([]graph.NodeID, graph.NodeID) {
	bound := n
	for _, c := range clustering[:n] {
		if graph.NodeID(c) >= bound {
			bound = graph.NodeID(c) + 1
		}
	}

	flags := make([]uint32, bound)
	parallel.For(n, workers, func(start, end graph.NodeID, worker int) {
		for u := start; u < end; u++ {
			atomic.StoreUint32(&flags[clustering[u]], 1)
		}
	})

	remap := make([]graph.NodeID, bound+1)
	for c := graph.NodeID(0); c < bound; c++ {
		remap[c+1] = remap[c] + flags[c]
	}
	coarseN := remap[bound]

	mapping := make([]graph.NodeID, n)
	parallel.For(n, workers, func(start, end graph.NodeID, worker int) {
		for u := start; u < end; u++ {
			mapping[u] = remap[clustering[u]]
		}
	})
	return mapping, coarseN
}

func sortAdjacencyPair(edges []graph.NodeID, weights []graph.EdgeWeight) {
	sort.Sort(&pairSorter{edges: edges, weights: weights})
}

type pairSorter struct {
	edges   []graph.NodeID
	weights []graph.EdgeWeight
}

func (s *pairSorter) Len() int           { return len(s.edges) }
func (s *pairSorter) Less(i, j int) bool { return s.edges[i] < s.edges[j] }
func (s *pairSorter) Swap(i, j int) {
	s.edges[i], s.edges[j] = s.edges[j], s.edges[i]
	s.weights[i], s.weights[j] = s.weights[j], s.weights[i]
}
