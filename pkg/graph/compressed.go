package graph

import "encoding/binary"

// Compression parameters. Adjacencies of degree at least HighDegreeThreshold
// are split into parts of HighDegreePartLength neighbors so that decoding can
// skip ahead without touching every byte. Runs of at least IntervalThreshold
// consecutive neighbor IDs are stored as (start, length) intervals.
const (
	HighDegreeThreshold      = 10000
	HighDegreePartLength     = 1000
	DefaultIntervalThreshold = 4
)

// CompressedGraph stores adjacencies gap-encoded in a byte stream. The
// offsets array maps each node to its byte range; firstEdges maps each node
// to the logical edge ID of its first half-edge. Edge weights, when present,
// are a dense array indexed in decode order.
type CompressedGraph struct {
	offsets         *CompactArray
	firstEdges      *CompactArray
	compressedEdges []byte

	nodeWeights []NodeWeight
	edgeWeights []EdgeWeight

	m                 EdgeID
	totalNodeWeight   NodeWeight
	totalEdgeWeight   EdgeWeight
	maxNodeWeight     NodeWeight
	maxDegree         NodeID
	intervalThreshold NodeID

	sorted     bool
	buckets    [NumDegreeBuckets + 1]NodeID
	numBuckets int

	numHighDegreeNodes NodeID
	numHighDegreeParts NodeID
	numIntervalNodes   NodeID
	numIntervals       NodeID

	n     NodeID
	fullN NodeID
}

// N returns the logical node count.
func (g *CompressedGraph) N() NodeID {
	return g.n
}

// M returns the directed half-edge count.
func (g *CompressedGraph) M() EdgeID {
	return g.m
}

// Degree returns the number of neighbors of u.
func (g *CompressedGraph) Degree(u NodeID) NodeID {
	return NodeID(g.firstEdges.Get(int(u)+1) - g.firstEdges.Get(int(u)))
}

// MaxDegree returns the largest degree in the graph.
func (g *CompressedGraph) MaxDegree() NodeID {
	return g.maxDegree
}

// FirstEdge returns the logical edge ID of the first half-edge leaving u.
func (g *CompressedGraph) FirstEdge(u NodeID) EdgeID {
	return EdgeID(g.firstEdges.Get(int(u)))
}

// NodeWeight returns the weight of u (1 when the graph is unweighted).
func (g *CompressedGraph) NodeWeight(u NodeID) NodeWeight {
	if g.nodeWeights == nil {
		return 1
	}
	return g.nodeWeights[u]
}

// EdgeWeight returns the weight of half-edge e (1 when unweighted).
func (g *CompressedGraph) EdgeWeight(e EdgeID) EdgeWeight {
	if g.edgeWeights == nil {
		return 1
	}
	return g.edgeWeights[e]
}

// TotalNodeWeight returns the sum of all node weights.
func (g *CompressedGraph) TotalNodeWeight() NodeWeight {
	return g.totalNodeWeight
}

// TotalEdgeWeight returns the sum of all edge weights.
func (g *CompressedGraph) TotalEdgeWeight() EdgeWeight {
	return g.totalEdgeWeight
}

// MaxNodeWeight returns the largest node weight.
func (g *CompressedGraph) MaxNodeWeight() NodeWeight {
	return g.maxNodeWeight
}

// Sorted reports whether nodes are ordered by degree buckets.
func (g *CompressedGraph) Sorted() bool {
	return g.sorted
}

// BucketStart returns the prefix count of nodes in buckets < b.
func (g *CompressedGraph) BucketStart(b int) NodeID {
	return g.buckets[b]
}

// NumBuckets returns the number of non-empty leading degree buckets.
func (g *CompressedGraph) NumBuckets() int {
	return g.numBuckets
}

// NumHighDegreeNodes returns the number of part-encoded adjacencies.
func (g *CompressedGraph) NumHighDegreeNodes() NodeID {
	return g.numHighDegreeNodes
}

// NumIntervalNodes returns the number of adjacencies with interval runs.
func (g *CompressedGraph) NumIntervalNodes() NodeID {
	return g.numIntervalNodes
}

// CompressedSize returns the byte size of the encoded edge stream.
func (g *CompressedGraph) CompressedSize() int {
	return len(g.compressedEdges)
}

// Neighbors decodes the adjacency of u in encoding order. Edge IDs are
// assigned consecutively from FirstEdge(u).
func (g *CompressedGraph) Neighbors(u NodeID, yield func(e EdgeID, v NodeID) bool) {
	degree := g.Degree(u)
	if degree == 0 {
		return
	}

	buf := g.compressedEdges[g.offsets.Get(int(u)):g.offsets.Get(int(u)+1)]
	e := EdgeID(g.firstEdges.Get(int(u)))

	if degree >= HighDegreeThreshold {
		g.decodeParts(u, buf, e, yield)
		return
	}
	g.decodeAdjacency(u, degree, buf, e, yield)
}

// decodeParts walks the fixed-size parts of a high-degree adjacency.
func (g *CompressedGraph) decodeParts(u NodeID, buf []byte, e EdgeID, yield func(e EdgeID, v NodeID) bool) {
	for len(buf) > 0 {
		partLen, n := binary.Uvarint(buf)
		buf = buf[n:]

		prev := int64(-1)
		for i := uint64(0); i < partLen; i++ {
			var v int64
			if i == 0 {
				gap, n := binary.Varint(buf)
				buf = buf[n:]
				v = int64(u) + gap
			} else {
				gap, n := binary.Uvarint(buf)
				buf = buf[n:]
				v = prev + int64(gap)
			}
			if !yield(e, NodeID(v)) {
				return
			}
			e++
			prev = v
		}
	}
}

// decodeAdjacency decodes an interval-plus-gap adjacency of known degree.
func (g *CompressedGraph) decodeAdjacency(u NodeID, degree NodeID, buf []byte, e EdgeID, yield func(e EdgeID, v NodeID) bool) {
	remaining := int64(degree)
	prev := int64(-1)
	first := true

	if g.intervalThreshold > 0 {
		intervalCount, n := binary.Uvarint(buf)
		buf = buf[n:]

		for i := uint64(0); i < intervalCount; i++ {
			var start int64
			if first {
				gap, n := binary.Varint(buf)
				buf = buf[n:]
				start = int64(u) + gap
				first = false
			} else {
				gap, n := binary.Uvarint(buf)
				buf = buf[n:]
				start = prev + int64(gap)
			}
			length, n := binary.Uvarint(buf)
			buf = buf[n:]
			runLen := int64(length) + int64(g.intervalThreshold)

			for j := int64(0); j < runLen; j++ {
				if !yield(e, NodeID(start+j)) {
					return
				}
				e++
			}
			prev = start + runLen - 1
			remaining -= runLen
		}
	}

	for i := int64(0); i < remaining; i++ {
		var v int64
		if first {
			gap, n := binary.Varint(buf)
			buf = buf[n:]
			v = int64(u) + gap
			first = false
		} else {
			gap, n := binary.Uvarint(buf)
			buf = buf[n:]
			v = prev + int64(gap)
		}
		if !yield(e, NodeID(v)) {
			return
		}
		e++
		prev = v
	}
}

// RemoveIsolatedNodes restricts the logical node count by the given number
// of trailing isolated nodes without copying.
func (g *CompressedGraph) RemoveIsolatedNodes(isolatedNodes NodeID) {
	if !g.sorted {
		panic("graph: cannot remove isolated nodes from an unsorted graph")
	}
	if isolatedNodes == 0 {
		return
	}

	g.n -= isolatedNodes
	g.offsets.Restrict(int(g.n) + 1)
	g.firstEdges.Restrict(int(g.n) + 1)
	g.updateTotalNodeWeight()

	for b := 1; b < len(g.buckets); b++ {
		g.buckets[b] -= isolatedNodes
	}
	if g.numBuckets == 1 {
		g.numBuckets = 0
	}
}

// IntegrateIsolatedNodes restores the nodes removed by RemoveIsolatedNodes.
func (g *CompressedGraph) IntegrateIsolatedNodes() {
	if !g.sorted {
		panic("graph: cannot integrate isolated nodes into an unsorted graph")
	}

	isolatedNodes := g.fullN - g.n
	g.n = g.fullN
	g.offsets.Unrestrict()
	g.firstEdges.Unrestrict()
	g.updateTotalNodeWeight()

	for b := 1; b < len(g.buckets); b++ {
		g.buckets[b] += isolatedNodes
	}
	if g.numBuckets == 0 {
		g.numBuckets = 1
	}
}

func (g *CompressedGraph) initDegreeBuckets() {
	g.buckets, g.numBuckets, g.maxDegree = computeDegreeBuckets(g.n, g.sorted, g.Degree)
}

func (g *CompressedGraph) updateTotalNodeWeight() {
	if g.nodeWeights == nil {
		g.totalNodeWeight = NodeWeight(g.n)
		g.maxNodeWeight = 1
		return
	}
	weights := g.nodeWeights[:g.n]
	var total, max NodeWeight
	for _, w := range weights {
		total += w
		if w > max {
			max = w
		}
	}
	g.totalNodeWeight = total
	g.maxNodeWeight = max
}
