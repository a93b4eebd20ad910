package graph

import "encoding/binary"

// CompressedGraphBuilder encodes sorted adjacencies into the byte stream of
// a CompressedGraph. Adjacencies must be added in node order with neighbor
// IDs ascending. Interval extraction reorders each adjacency so that runs
// form a prefix; per-edge weights are stored in that decode order.
type CompressedGraphBuilder struct {
	intervalThreshold NodeID

	stream      []byte
	offsets     []uint64
	degrees     []NodeID
	edgeWeights []EdgeWeight
	nodeWeights []NodeWeight

	maxDegree NodeID
	m         EdgeID

	numHighDegreeNodes NodeID
	numHighDegreeParts NodeID
	numIntervalNodes   NodeID
	numIntervals       NodeID

	weighted bool
	sorted   bool
}

// NewCompressedGraphBuilder creates a builder for a graph of n nodes.
// intervalThreshold is the minimum run length stored as an interval; zero
// disables interval encoding. sorted declares degree-bucket node order.
func NewCompressedGraphBuilder(n NodeID, weighted bool, sorted bool, intervalThreshold NodeID) *CompressedGraphBuilder {
	b := &CompressedGraphBuilder{
		intervalThreshold: intervalThreshold,
		offsets:           make([]uint64, 1, n+1),
		degrees:           make([]NodeID, 0, n),
		weighted:          weighted,
		sorted:            sorted,
	}
	return b
}

// AddNode encodes the adjacency of the next node. neighbors must be sorted
// ascending; weights parallels neighbors and may be nil for unit weights.
func (b *CompressedGraphBuilder) AddNode(u NodeID, neighbors []NodeID, weights []EdgeWeight) {
	degree := NodeID(len(neighbors))
	b.degrees = append(b.degrees, degree)
	b.m += EdgeID(degree)
	if degree > b.maxDegree {
		b.maxDegree = degree
	}

	switch {
	case degree == 0:
	case degree >= HighDegreeThreshold:
		b.numHighDegreeNodes++
		b.encodeParts(u, neighbors)
		if b.weighted {
			b.edgeWeights = append(b.edgeWeights, weights...)
		}
	default:
		b.encodeAdjacency(u, neighbors, weights)
	}

	b.offsets = append(b.offsets, uint64(len(b.stream)))
}

// SetNodeWeights attaches the node weight array; nil means unit weights.
func (b *CompressedGraphBuilder) SetNodeWeights(weights []NodeWeight) {
	b.nodeWeights = weights
}

// encodeParts splits a high-degree adjacency into fixed-length parts, each
// gap-encoded independently so decoding can resume at part boundaries.
func (b *CompressedGraphBuilder) encodeParts(u NodeID, neighbors []NodeID) {
	for start := 0; start < len(neighbors); start += HighDegreePartLength {
		end := start + HighDegreePartLength
		if end > len(neighbors) {
			end = len(neighbors)
		}
		part := neighbors[start:end]
		b.numHighDegreeParts++

		b.stream = binary.AppendUvarint(b.stream, uint64(len(part)))
		b.stream = binary.AppendVarint(b.stream, int64(part[0])-int64(u))
		for i := 1; i < len(part); i++ {
			b.stream = binary.AppendUvarint(b.stream, uint64(part[i]-part[i-1]))
		}
	}
}

// encodeAdjacency extracts interval runs of length >= intervalThreshold into
// a prefix and gap-encodes the leftover neighbors.
func (b *CompressedGraphBuilder) encodeAdjacency(u NodeID, neighbors []NodeID, weights []EdgeWeight) {
	// first/prev thread the gap-encoding state across intervals and
	// leftovers: the first emitted ID is a signed gap vs u, everything
	// after is an unsigned gap vs the previously emitted ID.
	first := true
	prev := int64(-1)

	emitFirst := func(v NodeID) {
		b.stream = binary.AppendVarint(b.stream, int64(v)-int64(u))
		first = false
	}

	if b.intervalThreshold == 0 {
		for i, v := range neighbors {
			if i == 0 {
				emitFirst(v)
			} else {
				b.stream = binary.AppendUvarint(b.stream, uint64(v-neighbors[i-1]))
			}
		}
		if b.weighted {
			b.edgeWeights = append(b.edgeWeights, weights...)
		}
		return
	}

	runStarts, runLens, leftovers := splitIntervals(neighbors, b.intervalThreshold)

	b.stream = binary.AppendUvarint(b.stream, uint64(len(runStarts)))
	for i := range runStarts {
		start := runStarts[i]
		length := runLens[i]
		if first {
			emitFirst(start)
		} else {
			b.stream = binary.AppendUvarint(b.stream, uint64(int64(start)-prev))
		}
		b.stream = binary.AppendUvarint(b.stream, uint64(length-b.intervalThreshold))
		prev = int64(start) + int64(length) - 1
	}
	if len(runStarts) > 0 {
		b.numIntervalNodes++
		b.numIntervals += NodeID(len(runStarts))
	}

	for _, i := range leftovers {
		v := neighbors[i]
		if first {
			emitFirst(v)
		} else {
			b.stream = binary.AppendUvarint(b.stream, uint64(int64(v)-prev))
		}
		prev = int64(v)
	}

	if b.weighted {
		// Weights follow decode order: run members first, then leftovers.
		i := 0
		for r := range runStarts {
			for ; i < len(neighbors) && neighbors[i] < runStarts[r]; i++ {
			}
			for j := NodeID(0); j < runLens[r]; j++ {
				b.edgeWeights = append(b.edgeWeights, weights[i])
				i++
			}
		}
		for _, idx := range leftovers {
			b.edgeWeights = append(b.edgeWeights, weights[idx])
		}
	}
}

// splitIntervals finds maximal runs of consecutive IDs with length at least
// threshold. Returns the run starts and lengths plus the indices of the
// neighbors outside any run.
func splitIntervals(neighbors []NodeID, threshold NodeID) (runStarts []NodeID, runLens []NodeID, leftovers []int) {
	i := 0
	for i < len(neighbors) {
		j := i + 1
		for j < len(neighbors) && neighbors[j] == neighbors[j-1]+1 {
			j++
		}
		if NodeID(j-i) >= threshold {
			runStarts = append(runStarts, neighbors[i])
			runLens = append(runLens, NodeID(j-i))
		} else {
			for k := i; k < j; k++ {
				leftovers = append(leftovers, k)
			}
		}
		i = j
	}
	return runStarts, runLens, leftovers
}

// Build assembles the compressed graph. The builder must not be reused.
func (b *CompressedGraphBuilder) Build() *CompressedGraph {
	n := NodeID(len(b.degrees))

	maxOffset := uint64(len(b.stream))
	offsets := NewCompactArray(len(b.offsets), maxOffset)
	for i, off := range b.offsets {
		offsets.Set(i, off)
	}

	firstEdges := NewCompactArray(int(n)+1, uint64(b.m))
	var acc uint64
	for i, deg := range b.degrees {
		firstEdges.Set(i, acc)
		acc += uint64(deg)
	}
	firstEdges.Set(int(n), acc)

	g := &CompressedGraph{
		offsets:            offsets,
		firstEdges:         firstEdges,
		compressedEdges:    b.stream,
		nodeWeights:        b.nodeWeights,
		edgeWeights:        b.edgeWeights,
		m:                  b.m,
		maxDegree:          b.maxDegree,
		intervalThreshold:  b.intervalThreshold,
		sorted:             b.sorted,
		numHighDegreeNodes: b.numHighDegreeNodes,
		numHighDegreeParts: b.numHighDegreeParts,
		numIntervalNodes:   b.numIntervalNodes,
		numIntervals:       b.numIntervals,
		n:                  n,
		fullN:              n,
	}
	if !b.weighted {
		g.edgeWeights = nil
	}

	g.updateTotalNodeWeight()
	if g.edgeWeights == nil {
		g.totalEdgeWeight = EdgeWeight(g.m)
	} else {
		var total EdgeWeight
		for _, w := range g.edgeWeights {
			total += w
		}
		g.totalEdgeWeight = total
	}

	g.initDegreeBuckets()
	return g
}

// CompressCSR encodes an existing CSR graph. Adjacencies are assumed sorted
// ascending per node, as produced by the graph readers.
func CompressCSR(csr *CSRGraph, intervalThreshold NodeID) *CompressedGraph {
	weighted := csr.edgeWeights != nil
	b := NewCompressedGraphBuilder(csr.N(), weighted, csr.Sorted(), intervalThreshold)

	for u := NodeID(0); u < csr.N(); u++ {
		neighbors := csr.RawEdges(u)
		var weights []EdgeWeight
		if weighted {
			weights = csr.edgeWeights[csr.nodes[u]:csr.nodes[u+1]]
		}
		b.AddNode(u, neighbors, weights)
	}
	b.SetNodeWeights(csr.nodeWeights)

	return b.Build()
}
