package graph

import (
	"math"
	"math/bits"
	"runtime"
)

// defaultWorkers bounds the concurrency of graph construction helpers.
func defaultWorkers() int {
	return runtime.NumCPU()
}

// NodeID identifies a node in [0, n).
type NodeID = uint32

// EdgeID identifies a directed half-edge in [0, m).
type EdgeID = uint32

// BlockID identifies a partition block in [0, k).
type BlockID = uint32

// ClusterID identifies a label-propagation cluster.
type ClusterID = uint32

// NodeWeight is a signed node weight. Sums over all nodes must fit.
type NodeWeight = int64

// EdgeWeight is a signed edge weight. Weighted-degree sums must fit.
type EdgeWeight = int64

const (
	// InvalidNodeID marks an unset node slot.
	InvalidNodeID NodeID = math.MaxUint32

	// InvalidEdgeID marks an unset edge slot.
	InvalidEdgeID EdgeID = math.MaxUint32

	// InvalidBlockID marks an unset block slot.
	InvalidBlockID BlockID = math.MaxUint32

	// InvalidClusterID marks an unset cluster slot.
	InvalidClusterID ClusterID = math.MaxUint32
)

// NumDegreeBuckets is the number of exponential degree buckets: bucket b
// holds nodes with degree in [2^(b-1), 2^b); isolated nodes form bucket 0.
const NumDegreeBuckets = 33

// DegreeBucket returns the bucket index for the given degree.
func DegreeBucket(degree NodeID) int {
	return bits.Len32(degree)
}

// Graph is the read-only view shared by the plain CSR and the compressed
// representation. Neighbor iteration stops early when yield returns false.
type Graph interface {
	N() NodeID
	M() EdgeID

	Degree(u NodeID) NodeID
	MaxDegree() NodeID

	Neighbors(u NodeID, yield func(e EdgeID, v NodeID) bool)

	NodeWeight(u NodeID) NodeWeight
	EdgeWeight(e EdgeID) EdgeWeight
	TotalNodeWeight() NodeWeight
	TotalEdgeWeight() EdgeWeight
	MaxNodeWeight() NodeWeight

	// Sorted reports whether nodes are ordered by degree buckets.
	Sorted() bool
	// BucketStart returns the prefix count of nodes in buckets < b.
	BucketStart(b int) NodeID
	NumBuckets() int
}
