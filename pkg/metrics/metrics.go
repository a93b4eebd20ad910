package metrics

import (
	"strconv"
	"time"

	"github.com/dd0wney/cluso-partition/pkg/partition"
)

// RecordInputGraph records the size of the input graph.
func (r *Registry) RecordInputGraph(nodes, edges uint64) {
	r.InputNodesTotal.Set(float64(nodes))
	r.InputEdgesTotal.Set(float64(edges))
}

// RecordCompression records the compressed adjacency size against the raw
// CSR baseline of 4 bytes per half-edge.
func (r *Registry) RecordCompression(compressedBytes int, halfEdges uint64) {
	r.InputCompressedBytes.Set(float64(compressedBytes))
	if halfEdges > 0 {
		r.InputCompressionRatio.Set(float64(compressedBytes) / float64(4*halfEdges))
	}
}

// RecordCoarseningLevel records the size of one hierarchy level.
func (r *Registry) RecordCoarseningLevel(level int, nodes, edges uint64) {
	l := strconv.Itoa(level)
	r.CoarseningLevelNodes.WithLabelValues(l).Set(float64(nodes))
	r.CoarseningLevelEdges.WithLabelValues(l).Set(float64(edges))
}

// RecordCoarsening records the finished coarsening phase.
func (r *Registry) RecordCoarsening(levels int, duration time.Duration) {
	r.CoarseningLevelsTotal.Set(float64(levels))
	r.CoarseningDuration.Observe(duration.Seconds())
}

// RecordInitialPartition records the initial partitioning phase.
func (r *Registry) RecordInitialPartition(cut int64, duration time.Duration) {
	r.InitialPartitionCut.Set(float64(cut))
	r.InitialPartitionDuration.Observe(duration.Seconds())
}

// RecordRefinementPass records one pass of the named refiner.
func (r *Registry) RecordRefinementPass(refiner string, moves int64, duration time.Duration) {
	r.RefinementPassesTotal.WithLabelValues(refiner).Inc()
	r.RefinementMovesTotal.WithLabelValues(refiner).Add(float64(moves))
	r.RefinementPassDuration.WithLabelValues(refiner).Observe(duration.Seconds())
}

// RecordRun records a completed run with its outcome status.
func (r *Registry) RecordRun(status string, duration time.Duration) {
	r.PartitionRunsTotal.WithLabelValues(status).Inc()
	r.PartitionDuration.Observe(duration.Seconds())
}

// RecordPartitionQuality records the final cut, imbalance, feasibility, and
// the block weight distribution summary.
func (r *Registry) RecordPartitionQuality(cut int64, imbalance float64, feasible bool, stats partition.BlockWeightStats) {
	r.PartitionEdgeCut.Set(float64(cut))
	r.PartitionImbalance.Set(imbalance)
	if feasible {
		r.PartitionFeasible.Set(1)
	} else {
		r.PartitionFeasible.Set(0)
	}
	r.PartitionBlockWeightMean.Set(stats.Mean)
	r.PartitionBlockWeightStdev.Set(stats.StdDev)
	r.PartitionBlockWeightMin.Set(stats.Min)
	r.PartitionBlockWeightMax.Set(stats.Max)
}
