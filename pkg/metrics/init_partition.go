package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPartitionMetrics() {
	r.InitialPartitionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cluso_partition_initial_duration_seconds",
			Help:    "Wall time of initial partitioning on the coarsest graph",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1.0, 10.0},
		},
	)

	r.InitialPartitionCut = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_initial_cut",
			Help: "Edge cut of the initial partition on the coarsest graph",
		},
	)

	r.PartitionRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluso_partition_runs_total",
			Help: "Number of partitioning runs, by outcome",
		},
		[]string{"status"},
	)

	r.PartitionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cluso_partition_duration_seconds",
			Help:    "End-to-end partitioning wall time",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0, 600.0},
		},
	)

	r.PartitionEdgeCut = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_edge_cut",
			Help: "Edge cut of the final partition",
		},
	)

	r.PartitionImbalance = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_imbalance",
			Help: "Relative imbalance of the final partition",
		},
	)

	r.PartitionFeasible = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_feasible",
			Help: "1 when every block respects its weight cap, otherwise 0",
		},
	)

	r.PartitionBlockWeightMean = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_block_weight_mean",
			Help: "Mean block weight of the final partition",
		},
	)

	r.PartitionBlockWeightStdev = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_block_weight_stddev",
			Help: "Block weight standard deviation of the final partition",
		},
	)

	r.PartitionBlockWeightMin = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_block_weight_min",
			Help: "Smallest block weight of the final partition",
		},
	)

	r.PartitionBlockWeightMax = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_block_weight_max",
			Help: "Largest block weight of the final partition",
		},
	)
}
