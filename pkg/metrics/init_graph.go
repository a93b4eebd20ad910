package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.InputNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_input_nodes_total",
			Help: "Number of nodes in the input graph",
		},
	)

	r.InputEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_input_edges_total",
			Help: "Number of undirected edges in the input graph",
		},
	)

	r.InputCompressedBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_input_compressed_bytes",
			Help: "Size of the compressed adjacency encoding in bytes",
		},
	)

	r.InputCompressionRatio = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_input_compression_ratio",
			Help: "Compressed adjacency bytes relative to the raw CSR encoding",
		},
	)
}

func (r *Registry) initCoarseningMetrics() {
	r.CoarseningLevelsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_partition_coarsening_levels_total",
			Help: "Depth of the coarsening hierarchy built in the last run",
		},
	)

	r.CoarseningLevelNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cluso_partition_coarsening_level_nodes",
			Help: "Number of nodes per coarsening level",
		},
		[]string{"level"},
	)

	r.CoarseningLevelEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cluso_partition_coarsening_level_edges",
			Help: "Number of undirected edges per coarsening level",
		},
		[]string{"level"},
	)

	r.CoarseningDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cluso_partition_coarsening_duration_seconds",
			Help:    "Wall time of the coarsening phase",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
		},
	)
}
