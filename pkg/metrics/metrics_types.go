// Package metrics exposes the partitioner's Prometheus instrumentation: one
// registry covering input, coarsening, initial partitioning, refinement, and
// final partition quality.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics of the partitioner.
type Registry struct {
	// Input graph
	InputNodesTotal       prometheus.Gauge
	InputEdgesTotal       prometheus.Gauge
	InputCompressedBytes  prometheus.Gauge
	InputCompressionRatio prometheus.Gauge

	// Coarsening
	CoarseningLevelsTotal prometheus.Gauge
	CoarseningLevelNodes  *prometheus.GaugeVec
	CoarseningLevelEdges  *prometheus.GaugeVec
	CoarseningDuration    prometheus.Histogram

	// Initial partitioning
	InitialPartitionDuration prometheus.Histogram
	InitialPartitionCut      prometheus.Gauge

	// Refinement
	RefinementPassesTotal  *prometheus.CounterVec
	RefinementMovesTotal   *prometheus.CounterVec
	RefinementPassDuration *prometheus.HistogramVec

	// Partition quality
	PartitionRunsTotal        *prometheus.CounterVec
	PartitionDuration         prometheus.Histogram
	PartitionEdgeCut          prometheus.Gauge
	PartitionImbalance        prometheus.Gauge
	PartitionFeasible         prometheus.Gauge
	PartitionBlockWeightMean  prometheus.Gauge
	PartitionBlockWeightStdev prometheus.Gauge
	PartitionBlockWeightMin   prometheus.Gauge
	PartitionBlockWeightMax   prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initGraphMetrics()
	r.initCoarseningMetrics()
	r.initRefinementMetrics()
	r.initPartitionMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
