package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRefinementMetrics() {
	r.RefinementPassesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluso_partition_refinement_passes_total",
			Help: "Number of refinement passes, by refiner",
		},
		[]string{"refiner"},
	)

	r.RefinementMovesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluso_partition_refinement_moves_total",
			Help: "Number of executed node moves, by refiner",
		},
		[]string{"refiner"},
	)

	r.RefinementPassDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cluso_partition_refinement_pass_duration_seconds",
			Help:    "Refinement pass duration, by refiner",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1.0, 10.0},
		},
		[]string{"refiner"},
	)
}
