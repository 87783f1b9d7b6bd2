package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	refineryBuildTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refinery_build_total",
			Help: "Number of model builds by outcome.",
		},
		[]string{"outcome"},
	)

	refineryBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refinery_build_duration_seconds",
			Help:    "Time taken to assemble a model.",
			Buckets: prometheus.DefBuckets,
		},
	)

	refineryModelVariables = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "refinery_model_variables",
			Help: "Number of variables in the last assembled model.",
		},
	)

	refineryModelConstraints = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "refinery_model_constraints",
			Help: "Number of constraints in the last assembled model by family.",
		},
		[]string{"family"},
	)

	refinerySolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refinery_solve_total",
			Help: "Number of solves by solver and termination status.",
		},
		[]string{"solver", "status"},
	)

	refinerySolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refinery_solve_duration_seconds",
			Help:    "Time taken by the solver.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
		[]string{"solver"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		refineryBuildTotal,
		refineryBuildDuration,
		refineryModelVariables,
		refineryModelConstraints,
		refinerySolveTotal,
		refinerySolveDuration,
	)
}

// WriteMetrics writes the current metrics in the Prometheus text format, e.g., for the node
// exporter textfile collector.
func WriteMetrics(filename string) error {
	return prometheus.WriteToTextfile(filename, metrics.Registry)
}
