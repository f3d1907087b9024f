package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Similarity search Prometheus metrics.
var (
	SimilarityRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamesim",
			Name:      "similarity_requests_total",
			Help:      "Similarity tool invocations by outcome (ok or an error code)",
		},
		[]string{"operation", "entity_type", "outcome"},
	)

	SimilarityRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamesim",
			Name:      "similarity_request_duration_seconds",
			Help:      "Similarity tool latency in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	SimilarityResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamesim",
			Name:      "similarity_results",
			Help:      "Number of results returned per successful call",
			Buckets:   []float64{0, 1, 5, 10, 20, 30, 50},
		},
		[]string{"operation"},
	)

	SimilarityBoostSignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamesim",
			Name:      "similarity_boost_signals_total",
			Help:      "Boost signals applied to returned game results",
		},
		[]string{"signal"},
	)
)

var registerSimilarityOnce sync.Once

// RegisterSimilarityMetrics registers the similarity metrics. Safe to call more than once.
func RegisterSimilarityMetrics() {
	registerSimilarityOnce.Do(func() {
		prometheus.MustRegister(SimilarityRequestsTotal)
		prometheus.MustRegister(SimilarityRequestDuration)
		prometheus.MustRegister(SimilarityResults)
		prometheus.MustRegister(SimilarityBoostSignalsTotal)
	})
}
