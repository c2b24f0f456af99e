package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline Prometheus metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datrieval",
			Name:      "retrieval_requests_total",
			Help:      "Total number of retrieval requests",
		},
		[]string{"strategy", "status"},
	)

	RetrievalAlpha = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "datrieval",
			Name:      "retrieval_alpha",
			Help:      "Distribution of calculated fusion alpha values",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalRequestsTotal)
	prometheus.MustRegister(RetrievalAlpha)
	retrievalMetricsRegistered = true
}
