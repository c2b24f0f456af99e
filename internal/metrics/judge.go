package metrics

import "github.com/prometheus/client_golang/prometheus"

// Judge (LLM evaluator) Prometheus metrics.
var (
	JudgeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datrieval",
			Name:      "judge_requests_total",
			Help:      "Total number of judge completion requests",
		},
		[]string{"model", "status"},
	)

	JudgeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "datrieval",
			Name:      "judge_request_duration_seconds",
			Help:      "Judge completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	JudgeTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datrieval",
			Name:      "judge_tokens_total",
			Help:      "Total judge tokens consumed",
		},
		[]string{"model", "type"},
	)
)

var judgeMetricsRegistered bool

// RegisterJudgeMetrics registers Prometheus judge metrics. Must be called once from main.
func RegisterJudgeMetrics() {
	if judgeMetricsRegistered {
		return
	}
	prometheus.MustRegister(JudgeRequestsTotal)
	prometheus.MustRegister(JudgeRequestDuration)
	prometheus.MustRegister(JudgeTokensTotal)
	judgeMetricsRegistered = true
}
