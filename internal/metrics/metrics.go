// Package metrics holds the Prometheus collectors for outbound API traffic and query runs.
// A CLI invocation is short-lived, so instead of serving /metrics the collected values can be
// written to a node-exporter textfile with WriteTextfile.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xdrq_http_requests_total",
			Help: "Total number of HTTP requests sent to the identity and query services.",
		},
		[]string{"method", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xdrq_http_request_duration_seconds",
			Help:    "HTTP request latency by method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	pollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "xdrq_query_poll_attempts",
			Help:    "Number of status polls needed before an execution finished.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60},
		},
	)

	queryRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xdrq_query_runs_total",
			Help: "Total number of query runs by outcome.",
		},
		[]string{"outcome"},
	)
)

// Query run outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeError     = "error"
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		pollAttempts,
		queryRunsTotal,
	)
}

// ObserveRequest records one HTTP round trip. status is 0 for transport failures.
func ObserveRequest(method string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	httpRequestsTotal.WithLabelValues(method, label).Inc()
	httpRequestDurationSeconds.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObservePollAttempts records how many polls a finished execution needed.
func ObservePollAttempts(n int) {
	pollAttempts.Observe(float64(n))
}

// IncQueryRun counts a query run with the given outcome.
func IncQueryRun(outcome string) {
	queryRunsTotal.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes every registered metric to path in the Prometheus text format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
