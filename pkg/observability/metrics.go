// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the moodlog server.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LLMBuckets defines histogram buckets suited for LLM round trips,
// ranging from 100ms to 30s. Provider calls time out after 10s by default.
var LLMBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodlog_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodlog_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method"},
	)

	// ProviderRequestsTotal counts assistant tasks sent to the LLM provider.
	// outcome is "ok" or the failure kind.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodlog_provider_requests_total",
			Help: "Provider requests",
		},
		[]string{"task", "model", "outcome"},
	)

	// ProviderLatency records provider task latency in seconds.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodlog_provider_latency_seconds",
			Help:    "Provider latency",
			Buckets: LLMBuckets,
		},
		[]string{"task", "model"},
	)

	// EntriesCreatedTotal counts stored diary entries by mood.
	EntriesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodlog_entries_created_total",
			Help: "Diary entries created",
		},
		[]string{"mood"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		ProviderRequestsTotal,
		ProviderLatency,
		EntriesCreatedTotal,
	)
}

// ObserveProvider records one assistant task. Its signature matches
// assist.Observer.
func ObserveProvider(task, model, outcome string, elapsed time.Duration) {
	ProviderRequestsTotal.WithLabelValues(task, model, outcome).Inc()
	ProviderLatency.WithLabelValues(task, model).Observe(elapsed.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
