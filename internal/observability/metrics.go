package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	storeOpsTotal       *prometheus.CounterVec
	storeLatencySeconds *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors for the store and the local API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		storeOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turmas_store_operations_total",
			Help: "Key-value store operations by operation and outcome.",
		}, []string{"op", "outcome"})

		storeLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "turmas_store_latency_seconds",
			Help:    "Latency distribution for key-value store operations.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"op"})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turmas_http_requests_total",
			Help: "Total number of local API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "turmas_http_latency_seconds",
			Help:    "Latency distribution for local API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(storeOpsTotal, storeLatencySeconds, httpRequestsTotal, httpLatencySeconds)
	})
}

// StoreOperations exposes the store operation counter.
func StoreOperations() *prometheus.CounterVec {
	RegisterMetrics()
	return storeOpsTotal
}

// StoreLatency exposes the store latency histogram.
func StoreLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return storeLatencySeconds
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}
