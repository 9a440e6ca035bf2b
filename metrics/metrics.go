// Package metrics provides Prometheus metrics for the contributions service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "contribgraph"

var (
	// fetchTotal counts upstream lookups by outcome kind
	// (success, not_found, transport_error).
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "fetch_total",
			Help:      "Total number of contribution fetches against the GraphQL API, by outcome",
		},
		[]string{"outcome"},
	)

	fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of contribution fetches against the GraphQL API",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	rateLimitRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "rate_limit_remaining",
			Help:      "Remaining GraphQL rate limit reported by the last response",
		},
	)

	// cacheLookups counts cache lookups by result (fresh, stale, miss).
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of contribution cache lookups, by result",
		},
		[]string{"result"},
	)

	cacheErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Total number of cache store failures, by operation",
		},
		[]string{"operation"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served, by route and status",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests served, by route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal, fetchDuration, rateLimitRemaining)
	prometheus.MustRegister(cacheLookups, cacheErrors)
	prometheus.MustRegister(httpRequests, httpDuration)
}

// RecordFetch records the outcome and latency of one upstream fetch
func RecordFetch(outcome string, elapsed time.Duration) {
	fetchTotal.WithLabelValues(outcome).Inc()
	fetchDuration.Observe(elapsed.Seconds())
}

// RecordRateLimit stores the remaining upstream rate limit
func RecordRateLimit(remaining int) {
	rateLimitRemaining.Set(float64(remaining))
}

// RecordCacheLookup records a cache lookup result: fresh, stale or miss
func RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheError records a failed cache store operation
func RecordCacheError(operation string) {
	cacheErrors.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records one served HTTP request
func RecordHTTPRequest(route, method, status string, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, status).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
