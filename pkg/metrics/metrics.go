// Package metrics exposes Prometheus instrumentation for the client runtime.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "armclient_requests_total",
		Help: "Total number of HTTP requests by method and status code",
	}, []string{"method", "status"})

	requestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "armclient_request_duration_seconds",
		Help:    "HTTP request duration by method",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method"})

	pollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "armclient_operation_polls_total",
		Help: "Total number of operation status polls by convention and resulting state",
	}, []string{"convention", "state"})

	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "armclient_pages_fetched_total",
		Help: "Total number of list pages fetched",
	})

	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "armclient_cache_requests_total",
		Help: "Total number of response cache lookups by outcome",
	}, []string{"outcome"})
)

// RecordRequest records one completed HTTP request.
func RecordRequest(method string, statusCode int, duration time.Duration) {
	requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	requestDurationSeconds.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordPoll records one operation status poll.
func RecordPoll(convention, state string) {
	pollsTotal.WithLabelValues(convention, state).Inc()
}

// RecordPage records one fetched list page.
func RecordPage() {
	pagesFetchedTotal.Inc()
}

// RecordCacheLookup records a response cache lookup outcome ("hit" or "miss").
func RecordCacheLookup(outcome string) {
	cacheHitsTotal.WithLabelValues(outcome).Inc()
}
