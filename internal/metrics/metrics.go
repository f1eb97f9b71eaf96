// Package metrics defines the Prometheus collectors for the Grocy
// backend. Collectors register themselves on the default registry and
// are exposed on /metrics via promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests by method, route
	// pattern and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocy_http_requests_total",
			Help: "Number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grocy_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// TripRecomputesTotal counts trip total recomputations. Every item
	// mutation triggers exactly one per affected trip.
	TripRecomputesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grocy_trip_recomputes_total",
			Help: "Number of trip total recomputations performed.",
		},
	)
)
