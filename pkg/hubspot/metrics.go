package hubspot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for API requests. Every transport attempt is observable
// here even though retries are handled inside the client.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubexport_requests_total",
		Help: "Total number of API requests by endpoint and HTTP status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hubexport_request_duration_seconds",
		Help:    "API request duration by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"endpoint"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubexport_retries_total",
		Help: "Total number of retry attempts by endpoint",
	}, []string{"endpoint"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubexport_retry_exhausted_total",
		Help: "Total number of requests that exhausted the retry budget",
	}, []string{"endpoint"})
)
