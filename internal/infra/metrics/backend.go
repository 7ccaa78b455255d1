package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(backendRequestsTotal, backendRequestDuration)
}

var (
	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "CMS API calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	backendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "CMS API call latency.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"op"},
	)
)

func ObserveBackendCall(op string, ok bool, took time.Duration) {
	backendRequestsTotal.WithLabelValues(norm(op), outcome(ok)).Inc()
	backendRequestDuration.WithLabelValues(norm(op)).Observe(took.Seconds())
}
