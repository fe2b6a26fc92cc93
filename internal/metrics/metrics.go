package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestTotal counts HTTP requests by method, route template and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "editdesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// OperationsTotal counts Access Layer operations by outcome kind ("ok" on success).
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editdesk_operations_total",
			Help: "Total number of access layer operations",
		},
		[]string{"operation", "outcome"},
	)
	// TransitionsTotal counts applied project status changes.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editdesk_status_transitions_total",
			Help: "Total number of applied project status transitions",
		},
		[]string{"from", "to"},
	)
	// OrphanedObjectsTotal counts uploads whose bytes were stored but whose metadata insert failed.
	OrphanedObjectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "editdesk_orphaned_objects_total",
			Help: "Stored objects left without a metadata row",
		},
	)
)

func ObserveOperation(operation, outcome string) {
	if outcome == "" {
		outcome = "ok"
	}
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func ObserveTransition(from, to string) {
	TransitionsTotal.WithLabelValues(from, to).Inc()
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
