package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atoll_store_operations_total",
		Help: "Count of store operations by collection, operation and result",
	}, []string{"collection", "operation", "result"})

	storeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atoll_store_operation_duration_seconds",
		Help:    "Duration of store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "operation"})

	sweptRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atoll_swept_event_requests_total",
		Help: "Count of already converted event requests inspected and removed by the sweeper",
	}, []string{"outcome"})

	domainEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atoll_domain_events_total",
		Help: "Count of published domain events by kind and result",
	}, []string{"kind", "result"})
)

// ObserveStoreOperation records a single store round trip.
func ObserveStoreOperation(collection, operation, result string, duration time.Duration) {
	storeOperations.WithLabelValues(collection, operation, result).Inc()
	storeOperationDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
}

// ObserveSweep records the outcome of a sweeper pass.
func ObserveSweep(inspected, removed int) {
	sweptRequests.WithLabelValues("inspected").Add(float64(inspected))
	sweptRequests.WithLabelValues("removed").Add(float64(removed))
}

// ObserveDomainEvent records a publish attempt.
func ObserveDomainEvent(kind, result string) {
	domainEvents.WithLabelValues(kind, result).Inc()
}
