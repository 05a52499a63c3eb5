package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "takopi_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StorageOpLatency records storage backend operation latency by backend,
	// entity and operation.
	StorageOpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "takopi_storage_op_latency_seconds",
		Help:    "Storage backend operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "entity", "operation"})

	// ToggleOutcomes counts toggle use-case results by entity and outcome.
	ToggleOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "takopi_toggle_outcomes_total",
		Help: "Toggle use-case outcomes (created or removed) by entity",
	}, []string{"entity", "outcome"})
)

// TrackStorageOp returns a function that records storage operation latency
// when called (e.g. via defer).
func TrackStorageOp(backend, entity, operation string) func() {
	start := time.Now()
	return func() {
		StorageOpLatency.WithLabelValues(backend, entity, operation).Observe(time.Since(start).Seconds())
	}
}
