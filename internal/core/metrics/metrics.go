package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	aggregateOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "user_aggregate_operations_total", Help: "Count of aggregate store operations"},
		[]string{"op", "status"},
	)
	aggregateOpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_aggregate_operation_duration_seconds",
			Help:    "Latency of aggregate store operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"},
	)
)

func init() { prometheus.MustRegister(aggregateOpsTotal, aggregateOpLatency) }

// Aggregate records store operations on the default registry.
type Aggregate struct{}

func (Aggregate) ObserveOperation(op, status string, dur time.Duration) {
	aggregateOpsTotal.WithLabelValues(op, status).Inc()
	aggregateOpLatency.WithLabelValues(op).Observe(dur.Seconds())
}
