package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Lifecycle operations by outcome (ok or the error kind).
	TransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contract_transition_total",
			Help: "Contract lifecycle operations by outcome",
		},
		[]string{"operation", "result"},
	)

	// Optimistic version conflicts, including ones absorbed by a retry.
	VersionConflictCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contract_version_conflict_total",
			Help: "Version conflicts on contract and transaction writes",
		},
		[]string{"operation"},
	)

	ProcessorCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_processor_call_duration_seconds",
			Help:    "Payment processor call latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"call", "result"},
	)

	EscrowAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_amount_minor_total",
			Help: "Escrow money movement in minor currency units",
		},
		[]string{"currency", "movement"}, // movement: held, released, refunded
	)

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Notification deliveries that failed and were dropped",
		},
		[]string{"channel"},
	)
)

func RecordTransition(operation, result string) {
	TransitionCount.WithLabelValues(operation, result).Inc()
}

func RecordVersionConflict(operation string) {
	VersionConflictCount.WithLabelValues(operation).Inc()
}

func RecordProcessorCall(call, result string, duration time.Duration) {
	ProcessorCallLatency.WithLabelValues(call, result).Observe(duration.Seconds())
}

func RecordEscrowMovement(currency, movement string, amount int64) {
	EscrowAmount.WithLabelValues(currency, movement).Add(float64(amount))
}

func RecordNotificationFailure(channel string) {
	NotificationFailures.WithLabelValues(channel).Inc()
}
