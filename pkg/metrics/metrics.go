package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by account kind and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dumumtergo_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"account", "result"},
	)

	// RealtimeConnections tracks the number of live websocket connections in the registry.
	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dumumtergo_realtime_connections",
			Help: "Number of registered realtime connections",
		},
	)

	// NotificationDeliveries counts notify outcomes (delivered|offline|error).
	NotificationDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dumumtergo_notification_deliveries_total",
			Help: "Total number of realtime notification delivery attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dumumtergo_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// RecordAuthAttempt increments the auth attempt counter for the account kind.
func RecordAuthAttempt(account, result string) {
	AuthAttempts.WithLabelValues(account, result).Inc()
}
