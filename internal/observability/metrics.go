package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaethering_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gaethering_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthMailsSent counts outbound email auth code mails by result.
	AuthMailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaethering_auth_mails_total",
		Help: "Total number of email auth code mails by result",
	}, []string{"result"})

	// EmailAuthConfirms counts email code confirmations by outcome.
	EmailAuthConfirms = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaethering_email_auth_confirms_total",
		Help: "Total number of email auth code confirmations by outcome",
	}, []string{"outcome"})

	// ImageUploads counts object-store image uploads by kind (profile/board).
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaethering_image_uploads_total",
		Help: "Total number of object-store image uploads by kind",
	}, []string{"kind"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
