// Package metrics exposes Prometheus instrumentation for the risk engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors. Construct once per
// process and pass by reference.
type Metrics struct {
	AttemptsRecorded  *prometheus.CounterVec
	AuditWriteErrors  prometheus.Counter
	UpsertRetryQueued prometheus.Counter
	UpsertRetryDepth  prometheus.Gauge
	GeoLookupDuration prometheus.Histogram
	GeoLookupFailures prometheus.Counter
	RiskScore         prometheus.Histogram
}

// New registers the engine collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AttemptsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loginwatch",
			Name:      "login_attempts_recorded_total",
			Help:      "Login attempts recorded, by outcome and risk level.",
		}, []string{"outcome", "risk_level"}),
		AuditWriteErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loginwatch",
			Name:      "audit_write_errors_total",
			Help:      "Audit inserts that failed after retry and were swallowed.",
		}),
		UpsertRetryQueued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loginwatch",
			Name:      "device_upsert_retries_queued_total",
			Help:      "UserDevice upserts handed to the background retry worker.",
		}),
		UpsertRetryDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "loginwatch",
			Name:      "device_upsert_retry_queue_depth",
			Help:      "Current depth of the aggregate retry queue.",
		}),
		GeoLookupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loginwatch",
			Name:      "geo_lookup_duration_seconds",
			Help:      "Latency of geolocation provider lookups.",
			Buckets:   prometheus.DefBuckets,
		}),
		GeoLookupFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loginwatch",
			Name:      "geo_lookup_failures_total",
			Help:      "Geolocation lookups degraded to the unknown result.",
		}),
		RiskScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loginwatch",
			Name:      "risk_score",
			Help:      "Distribution of computed risk scores.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		}),
	}
}

// NewDefault registers on the default Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
