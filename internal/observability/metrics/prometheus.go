// Package metrics provides Prometheus metrics for the claims platform.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	SubmissionsEncoded    *prometheus.CounterVec
	SubmissionsFailed     prometheus.Counter
	ResponsesDecoded      *prometheus.CounterVec
	CancellationsSent     prometheus.Counter
	EncodingDuration      prometheus.Histogram
	ActiveSubmissions     prometheus.Gauge
	KafkaMessagesProduced prometheus.Counter
	KafkaMessagesConsumed prometheus.Counter
	OutboxPending         prometheus.Gauge
	CircuitBreakerState   *prometheus.GaugeVec
}

// New creates and registers all metrics
func New() *Metrics {
	m := &Metrics{
		SubmissionsEncoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claim_submissions_encoded_total",
			Help: "Total claim/prior-auth bundles encoded",
		}, []string{"category", "use"}),
		SubmissionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "claim_submissions_failed_total",
			Help: "Total failed claim submissions",
		}),
		ResponsesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claim_responses_decoded_total",
			Help: "Total adjudication responses decoded",
		}, []string{"outcome"}),
		CancellationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "claim_cancellations_total",
			Help: "Total cancellation requests encoded",
		}),
		EncodingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "claim_encoding_duration_seconds",
			Help:    "Bundle encoding duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		ActiveSubmissions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "claim_submissions_active",
			Help: "Submissions awaiting adjudication",
		}),
		KafkaMessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kafka_messages_produced_total",
			Help: "Total Kafka messages produced",
		}),
		KafkaMessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Total Kafka messages consumed",
		}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending_entries",
			Help: "Pending outbox entries",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	prometheus.MustRegister(
		m.SubmissionsEncoded,
		m.SubmissionsFailed,
		m.ResponsesDecoded,
		m.CancellationsSent,
		m.EncodingDuration,
		m.ActiveSubmissions,
		m.KafkaMessagesProduced,
		m.KafkaMessagesConsumed,
		m.OutboxPending,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
