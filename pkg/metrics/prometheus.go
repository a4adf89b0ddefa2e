package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	recommendations  *prometheus.CounterVec
	recommendedPrice *prometheus.GaugeVec
	quotesIngested   *prometheus.CounterVec
	messagesSent     *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		recommendations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuelpilot_recommendations_total",
				Help: "Total number of price recommendations produced",
			},
			[]string{"product", "guardrail_applied"},
		),
		recommendedPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fuelpilot_recommended_price",
				Help: "Most recent recommended price per product",
			},
			[]string{"product"},
		),
		quotesIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuelpilot_quotes_received_total",
				Help: "Total number of competitor quotes read from the feed",
			},
			[]string{"source"},
		),
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuelpilot_messages_sent_total",
				Help: "Total number of messages sent to backend",
			},
			[]string{"backend", "product"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuelpilot_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fuelpilot_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRecommendation counts one finished pricing pass.
func (r *Recorder) RecordRecommendation(product string, guardrailApplied bool) {
	r.recommendations.WithLabelValues(product, strconv.FormatBool(guardrailApplied)).Inc()
}

// RecordRecommendedPrice records the latest recommended price for a product.
func (r *Recorder) RecordRecommendedPrice(product string, price float64) {
	r.recommendedPrice.WithLabelValues(product).Set(price)
}

// RecordQuote counts one quote read from a competitor source.
func (r *Recorder) RecordQuote(source string) {
	r.quotesIngested.WithLabelValues(source).Inc()
}

// RecordMessageSent records a message sent to a backend.
func (r *Recorder) RecordMessageSent(backend, product string) {
	r.messagesSent.WithLabelValues(backend, product).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
