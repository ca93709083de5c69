package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics records publisher and consumer progress for domain events.
type OutboxMetrics struct {
	publishDuration *prometheus.HistogramVec
	published       *prometheus.CounterVec
	failed          *prometheus.CounterVec
	consumed        *prometheus.CounterVec
}

// NewOutboxMetrics registers the outbox metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	publishDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_publish_duration_seconds",
		Help:    "Duration of individual outbox publish attempts.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events successfully published.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox publish attempts that failed.",
	}, []string{"event_type"})
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_events_consumed_total",
		Help: "Domain events consumed by the notification worker.",
	}, []string{"event_type", "outcome"})
	reg.MustRegister(publishDuration, published, failed, consumed)
	return &OutboxMetrics{
		publishDuration: publishDuration,
		published:       published,
		failed:          failed,
		consumed:        consumed,
	}
}

// ObservePublish records one publish attempt for the event type.
func (m *OutboxMetrics) ObservePublish(eventType string, duration time.Duration) {
	if m == nil || m.publishDuration == nil {
		return
	}
	m.publishDuration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncPublished increments the published counter for the event type.
func (m *OutboxMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the failure counter for the event type.
func (m *OutboxMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncConsumed increments the consumption counter with the given outcome.
func (m *OutboxMetrics) IncConsumed(eventType, outcome string) {
	if m == nil || m.consumed == nil {
		return
	}
	m.consumed.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
