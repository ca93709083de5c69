package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutboxMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)

	m.IncPublished("order.created")
	m.IncPublished("order.created")
	m.IncFailed("order.created")
	m.IncConsumed("order.created", "ack")
	m.ObservePublish("order.created", 25*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.published.WithLabelValues("order.created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.failed.WithLabelValues("order.created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.consumed.WithLabelValues("order.created", "ack")))
}

func TestOutboxMetricsNilSafe(t *testing.T) {
	var m *OutboxMetrics
	assert.NotPanics(t, func() {
		m.IncPublished("x")
		m.IncFailed("x")
		m.IncConsumed("x", "nack")
		m.ObservePublish("x", time.Second)
	})
}
