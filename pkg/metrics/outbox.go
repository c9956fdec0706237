package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics tracks the outbox relay.
type OutboxMetrics struct {
	published  *prometheus.CounterVec
	deadLetter *prometheus.CounterVec
	batches    prometheus.Histogram
}

// NewOutboxMetrics registers the relay metrics. A nil registerer yields a
// no-op recorder.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_attempts_total",
		Help: "Outbox publish attempts by topic and outcome.",
	}, []string{"topic", "outcome"})
	deadLetter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_dead_lettered_total",
		Help: "Outbox rows moved to the dead letter table.",
	}, []string{"reason"})
	batches := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_size",
		Help:    "Rows claimed per relay batch.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
	})
	reg.MustRegister(published, deadLetter, batches)
	return &OutboxMetrics{published: published, deadLetter: deadLetter, batches: batches}
}

func (m *OutboxMetrics) IncPublish(topic, outcome string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(topic), normalizeLabel(outcome)).Inc()
}

func (m *OutboxMetrics) IncDeadLetter(reason string) {
	if m == nil || m.deadLetter == nil {
		return
	}
	m.deadLetter.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *OutboxMetrics) ObserveBatch(size int) {
	if m == nil || m.batches == nil || size <= 0 {
		return
	}
	m.batches.Observe(float64(size))
}
