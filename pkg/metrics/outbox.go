package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics tracks the outbox dispatch loop.
type OutboxMetrics struct {
	published    *prometheus.CounterVec
	failed       *prometheus.CounterVec
	deadLettered prometheus.Counter
	backlog      prometheus.Gauge
}

// NewOutboxMetrics registers outbox dispatcher metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_published_total",
		Help: "Outbox events published per topic.",
	}, []string{"topic"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Outbox publish attempts that errored per topic.",
	}, []string{"topic"})
	deadLettered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_dead_lettered_total",
		Help: "Outbox events moved to the dead letter table.",
	})
	backlog := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_backlog",
		Help: "Unpublished outbox rows seen on the latest poll.",
	})
	reg.MustRegister(published, failed, deadLettered, backlog)
	return &OutboxMetrics{
		published:    published,
		failed:       failed,
		deadLettered: deadLettered,
		backlog:      backlog,
	}
}

// IncPublished increments the publish counter for a topic.
func (o *OutboxMetrics) IncPublished(topic string) {
	if o == nil || o.published == nil {
		return
	}
	o.published.WithLabelValues(normalizeLabel(topic)).Inc()
}

// IncFailed increments the failure counter for a topic.
func (o *OutboxMetrics) IncFailed(topic string) {
	if o == nil || o.failed == nil {
		return
	}
	o.failed.WithLabelValues(normalizeLabel(topic)).Inc()
}

// IncDeadLettered increments the DLQ counter.
func (o *OutboxMetrics) IncDeadLettered() {
	if o == nil || o.deadLettered == nil {
		return
	}
	o.deadLettered.Inc()
}

// SetBacklog records how many unpublished rows the poller fetched.
func (o *OutboxMetrics) SetBacklog(count int) {
	if o == nil || o.backlog == nil {
		return
	}
	o.backlog.Set(float64(count))
}
