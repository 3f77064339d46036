package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbox worker.
type Metrics struct {
	PendingDepth     prometheus.Gauge
	OldestPendingAge prometheus.Gauge

	PublishedTotal  prometheus.Counter
	PublishFailures prometheus.Counter
	PublishDuration prometheus.Histogram
	BatchSize       prometheus.Histogram
	PollDuration    prometheus.Histogram
	PurgedTotal     prometheus.Counter
}

// New registers the outbox metrics with the default registry.
// Call once per process.
func New() *Metrics {
	return &Metrics{
		PendingDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gatepass_outbox_pending_total",
			Help: "Current number of pending (unpublished) audit outbox entries",
		}),
		OldestPendingAge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gatepass_outbox_oldest_pending_seconds",
			Help: "Age in seconds of the oldest pending outbox entry",
		}),
		PublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_outbox_published_total",
			Help: "Outbox entries published to Kafka",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_outbox_publish_failures_total",
			Help: "Outbox fetch or publish failures",
		}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatepass_outbox_publish_duration_seconds",
			Help:    "Time taken to publish one outbox entry to Kafka",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatepass_outbox_batch_size",
			Help:    "Number of entries processed per poll",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		PollDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatepass_outbox_poll_duration_seconds",
			Help:    "Time taken for each poll cycle",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		PurgedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_outbox_purged_total",
			Help: "Processed outbox entries removed by retention",
		}),
	}
}

func (m *Metrics) SetPendingDepth(count int64) {
	m.PendingDepth.Set(float64(count))
}

func (m *Metrics) SetOldestPendingAge(ageSeconds float64) {
	m.OldestPendingAge.Set(ageSeconds)
}

func (m *Metrics) IncPublished() {
	m.PublishedTotal.Inc()
}

func (m *Metrics) IncPublishFailures() {
	m.PublishFailures.Inc()
}

func (m *Metrics) ObservePublishDuration(durationSeconds float64) {
	m.PublishDuration.Observe(durationSeconds)
}

func (m *Metrics) ObserveBatchSize(size int) {
	m.BatchSize.Observe(float64(size))
}

func (m *Metrics) ObservePollDuration(durationSeconds float64) {
	m.PollDuration.Observe(durationSeconds)
}

func (m *Metrics) AddPurged(n int64) {
	m.PurgedTotal.Add(float64(n))
}
