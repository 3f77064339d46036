package worker

import (
	"context"
	"log/slog"
	"time"

	"gatepass/internal/platform/kafka/producer"
	"gatepass/pkg/platform/audit/outbox"
	"gatepass/pkg/platform/audit/outbox/metrics"
)

// Producer publishes one message synchronously. Satisfied by *producer.Producer.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Worker polls the outbox and publishes pending audit events to Kafka.
// Delivery is at-least-once: an entry published but not marked is
// re-published on the next poll, keyed by entry ID for consumer dedup.
type Worker struct {
	store        outbox.Store
	producer     Producer
	topic        string
	batchSize    int
	pollInterval time.Duration
	retention    time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures the Worker.
type Option func(*Worker)

// WithTopic sets the Kafka topic for publishing.
func WithTopic(topic string) Option {
	return func(w *Worker) {
		w.topic = topic
	}
}

// WithBatchSize sets the maximum number of entries to fetch per poll.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		w.batchSize = size
	}
}

// WithPollInterval sets the interval between polls.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		w.pollInterval = interval
	}
}

// WithRetention deletes processed entries older than d. Zero keeps them forever.
func WithRetention(d time.Duration) Option {
	return func(w *Worker) {
		w.retention = d
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// New creates a new outbox worker.
func New(store outbox.Store, prod Producer, opts ...Option) *Worker {
	w := &Worker{
		store:        store,
		producer:     prod,
		topic:        "gatepass.audit.events",
		batchSize:    100,
		pollInterval: 100 * time.Millisecond,
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled, then drains what is left with a short
// deadline of its own. It always returns nil so it can sit in an errgroup
// without tearing down its siblings.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var lastPurge time.Time
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case <-ticker.C:
			w.PollOnce(ctx)
			if w.retention > 0 && w.now().Sub(lastPurge) >= time.Minute {
				w.purge(ctx)
				lastPurge = w.now()
			}
		}
	}
}

// PollOnce fetches one batch and publishes it. It returns the number of
// entries published and marked.
func (w *Worker) PollOnce(ctx context.Context) int {
	start := w.now()

	entries, err := w.store.FetchUnprocessed(ctx, w.batchSize)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to fetch outbox entries", "error", err)
		w.incFailures()
		return 0
	}
	if len(entries) == 0 {
		return 0
	}
	if w.metrics != nil {
		w.metrics.ObserveBatchSize(len(entries))
	}

	published := w.publishBatch(ctx, entries)

	if w.metrics != nil {
		w.metrics.ObservePollDuration(w.now().Sub(start).Seconds())
	}
	return published
}

func (w *Worker) publishBatch(ctx context.Context, entries []*outbox.Entry) int {
	published := 0
	for _, entry := range entries {
		if err := w.publishEntry(ctx, entry); err != nil {
			w.logger.ErrorContext(ctx, "failed to publish outbox entry",
				"id", entry.ID,
				"event_type", entry.EventType,
				"error", err,
			)
			w.incFailures()
			continue
		}

		if err := w.store.MarkProcessed(ctx, entry.ID, w.now()); err != nil {
			w.logger.ErrorContext(ctx, "failed to mark entry as processed",
				"id", entry.ID,
				"error", err,
			)
			continue
		}

		published++
		if w.metrics != nil {
			w.metrics.IncPublished()
		}
	}
	return published
}

func (w *Worker) publishEntry(ctx context.Context, entry *outbox.Entry) error {
	start := w.now()

	err := w.producer.Produce(ctx, &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.ID.String()),
		Value: entry.Payload,
		Headers: map[string]string{
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
			"event_type":     entry.EventType,
		},
	})
	if err != nil {
		return err
	}

	if w.metrics != nil {
		w.metrics.ObservePublishDuration(w.now().Sub(start).Seconds())
	}
	return nil
}

func (w *Worker) drain() {
	w.logger.Info("draining outbox worker")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for ctx.Err() == nil {
		entries, err := w.store.FetchUnprocessed(ctx, w.batchSize)
		if err != nil {
			w.logger.Error("failed to fetch entries during drain", "error", err)
			return
		}
		if len(entries) == 0 {
			return
		}
		if w.publishBatch(ctx, entries) == 0 {
			// Nothing went through; the broker is likely gone.
			return
		}
	}
}

func (w *Worker) purge(ctx context.Context) {
	n, err := w.store.DeleteProcessedBefore(ctx, w.now().Add(-w.retention))
	if err != nil {
		w.logger.WarnContext(ctx, "failed to purge processed outbox entries", "error", err)
		return
	}
	if w.metrics != nil {
		w.metrics.AddPurged(n)
	}
}

// UpdateMetrics refreshes the pending depth and oldest-pending gauges.
func (w *Worker) UpdateMetrics(ctx context.Context) error {
	if w.metrics == nil {
		return nil
	}

	count, err := w.store.CountPending(ctx)
	if err != nil {
		return err
	}
	w.metrics.SetPendingDepth(count)

	oldest, err := w.store.OldestPending(ctx)
	if err != nil {
		return err
	}
	age := 0.0
	if !oldest.IsZero() {
		age = w.now().Sub(oldest).Seconds()
	}
	w.metrics.SetOldestPendingAge(age)
	return nil
}

func (w *Worker) incFailures() {
	if w.metrics != nil {
		w.metrics.IncPublishFailures()
	}
}
