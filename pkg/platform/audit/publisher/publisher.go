package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "gatepass/pkg/domain-errors"
	audit "gatepass/pkg/platform/audit"
)

var (
	eventsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatepass_audit_events_persisted_total",
		Help: "Audit events handed to the audit store, by action",
	}, []string{"action"})
	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatepass_audit_events_dropped_total",
		Help: "Audit events lost to a full buffer or a failing store, by action",
	}, []string{"action"})
)

// Publisher captures structured audit events and hands them to a Store.
//
// In synchronous mode (the default) Emit appends with the caller's context,
// so a store that joins the caller's transaction commits or rolls back with
// it. Async mode trades that for latency and must not be used with such stores.
type Publisher struct {
	store  audit.Store
	events chan audit.Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		p.persist(context.Background(), event) //nolint:errcheck // failures are logged and counted
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		eventsDropped.WithLabelValues(event.Action).Inc()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "failed to persist audit event",
				"error", err,
				"action", event.Action,
				"request_id", event.RequestID,
			)
		}
		return err
	}
	eventsPersisted.WithLabelValues(event.Action).Inc()
	return nil
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

func (p *Publisher) Emit(ctx context.Context, base audit.Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	if !p.async {
		return p.persist(ctx, base)
	}

	select {
	case p.events <- base:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		eventsDropped.WithLabelValues(base.Action).Inc()
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, event dropped",
				"action", base.Action,
			)
		}
		return dErrors.New(dErrors.CodeInternal, "audit buffer full")
	}
}
