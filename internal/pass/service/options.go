package service

import (
	"log/slog"

	passmetrics "gatepass/internal/pass/metrics"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/circuit"
)

// Option configures a Service.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditLogger routes audit events through l. Without it events only reach the text log.
func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Service) {
		s.auditor = l
	}
}

func WithMetrics(m *passmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx sets the transactional boundary. Defaults to an in-memory mutex.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithExpiryCache puts a read-through cache in front of expiry lookups.
// The breaker bypasses the cache while it is failing.
func WithExpiryCache(cache ExpiryCache, opts ...circuit.Option) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheBreaker = circuit.New("expiry-cache", opts...)
	}
}
