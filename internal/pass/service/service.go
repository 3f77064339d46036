// Package service implements pass issuance, configuration, validity queries,
// and treasury withdrawal on top of the payment and credential ledgers.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store ExpiryCache

import (
	"context"
	"log/slog"
	"time"

	passmetrics "gatepass/internal/pass/metrics"
	"gatepass/internal/pass/models"
	"gatepass/internal/pass/ports"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/circuit"
)

// Store persists the configuration row and issued pass records.
// Missing rows are reported as sentinel.ErrNotFound.
type Store interface {
	// LoadConfig returns the configuration. Inside RunInTx, SQL stores lock the row.
	LoadConfig(ctx context.Context) (*models.Configuration, error)
	// InitConfig inserts cfg when no configuration exists and reports whether it did.
	InitConfig(ctx context.Context, cfg *models.Configuration) (bool, error)
	SaveConfig(ctx context.Context, cfg *models.Configuration) error
	// RecordIssuance inserts the pass and advances totalIssued to its id in one step.
	RecordIssuance(ctx context.Context, pass *models.Pass) error
	FindPass(ctx context.Context, passID id.PassID) (*models.Pass, error)
}

// ExpiryCache holds expiries of issued passes. Expiries never change, so entries
// only age out. A miss is (zero, false, nil).
type ExpiryCache interface {
	Get(ctx context.Context, passID id.PassID) (time.Time, bool, error)
	Set(ctx context.Context, passID id.PassID, expiresAt time.Time) error
}

// Service owns the issuance state machine and the validity oracle.
type Service struct {
	store        Store
	payments     ports.PaymentLedger
	credentials  ports.CredentialLedger
	tx           StoreTx
	logger       *slog.Logger
	auditor      *audit.Logger
	metrics      *passmetrics.Metrics
	cache        ExpiryCache
	cacheBreaker *circuit.Breaker
}

func New(store Store, payments ports.PaymentLedger, credentials ports.CredentialLedger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		payments:    payments,
		credentials: credentials,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		if st, ok := store.(Stager); ok {
			s.tx = NewInMemoryTx(st)
		} else {
			s.tx = NewInMemoryTx()
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.auditor == nil {
		s.auditor = audit.NewLogger(s.logger, nil)
	}
	return s
}
