package service

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/models"
	"gatepass/internal/sentinel"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/audit"
)

func requireRecipient(recipient common.Address) error {
	if id.IsZeroAddress(recipient) {
		return dErrors.New(dErrors.CodeInvalidInput, "recipient cannot be the zero address")
	}
	return nil
}

func requireAdmin(cfg *models.Configuration, caller common.Address) error {
	if !cfg.IsAdmin(caller) {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the admin")
	}
	return nil
}

// Error wrapping helpers translate sentinel errors to domain errors.

func wrapStoreErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "configuration not initialized")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

func wrapPassErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "pass not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}

// wrapLedgerErr is for reads and mints. Payment pulls and pushes use wrapPaymentErr.
func wrapLedgerErr(err error, action string) error {
	switch {
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, action)
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, action)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, action)
	}
}

// wrapPaymentErr reports any failed transfer as a payment failure.
func wrapPaymentErr(err error, action string) error {
	return &dErrors.Error{Code: dErrors.CodePaymentFailed, Message: action + ": " + err.Error(), Err: err}
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// emit records an audit event inside the current transaction. Its error is
// returned so a failed outbox write aborts the surrounding mutation.
func (s *Service) emit(ctx context.Context, action audit.AuditEvent, ev audit.Event) error {
	if err := s.auditor.Log(ctx, action, ev); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

// emitBestEffort records an audit event outside any transaction. Failures are
// already logged by the audit logger.
func (s *Service) emitBestEffort(ctx context.Context, action audit.AuditEvent, ev audit.Event) {
	_ = s.auditor.Log(ctx, action, ev) //nolint:errcheck // logged by audit.Logger
}

// adminTx loads the configuration under the write boundary, checks the caller,
// and runs fn. Rejected callers are audited after the rollback.
func (s *Service) adminTx(ctx context.Context, caller common.Address, op string, fn func(ctx context.Context, cfg *models.Configuration) error) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.store.LoadConfig(ctx)
		if err != nil {
			return wrapStoreErr(err, "failed to load configuration")
		}
		if err := requireAdmin(cfg, caller); err != nil {
			return err
		}
		return fn(ctx, cfg)
	})
	if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		s.emitBestEffort(ctx, audit.EventAdminCallRejected, audit.Event{
			Actor:  caller.Hex(),
			Reason: op,
		})
	}
	return err
}

// Metrics helpers tolerate a nil *Metrics.

func (s *Service) observeRejected(err error) {
	if s.metrics != nil && err != nil {
		s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
	}
}

func (s *Service) observeIssued(kind models.Kind, total uint64) {
	if s.metrics != nil {
		s.metrics.IncrementIssued(string(kind), total)
	}
}

func (s *Service) observeRefund(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementRefund(outcome)
	}
}

func (s *Service) observeValidity(result string) {
	if s.metrics != nil {
		s.metrics.IncrementValidityCheck(result)
	}
}

func (s *Service) observeCache(result string) {
	if s.metrics != nil {
		s.metrics.IncrementExpiryCache(result)
	}
}
