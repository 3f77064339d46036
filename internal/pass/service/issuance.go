package service

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/models"
	"gatepass/internal/sentinel"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/requestcontext"
)

const (
	refundTimeout = 15 * time.Second
	// maxOrphanSkips bounds how many already-minted ids one issuance will step over.
	maxOrphanSkips = 8
)

// issuance tracks what an attempt has done outside the store so a failed
// commit can be compensated.
type issuance struct {
	charged *big.Int
	minted  id.PassID
	pass    *models.Pass
	total   uint64
	orphans []*models.Pass
}

// IssuePass sells one pass to recipient, paid for by payer.
//
// Checks run first (cap, allowance, balance), then the custody pull, then the
// mint, then the commit. A failure after the pull refunds the payer.
func (s *Service) IssuePass(ctx context.Context, payer, recipient common.Address) (*models.Pass, error) {
	start := time.Now()
	if id.IsZeroAddress(payer) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "payer identity required")
	}
	if err := requireRecipient(recipient); err != nil {
		return nil, err
	}

	att := &issuance{}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.store.LoadConfig(ctx)
		if err != nil {
			return wrapStoreErr(err, "failed to load configuration")
		}
		if cfg.SupplyExhausted() {
			return dErrors.New(dErrors.CodeSupplyExhausted, "all passes have been issued")
		}
		if err := s.checkFunds(ctx, payer, cfg); err != nil {
			return err
		}

		if err := s.payments.TransferFrom(ctx, payer, cfg.Custody, cfg.PassCost); err != nil {
			if errors.Is(err, sentinel.ErrUnconfirmed) {
				// The pull may still be mined; compensate as if it was.
				att.charged = new(big.Int).Set(cfg.PassCost)
			}
			return wrapPaymentErr(err, "failed to collect pass payment")
		}
		att.charged = new(big.Int).Set(cfg.PassCost)

		now := requestcontext.Now(ctx)
		return s.mintAndRecord(ctx, att, cfg, func(passID id.PassID) *models.Pass {
			return models.NewPass(passID, recipient, payer, cfg.PassCost, models.KindPaid, now, cfg.PassDuration)
		}, audit.EventPassIssued, audit.Event{
			Actor:   payer.Hex(),
			Subject: recipient.Hex(),
			Amount:  cfg.PassCost.String(),
		})
	})
	if s.metrics != nil {
		s.metrics.ObserveIssue(start)
	}
	if err != nil {
		s.recordOrphans(ctx, att.orphans)
		if att.charged != nil {
			err = s.refund(ctx, payer, att, err)
		}
		s.observeRejected(err)
		return nil, err
	}

	s.announceOrphans(ctx, att.orphans)
	s.observeIssued(models.KindPaid, att.total)
	s.cacheExpiry(ctx, att.pass)
	return att.pass, nil
}

// AdminIssue issues a pass without payment. Only the admin may call it.
func (s *Service) AdminIssue(ctx context.Context, caller, recipient common.Address) (*models.Pass, error) {
	start := time.Now()

	att := &issuance{}
	err := s.adminTx(ctx, caller, "admin_issue", func(ctx context.Context, cfg *models.Configuration) error {
		if err := requireRecipient(recipient); err != nil {
			return err
		}
		if cfg.SupplyExhausted() {
			return dErrors.New(dErrors.CodeSupplyExhausted, "all passes have been issued")
		}
		now := requestcontext.Now(ctx)
		return s.mintAndRecord(ctx, att, cfg, func(passID id.PassID) *models.Pass {
			return models.NewPass(passID, recipient, common.Address{}, nil, models.KindAdmin, now, cfg.PassDuration)
		}, audit.EventPassAdminIssued, audit.Event{
			Actor:   caller.Hex(),
			Subject: recipient.Hex(),
		})
	})
	if s.metrics != nil {
		s.metrics.ObserveIssue(start)
	}
	if err != nil {
		s.recordOrphans(ctx, att.orphans)
		if att.minted != 0 {
			s.logOrphan(ctx, att.minted, recipient, err)
		}
		s.observeRejected(err)
		return nil, err
	}

	s.announceOrphans(ctx, att.orphans)
	s.observeIssued(models.KindAdmin, att.total)
	s.cacheExpiry(ctx, att.pass)
	return att.pass, nil
}

// checkFunds reports allowance shortfalls before balance shortfalls.
func (s *Service) checkFunds(ctx context.Context, payer common.Address, cfg *models.Configuration) error {
	allowance, err := s.payments.Allowance(ctx, payer, cfg.Custody)
	if err != nil {
		return wrapLedgerErr(err, "failed to read payment allowance")
	}
	if allowance.Cmp(cfg.PassCost) < 0 {
		return dErrors.New(dErrors.CodeInsufficientAllowance, "allowance below pass cost")
	}
	balance, err := s.payments.BalanceOf(ctx, payer)
	if err != nil {
		return wrapLedgerErr(err, "failed to read payment balance")
	}
	if balance.Cmp(cfg.PassCost) < 0 {
		return dErrors.New(dErrors.CodeInsufficientBalance, "balance below pass cost")
	}
	return nil
}

// mintAndRecord mints the next id and records it. When the ledger already holds
// that id (a mint whose commit was lost), the id is recorded as orphaned and the
// next one is tried, up to maxOrphanSkips times and never past the supply cap.
func (s *Service) mintAndRecord(ctx context.Context, att *issuance, cfg *models.Configuration, build func(id.PassID) *models.Pass, action audit.AuditEvent, ev audit.Event) error {
	for skipped := 0; ; skipped++ {
		if cfg.SupplyExhausted() {
			return dErrors.New(dErrors.CodeSupplyExhausted, "all passes have been issued")
		}
		pass := build(cfg.NextPassID())
		err := s.credentials.Mint(ctx, pass.Recipient, pass.ID)
		if err == nil {
			att.minted = pass.ID
			if err := s.store.RecordIssuance(ctx, pass); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record issuance")
			}
			ev.PassID = uint64(pass.ID)
			if err := s.emit(ctx, action, ev); err != nil {
				return err
			}
			att.pass = pass
			att.total = uint64(pass.ID)
			return nil
		}
		if skipped == maxOrphanSkips || !mintCollision(err) {
			return wrapLedgerErr(err, "failed to mint pass")
		}
		owner, ownerErr := s.credentials.OwnerOf(ctx, pass.ID)
		if ownerErr != nil {
			return wrapLedgerErr(err, "failed to mint pass")
		}

		orphan := models.NewOrphanedPass(pass.ID, owner, requestcontext.Now(ctx))
		if err := s.store.RecordIssuance(ctx, orphan); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record orphaned pass")
		}
		att.orphans = append(att.orphans, orphan)
		cfg.TotalIssued = uint64(orphan.ID)
		s.logger.WarnContext(ctx, "skipping pass id already minted on ledger",
			"pass_id", uint64(orphan.ID),
			"owner", owner.Hex(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// mintCollision reports ledger rejections that may mean the id is taken.
func mintCollision(err error) bool {
	return errors.Is(err, sentinel.ErrAlreadyUsed) || errors.Is(err, sentinel.ErrTransferRejected)
}

// recordOrphans commits orphaned ids found by an attempt that then failed, so
// the next attempt does not pay for the same ledger round trips.
func (s *Service) recordOrphans(ctx context.Context, orphans []*models.Pass) {
	if len(orphans) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refundTimeout)
	defer cancel()

	var recorded []*models.Pass
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.store.LoadConfig(ctx)
		if err != nil {
			return err
		}
		recorded = recorded[:0]
		for _, orphan := range orphans {
			if orphan.ID != cfg.NextPassID() {
				continue
			}
			if err := s.store.RecordIssuance(ctx, orphan); err != nil {
				return err
			}
			cfg.TotalIssued = uint64(orphan.ID)
			recorded = append(recorded, orphan)
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record orphaned passes",
			"count", len(orphans),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	s.announceOrphans(ctx, recorded)
}

func (s *Service) announceOrphans(ctx context.Context, orphans []*models.Pass) {
	for _, orphan := range orphans {
		s.emitBestEffort(ctx, audit.EventPassOrphaned, audit.Event{
			Subject: orphan.Recipient.Hex(),
			PassID:  uint64(orphan.ID),
		})
	}
}

// refund returns the pulled payment after a failure past the custody pull.
// The original failure is returned; a failed refund is joined to it.
func (s *Service) refund(ctx context.Context, payer common.Address, att *issuance, cause error) error {
	if att.minted != 0 {
		s.logOrphan(ctx, att.minted, payer, cause)
	}

	refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refundTimeout)
	defer cancel()

	ev := audit.Event{
		Subject: payer.Hex(),
		PassID:  uint64(att.minted),
		Amount:  amountString(att.charged),
		Reason:  cause.Error(),
	}
	if err := s.payments.Transfer(refundCtx, payer, att.charged); err != nil {
		s.logger.ErrorContext(ctx, "refund after failed issuance did not complete",
			"payer", payer.Hex(),
			"amount", amountString(att.charged),
			"cause", cause,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.observeRefund("failed")
		s.emitBestEffort(refundCtx, audit.EventRefundFailed, ev)
		return &dErrors.Error{
			Code:    dErrors.CodeOf(cause),
			Message: cause.Error() + "; refund of " + amountString(att.charged) + " to payer failed",
			Err:     errors.Join(cause, err),
		}
	}
	s.observeRefund("refunded")
	s.emitBestEffort(refundCtx, audit.EventPaymentRefunded, ev)
	return cause
}

func (s *Service) logOrphan(ctx context.Context, passID id.PassID, account common.Address, cause error) {
	s.logger.ErrorContext(ctx, "pass minted on ledger but issuance was not recorded",
		"pass_id", uint64(passID),
		"account", account.Hex(),
		"error", cause,
		"request_id", requestcontext.RequestID(ctx),
	)
}
