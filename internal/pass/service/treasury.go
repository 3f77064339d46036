package service

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/audit"
)

// Withdraw sweeps the full custody balance to `to` and returns the amount moved.
// There is no tracked withdrawable balance; whatever custody holds is swept.
func (s *Service) Withdraw(ctx context.Context, caller, to common.Address) (*big.Int, error) {
	swept := new(big.Int)
	err := s.adminTx(ctx, caller, "withdraw", func(ctx context.Context, cfg *models.Configuration) error {
		if id.IsZeroAddress(to) {
			return dErrors.New(dErrors.CodeInvalidInput, "withdrawal target cannot be the zero address")
		}
		balance, err := s.payments.BalanceOf(ctx, cfg.Custody)
		if err != nil {
			return wrapLedgerErr(err, "failed to read custody balance")
		}
		if balance.Sign() == 0 {
			return nil
		}
		if err := s.payments.Transfer(ctx, to, balance); err != nil {
			return wrapPaymentErr(err, "failed to transfer custody balance")
		}
		swept.Set(balance)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if swept.Sign() == 0 {
		return swept, nil
	}

	// Recorded after the boundary closes: the transfer cannot be rolled back.
	s.emitBestEffort(ctx, audit.EventTreasuryWithdrawn, audit.Event{
		Actor:   caller.Hex(),
		Subject: to.Hex(),
		Amount:  swept.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementWithdrawal()
	}
	return swept, nil
}
