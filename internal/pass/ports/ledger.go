// Package ports declares the external ledgers the pass service consumes.
// Adapters return sentinel errors (ErrTransferRejected, ErrUnavailable,
// ErrNotFound) so the service can translate them once.
package ports

//go:generate mockgen -source=ledger.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	id "gatepass/pkg/domain"
)

// PaymentLedger is the payment-token ledger (ERC-20 shaped).
// Transfer and TransferFrom are signed by the custody account the adapter controls.
type PaymentLedger interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error
}

// CredentialLedger is the ownership ledger for passes (ERC-721 Enumerable shaped).
type CredentialLedger interface {
	Mint(ctx context.Context, to common.Address, passID id.PassID) error
	OwnerOf(ctx context.Context, passID id.PassID) (common.Address, error)
	BalanceOf(ctx context.Context, owner common.Address) (uint64, error)
	TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index uint64) (id.PassID, error)
}
