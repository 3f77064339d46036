package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/ports"
	"gatepass/internal/sentinel"
)

// PaymentToken adapts an ERC-20 contract. Transfers are signed by the custody key.
type PaymentToken struct {
	c *contract
}

func NewPaymentToken(address common.Address, backend Backend, signer *Signer) (*PaymentToken, error) {
	c, err := bindContract(address, erc20ABI, backend, signer)
	if err != nil {
		return nil, fmt.Errorf("bind payment token: %w", err)
	}
	return &PaymentToken{c: c}, nil
}

func (t *PaymentToken) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := t.c.call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return asBig(out[0])
}

func (t *PaymentToken) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	out, err := t.c.call(ctx, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return asBig(out[0])
}

// TransferFrom pulls amount from `from` to `to` under the signer's allowance.
func (t *PaymentToken) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error {
	return t.c.transactChecked(ctx, "transferFrom", from, to, amount)
}

func (t *PaymentToken) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	return t.c.transactChecked(ctx, "transfer", to, amount)
}

func asBig(v any) (*big.Int, error) {
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return nil, fmt.Errorf("%w: unexpected return type %T", sentinel.ErrUnavailable, v)
	}
	return n, nil
}

func asUint64(v any) (uint64, error) {
	n, err := asBig(v)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, errors.New("ledger value overflows uint64")
	}
	return n.Uint64(), nil
}

var _ ports.PaymentLedger = (*PaymentToken)(nil)
