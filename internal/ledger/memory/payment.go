// Package memory provides in-process ledgers with ERC-20 and ERC-721 Enumerable
// semantics. They back dev mode, service tests, and the e2e suite.
package memory

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/ports"
	"gatepass/internal/sentinel"
	id "gatepass/pkg/domain"
)

// PaymentToken is a fungible token ledger. Transfer and TransferFrom are
// signed by the custody account, so custody is the spender for every pull.
type PaymentToken struct {
	mu         sync.RWMutex
	custody    common.Address
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

func NewPaymentToken(custody common.Address) *PaymentToken {
	return &PaymentToken{
		custody:    custody,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// Custody returns the account this ledger signs for.
func (t *PaymentToken) Custody() common.Address {
	return t.custody
}

// Credit adds amount to owner's balance out of thin air. Dev and test funding only.
func (t *PaymentToken) Credit(owner common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[owner] = new(big.Int).Add(t.balanceLocked(owner), amount)
}

// Approve sets spender's allowance over owner's balance, replacing any previous value.
func (t *PaymentToken) Approve(owner, spender common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setAllowanceLocked(owner, spender, new(big.Int).Set(amount))
}

func (t *PaymentToken) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.balanceLocked(owner)), nil
}

func (t *PaymentToken) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.allowanceLocked(owner, spender)), nil
}

// TransferFrom moves amount from `from` to `to`, spending custody's allowance.
// Insufficient allowance is reported before insufficient balance.
func (t *PaymentToken) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkAmount(to, amount); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	allowance := t.allowanceLocked(from, t.custody)
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: allowance %s below %s", sentinel.ErrTransferRejected, allowance, amount)
	}
	if err := t.moveLocked(from, to, amount); err != nil {
		return err
	}
	t.setAllowanceLocked(from, t.custody, new(big.Int).Sub(allowance, amount))
	return nil
}

// Transfer moves amount out of custody.
func (t *PaymentToken) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkAmount(to, amount); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.moveLocked(t.custody, to, amount)
}

func (t *PaymentToken) moveLocked(from, to common.Address, amount *big.Int) error {
	balance := t.balanceLocked(from)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: balance %s below %s", sentinel.ErrTransferRejected, balance, amount)
	}
	t.balances[from] = new(big.Int).Sub(balance, amount)
	t.balances[to] = new(big.Int).Add(t.balanceLocked(to), amount)
	return nil
}

func (t *PaymentToken) balanceLocked(owner common.Address) *big.Int {
	if b, ok := t.balances[owner]; ok {
		return b
	}
	return new(big.Int)
}

func (t *PaymentToken) allowanceLocked(owner, spender common.Address) *big.Int {
	if a, ok := t.allowances[owner][spender]; ok {
		return a
	}
	return new(big.Int)
}

func (t *PaymentToken) setAllowanceLocked(owner, spender common.Address, amount *big.Int) {
	byOwner, ok := t.allowances[owner]
	if !ok {
		byOwner = make(map[common.Address]*big.Int)
		t.allowances[owner] = byOwner
	}
	byOwner[spender] = amount
}

func checkAmount(to common.Address, amount *big.Int) error {
	if id.IsZeroAddress(to) {
		return fmt.Errorf("%w: transfer to the zero address", sentinel.ErrTransferRejected)
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: negative amount", sentinel.ErrInvalidInput)
	}
	return nil
}

var _ ports.PaymentLedger = (*PaymentToken)(nil)
