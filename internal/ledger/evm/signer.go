// Package evm adapts deployed ERC-20 and ERC-721 Enumerable contracts to the
// pass service's ledger ports. Writes are signed by the custody key and wait
// for their receipt.
package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"gatepass/internal/sentinel"
)

// Backend is the node surface the adapters need: contract calls, transactions, and receipts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Dial connects to a JSON-RPC endpoint.
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", sentinel.ErrUnavailable, rpcURL, err)
	}
	return client, nil
}

// Signer holds the custody key. Sends are serialized so nonces are assigned in order.
type Signer struct {
	mu      sync.Mutex
	auth    *bind.TransactOpts
	address common.Address
}

// NewSigner parses a hex private key (without 0x) for chainID.
func NewSigner(privateKeyHex string, chainID *big.Int) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse custody key: %w", err)
	}
	return newSignerFromKey(key, chainID)
}

func newSignerFromKey(key *ecdsa.PrivateKey, chainID *big.Int) (*Signer, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	return &Signer{auth: auth, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address is the custody account the key controls.
func (s *Signer) Address() common.Address {
	return s.address
}

// contract pairs a bound contract with the backend used to wait for receipts.
type contract struct {
	bound   *bind.BoundContract
	backend Backend
	signer  *Signer
}

func bindContract(address common.Address, rawABI string, backend Backend, signer *Signer) (*contract, error) {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	return &contract{
		bound:   bind.NewBoundContract(address, parsed, backend, backend, backend),
		backend: backend,
		signer:  signer,
	}, nil
}

func (c *contract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	var out []any
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, classify(err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s returned no values", sentinel.ErrUnavailable, method)
	}
	return out, nil
}

// receiptTimeout bounds the wait for a broadcast transaction's receipt. The
// wait does not end with the caller's context.
var receiptTimeout = 2 * time.Minute

// transact sends and waits for the receipt. A reverted receipt is a rejection.
// Once broadcast, a transaction whose receipt cannot be confirmed is reported as
// sentinel.ErrUnconfirmed: it may still be mined.
func (c *contract) transact(ctx context.Context, method string, args ...any) error {
	c.signer.mu.Lock()
	opts := *c.signer.auth
	opts.Context = ctx
	tx, err := c.bound.Transact(&opts, method, args...)
	c.signer.mu.Unlock()
	if err != nil {
		return classify(err)
	}

	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return fmt.Errorf("%w: %s tx %s: %w", sentinel.ErrUnconfirmed, method, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: %s reverted in tx %s", sentinel.ErrTransferRejected, method, tx.Hash().Hex())
	}
	return nil
}

// waitMined outlives the request context: the transaction is already out.
func (c *contract) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptTimeout)
	defer cancel()
	return bind.WaitMined(waitCtx, c.backend, tx)
}

// transactChecked dry-runs an ERC-20 style method as the signer and refuses
// to send when it would return false instead of reverting.
func (c *contract) transactChecked(ctx context.Context, method string, args ...any) error {
	var out []any
	callOpts := &bind.CallOpts{Context: ctx, From: c.signer.address}
	if err := c.bound.Call(callOpts, &out, method, args...); err != nil {
		return classify(err)
	}
	if len(out) > 0 {
		if ok, isBool := out[0].(bool); isBool && !ok {
			return fmt.Errorf("%w: %s returned false", sentinel.ErrTransferRejected, method)
		}
	}
	return c.transact(ctx, method, args...)
}

// classify maps node errors onto sentinels. Reverts are the contract saying no;
// everything else is treated as the node being unreachable.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case isRevert(err):
		return fmt.Errorf("%w: %v", sentinel.ErrTransferRejected, err)
	case errors.Is(err, bind.ErrNoCode):
		return fmt.Errorf("%w: no contract code at address", sentinel.ErrUnavailable)
	default:
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
}

func isRevert(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "revert")
}
