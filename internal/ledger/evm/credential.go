package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/ports"
	"gatepass/internal/sentinel"
	id "gatepass/pkg/domain"
)

// PassContract adapts the pass ERC-721 contract. The signer must hold its minter role.
type PassContract struct {
	c *contract
}

func NewPassContract(address common.Address, backend Backend, signer *Signer) (*PassContract, error) {
	c, err := bindContract(address, passABI, backend, signer)
	if err != nil {
		return nil, fmt.Errorf("bind pass contract: %w", err)
	}
	return &PassContract{c: c}, nil
}

func (p *PassContract) Mint(ctx context.Context, to common.Address, passID id.PassID) error {
	return p.c.transact(ctx, "mint", to, passID.BigInt())
}

// OwnerOf reports unminted ids as not found; ERC-721 reverts for them.
func (p *PassContract) OwnerOf(ctx context.Context, passID id.PassID) (common.Address, error) {
	out, err := p.c.call(ctx, "ownerOf", passID.BigInt())
	if err != nil {
		return common.Address{}, revertAsNotFound(err)
	}
	owner, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: unexpected return type %T", sentinel.ErrUnavailable, out[0])
	}
	return owner, nil
}

func (p *PassContract) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	out, err := p.c.call(ctx, "balanceOf", owner)
	if err != nil {
		return 0, err
	}
	return asUint64(out[0])
}

func (p *PassContract) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index uint64) (id.PassID, error) {
	out, err := p.c.call(ctx, "tokenOfOwnerByIndex", owner, new(big.Int).SetUint64(index))
	if err != nil {
		return 0, revertAsNotFound(err)
	}
	v, err := asUint64(out[0])
	if err != nil {
		return 0, err
	}
	return id.PassID(v), nil
}

func revertAsNotFound(err error) error {
	if errors.Is(err, sentinel.ErrTransferRejected) {
		return fmt.Errorf("%w: %v", sentinel.ErrNotFound, err)
	}
	return err
}

var _ ports.CredentialLedger = (*PassContract)(nil)
