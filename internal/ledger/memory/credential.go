package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/ports"
	"gatepass/internal/sentinel"
	id "gatepass/pkg/domain"
)

// PassRegistry is a non-fungible ownership ledger with per-owner enumeration.
// Removal from an owner's list swaps in the last entry, so indices are not stable
// across transfers.
type PassRegistry struct {
	mu     sync.RWMutex
	owners map[id.PassID]common.Address
	owned  map[common.Address][]id.PassID
	index  map[id.PassID]int
}

func NewPassRegistry() *PassRegistry {
	return &PassRegistry{
		owners: make(map[id.PassID]common.Address),
		owned:  make(map[common.Address][]id.PassID),
		index:  make(map[id.PassID]int),
	}
}

func (r *PassRegistry) Mint(ctx context.Context, to common.Address, passID id.PassID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id.IsZeroAddress(to) {
		return fmt.Errorf("%w: mint to the zero address", sentinel.ErrTransferRejected)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.owners[passID]; exists {
		return fmt.Errorf("%w: pass %d already minted", sentinel.ErrAlreadyUsed, passID)
	}
	r.owners[passID] = to
	r.addLocked(to, passID)
	return nil
}

// TransferFrom moves a pass between holders. The pass service never calls it;
// holders trade passes on the ledger directly.
func (r *PassRegistry) TransferFrom(ctx context.Context, from, to common.Address, passID id.PassID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id.IsZeroAddress(to) {
		return fmt.Errorf("%w: transfer to the zero address", sentinel.ErrTransferRejected)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	owner, ok := r.owners[passID]
	if !ok {
		return fmt.Errorf("pass %d: %w", passID, sentinel.ErrNotFound)
	}
	if owner != from {
		return fmt.Errorf("%w: pass %d not held by %s", sentinel.ErrTransferRejected, passID, from.Hex())
	}
	r.removeLocked(from, passID)
	r.owners[passID] = to
	r.addLocked(to, passID)
	return nil
}

func (r *PassRegistry) OwnerOf(ctx context.Context, passID id.PassID) (common.Address, error) {
	if err := ctx.Err(); err != nil {
		return common.Address{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[passID]
	if !ok {
		return common.Address{}, fmt.Errorf("pass %d: %w", passID, sentinel.ErrNotFound)
	}
	return owner, nil
}

func (r *PassRegistry) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.owned[owner])), nil
}

func (r *PassRegistry) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index uint64) (id.PassID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	held := r.owned[owner]
	if index >= uint64(len(held)) {
		return 0, fmt.Errorf("%w: index %d out of range for %s", sentinel.ErrNotFound, index, owner.Hex())
	}
	return held[index], nil
}

func (r *PassRegistry) addLocked(owner common.Address, passID id.PassID) {
	r.index[passID] = len(r.owned[owner])
	r.owned[owner] = append(r.owned[owner], passID)
}

func (r *PassRegistry) removeLocked(owner common.Address, passID id.PassID) {
	held := r.owned[owner]
	i := r.index[passID]
	last := len(held) - 1
	if i != last {
		moved := held[last]
		held[i] = moved
		r.index[moved] = i
	}
	r.owned[owner] = held[:last]
	if last == 0 {
		delete(r.owned, owner)
	}
	delete(r.index, passID)
}

var _ ports.CredentialLedger = (*PassRegistry)(nil)
