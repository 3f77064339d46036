package store

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"gatepass/internal/pass/models"
	"gatepass/internal/sentinel"
	id "gatepass/pkg/domain"
)

// InMemoryStore keeps configuration and passes in process memory.
// Writers are serialized by the service's StoreTx. Writes made through a
// context returned by Stage are buffered and only become visible on commit.
type InMemoryStore struct {
	mu     sync.RWMutex
	cfg    *models.Configuration
	passes map[id.PassID]*models.Pass
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{passes: make(map[id.PassID]*models.Pass)}
}

type stagedKey struct{}

// staged is one transaction's writes layered over the committed state.
type staged struct {
	cfg    *models.Configuration
	passes map[id.PassID]*models.Pass
}

func stagedFrom(ctx context.Context) *staged {
	st, _ := ctx.Value(stagedKey{}).(*staged)
	return st
}

// Stage opens a write buffer. Reads and writes through the returned context see
// the buffer; commit publishes it. Dropping commit discards every staged write.
func (s *InMemoryStore) Stage(ctx context.Context) (context.Context, func()) {
	st := &staged{passes: make(map[id.PassID]*models.Pass)}
	return context.WithValue(ctx, stagedKey{}, st), func() { s.apply(st) }
}

func (s *InMemoryStore) apply(st *staged) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.cfg != nil {
		s.cfg = st.cfg
	}
	for passID, pass := range st.passes {
		s.passes[passID] = pass
	}
}

// currentLocked is the configuration visible to st. Caller holds s.mu.
func (s *InMemoryStore) currentLocked(st *staged) *models.Configuration {
	if st != nil && st.cfg != nil {
		return st.cfg
	}
	return s.cfg
}

// putLocked writes cfg to the buffer when there is one. Caller holds s.mu.
func (s *InMemoryStore) putLocked(st *staged, cfg *models.Configuration) {
	if st != nil {
		st.cfg = cfg
		return
	}
	s.cfg = cfg
}

func (s *InMemoryStore) LoadConfig(ctx context.Context) (*models.Configuration, error) {
	st := stagedFrom(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.currentLocked(st)
	if cfg == nil {
		return nil, sentinel.ErrNotFound
	}
	return cfg.Clone(), nil
}

func (s *InMemoryStore) InitConfig(ctx context.Context, cfg *models.Configuration) (bool, error) {
	if cfg == nil {
		return false, fmt.Errorf("configuration is required: %w", sentinel.ErrInvalidInput)
	}
	st := stagedFrom(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentLocked(st) != nil {
		return false, nil
	}
	s.putLocked(st, cfg.Clone())
	return true, nil
}

// SaveConfig replaces the mutable fields. TotalIssued only moves through RecordIssuance.
func (s *InMemoryStore) SaveConfig(ctx context.Context, cfg *models.Configuration) error {
	if cfg == nil {
		return fmt.Errorf("configuration is required: %w", sentinel.ErrInvalidInput)
	}
	st := stagedFrom(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.currentLocked(st)
	if cur == nil {
		return sentinel.ErrNotFound
	}
	next := cfg.Clone()
	next.TotalIssued = cur.TotalIssued
	s.putLocked(st, next)
	return nil
}

func (s *InMemoryStore) RecordIssuance(ctx context.Context, pass *models.Pass) error {
	if pass == nil {
		return fmt.Errorf("pass is required: %w", sentinel.ErrInvalidInput)
	}
	st := stagedFrom(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.currentLocked(st)
	if cur == nil {
		return sentinel.ErrNotFound
	}
	if uint64(pass.ID) != cur.TotalIssued+1 {
		return fmt.Errorf("pass %d out of sequence after %d: %w", pass.ID, cur.TotalIssued, sentinel.ErrAlreadyUsed)
	}
	next := cur.Clone()
	next.TotalIssued = uint64(pass.ID)
	s.putLocked(st, next)
	if st != nil {
		st.passes[pass.ID] = clonePass(pass)
	} else {
		s.passes[pass.ID] = clonePass(pass)
	}
	return nil
}

func (s *InMemoryStore) FindPass(ctx context.Context, passID id.PassID) (*models.Pass, error) {
	if st := stagedFrom(ctx); st != nil {
		if pass, ok := st.passes[passID]; ok {
			return clonePass(pass), nil
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	pass, ok := s.passes[passID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clonePass(pass), nil
}

func clonePass(p *models.Pass) *models.Pass {
	out := *p
	if p.PricePaid != nil {
		out.PricePaid = new(big.Int).Set(p.PricePaid)
	}
	return &out
}
