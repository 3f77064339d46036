package service

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/models"
	"gatepass/internal/sentinel"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

// IsPassValid reports whether passID was issued and has not expired.
// Unissued ids are false, not errors; errors mean the lookup itself failed.
func (s *Service) IsPassValid(ctx context.Context, passID id.PassID) (bool, error) {
	if passID.IsNil() {
		s.observeValidity("unissued")
		return false, nil
	}
	// The issued range gates the cache: an entry outliving the record it
	// was filled from must not answer for an id the store never committed.
	cfg, err := s.store.LoadConfig(ctx)
	if err != nil {
		return false, wrapStoreErr(err, "failed to load configuration")
	}
	if !cfg.IsIssued(passID) {
		s.observeValidity("unissued")
		return false, nil
	}
	expiresAt, found, err := s.lookupExpiry(ctx, passID)
	if err != nil {
		return false, err
	}
	if !found {
		s.observeValidity("unissued")
		return false, nil
	}
	if !expiresAt.After(requestcontext.Now(ctx)) {
		s.observeValidity("expired")
		return false, nil
	}
	s.observeValidity("valid")
	return true, nil
}

// IsAddressActive reports whether addr currently holds at least one valid pass,
// walking the credential ledger's enumeration for addr. Past holders are not active.
func (s *Service) IsAddressActive(ctx context.Context, addr common.Address) (bool, error) {
	if id.IsZeroAddress(addr) {
		return false, nil
	}
	held, err := s.credentials.BalanceOf(ctx, addr)
	if err != nil {
		return false, wrapLedgerErr(err, "failed to read pass balance")
	}
	for i := uint64(0); i < held; i++ {
		passID, err := s.credentials.TokenOfOwnerByIndex(ctx, addr, i)
		if err != nil {
			return false, wrapLedgerErr(err, "failed to enumerate passes")
		}
		valid, err := s.IsPassValid(ctx, passID)
		if err != nil {
			return false, err
		}
		if valid {
			return true, nil
		}
	}
	return false, nil
}

// GetPass returns the issuance record with its current owner and validity.
func (s *Service) GetPass(ctx context.Context, passID id.PassID) (*models.PassView, error) {
	if passID.IsNil() {
		return nil, dErrors.New(dErrors.CodeNotFound, "pass not found")
	}
	pass, err := s.store.FindPass(ctx, passID)
	if err != nil {
		return nil, wrapPassErr(err, "failed to load pass")
	}
	owner, err := s.credentials.OwnerOf(ctx, passID)
	if err != nil {
		return nil, wrapLedgerErr(err, "failed to read pass owner")
	}
	cfg, err := s.store.LoadConfig(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load configuration")
	}
	return &models.PassView{
		Pass:     pass,
		Owner:    owner,
		Valid:    pass.IsValidAt(requestcontext.Now(ctx)),
		TokenURI: cfg.TokenURI(passID),
	}, nil
}

// lookupExpiry reads through the cache when one is configured and healthy.
func (s *Service) lookupExpiry(ctx context.Context, passID id.PassID) (time.Time, bool, error) {
	if s.cache != nil {
		if !s.cacheBreaker.Allow() {
			s.observeCache("bypass")
		} else {
			expiresAt, hit, err := s.cache.Get(ctx, passID)
			switch {
			case err != nil:
				s.recordCacheFailure(ctx, err)
				s.observeCache("error")
			case hit:
				s.cacheBreaker.RecordSuccess()
				s.observeCache("hit")
				return expiresAt, true, nil
			default:
				s.cacheBreaker.RecordSuccess()
				s.observeCache("miss")
			}
		}
	}

	pass, err := s.store.FindPass(ctx, passID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pass expiry")
	}
	s.cacheExpiry(ctx, pass)
	return pass.ExpiresAt, true, nil
}

func (s *Service) cacheExpiry(ctx context.Context, pass *models.Pass) {
	if s.cache == nil || pass == nil || s.cacheBreaker.IsOpen() {
		return
	}
	if err := s.cache.Set(ctx, pass.ID, pass.ExpiresAt); err != nil {
		s.recordCacheFailure(ctx, err)
	}
}

func (s *Service) recordCacheFailure(ctx context.Context, err error) {
	_, change := s.cacheBreaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "expiry cache circuit opened, reading from store",
			"breaker", s.cacheBreaker.Name(),
			"error", err,
		)
		return
	}
	s.logger.DebugContext(ctx, "expiry cache error", "error", err)
}
