package service

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/requestcontext"
)

// Bootstrap seeds the configuration on first start and returns the stored one.
// An existing configuration is never overwritten.
func (s *Service) Bootstrap(ctx context.Context, defaults *models.Configuration) (*models.Configuration, error) {
	if defaults == nil || id.IsZeroAddress(defaults.Admin) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "bootstrap requires an admin address")
	}
	var out *models.Configuration
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		created, err := s.store.InitConfig(ctx, defaults)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed configuration")
		}
		cfg, err := s.store.LoadConfig(ctx)
		if err != nil {
			return wrapStoreErr(err, "failed to load configuration")
		}
		if created {
			s.logger.InfoContext(ctx, "pass configuration seeded",
				"admin", cfg.Admin.Hex(),
				"pass_cost", cfg.PassCost.String(),
				"max_supply", cfg.MaxSupply,
			)
		} else if cfg.PaymentToken != defaults.PaymentToken {
			s.logger.WarnContext(ctx, "configured payment token differs from stored configuration",
				"stored", cfg.PaymentToken.Hex(),
				"configured", defaults.PaymentToken.Hex(),
			)
		}
		out = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.TotalIssued.Set(float64(out.TotalIssued))
	}
	return out, nil
}

// Configuration returns a read-only snapshot. Reads do not take the writer boundary.
func (s *Service) Configuration(ctx context.Context) (*models.Configuration, error) {
	cfg, err := s.store.LoadConfig(ctx)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load configuration")
	}
	return cfg, nil
}

func (s *Service) SetPassCost(ctx context.Context, caller common.Address, cost *big.Int) (*models.Configuration, error) {
	return s.updateConfig(ctx, caller, "set_pass_cost", func(cfg *models.Configuration) (audit.AuditEvent, audit.Event, error) {
		if cost == nil || cost.Sign() < 0 {
			return "", audit.Event{}, dErrors.New(dErrors.CodeInvalidInput, "pass cost must be a non-negative amount")
		}
		cfg.PassCost = new(big.Int).Set(cost)
		return audit.EventPassCostSet, audit.Event{Amount: cost.String()}, nil
	})
}

// SetPassDuration applies to passes issued afterwards. Sub-second parts are dropped.
func (s *Service) SetPassDuration(ctx context.Context, caller common.Address, d time.Duration) (*models.Configuration, error) {
	d = d.Truncate(time.Second)
	return s.updateConfig(ctx, caller, "set_pass_duration", func(cfg *models.Configuration) (audit.AuditEvent, audit.Event, error) {
		if d < 0 {
			return "", audit.Event{}, dErrors.New(dErrors.CodeInvalidInput, "pass duration cannot be negative")
		}
		cfg.PassDuration = d
		return audit.EventPassDurationSet, audit.Event{Reason: strconv.FormatInt(int64(d/time.Second), 10) + "s"}, nil
	})
}

// SetMaxSupply accepts values below totalIssued; that only blocks further issuance.
// Values must fit a signed 64-bit column.
func (s *Service) SetMaxSupply(ctx context.Context, caller common.Address, maxSupply uint64) (*models.Configuration, error) {
	return s.updateConfig(ctx, caller, "set_max_supply", func(cfg *models.Configuration) (audit.AuditEvent, audit.Event, error) {
		if maxSupply > models.MaxSupplyLimit {
			return "", audit.Event{}, dErrors.New(dErrors.CodeInvalidInput, "max supply exceeds "+strconv.FormatUint(models.MaxSupplyLimit, 10))
		}
		cfg.MaxSupply = maxSupply
		return audit.EventMaxSupplySet, audit.Event{Amount: strconv.FormatUint(maxSupply, 10)}, nil
	})
}

func (s *Service) SetMetadataBase(ctx context.Context, caller common.Address, base string) (*models.Configuration, error) {
	return s.updateConfig(ctx, caller, "set_metadata_base", func(cfg *models.Configuration) (audit.AuditEvent, audit.Event, error) {
		cfg.MetadataBase = base
		return audit.EventMetadataBaseSet, audit.Event{Reason: base}, nil
	})
}

// TransferAdmin replaces the admin in one step. The old admin loses access immediately.
func (s *Service) TransferAdmin(ctx context.Context, caller, newAdmin common.Address) (*models.Configuration, error) {
	return s.updateConfig(ctx, caller, "transfer_admin", func(cfg *models.Configuration) (audit.AuditEvent, audit.Event, error) {
		if id.IsZeroAddress(newAdmin) {
			return "", audit.Event{}, dErrors.New(dErrors.CodeInvalidInput, "new admin cannot be the zero address")
		}
		cfg.Admin = newAdmin
		return audit.EventAdminTransferred, audit.Event{Subject: newAdmin.Hex()}, nil
	})
}

func (s *Service) updateConfig(ctx context.Context, caller common.Address, op string, apply func(cfg *models.Configuration) (audit.AuditEvent, audit.Event, error)) (*models.Configuration, error) {
	var out *models.Configuration
	err := s.adminTx(ctx, caller, op, func(ctx context.Context, cfg *models.Configuration) error {
		action, ev, err := apply(cfg)
		if err != nil {
			return err
		}
		cfg.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.SaveConfig(ctx, cfg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save configuration")
		}
		ev.Actor = caller.Hex()
		if err := s.emit(ctx, action, ev); err != nil {
			return err
		}
		out = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TokenURI returns metadataBase + id for issued passes and "" when no base is set.
func (s *Service) TokenURI(ctx context.Context, passID id.PassID) (string, error) {
	cfg, err := s.store.LoadConfig(ctx)
	if err != nil {
		return "", wrapStoreErr(err, "failed to load configuration")
	}
	if !cfg.IsIssued(passID) {
		return "", dErrors.New(dErrors.CodeNotFound, "pass not found")
	}
	return cfg.TokenURI(passID), nil
}
