package handler

import (
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/validation"
)

// HTTP Request DTOs. Validate parses wire strings into the unexported typed
// fields the handlers pass to the service.

// RecipientRequest is the body of POST /passes and POST /admin/passes.
type RecipientRequest struct {
	Recipient string `json:"recipient" validate:"required,max=42"`

	recipient common.Address
}

func (r *RecipientRequest) Normalize() {
	if r == nil {
		return
	}
	r.Recipient = strings.TrimSpace(r.Recipient)
}

func (r *RecipientRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	addr, err := id.RequireAddress(r.Recipient, "recipient")
	if err != nil {
		return err
	}
	r.recipient = addr
	return nil
}

type SetPassCostRequest struct {
	PassCost string `json:"pass_cost" validate:"required"`

	cost *big.Int
}

func (r *SetPassCostRequest) Normalize() {
	if r == nil {
		return
	}
	r.PassCost = strings.TrimSpace(r.PassCost)
}

func (r *SetPassCostRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckStringLength("pass_cost", r.PassCost, validation.MaxAmountDigits); err != nil {
		return err
	}
	cost, err := id.ParseAmount(r.PassCost)
	if err != nil {
		return err
	}
	r.cost = cost
	return nil
}

// maxDurationSeconds keeps seconds*time.Second inside time.Duration.
const maxDurationSeconds = uint64(math.MaxInt64 / int64(time.Second))

type SetPassDurationRequest struct {
	PassDurationSeconds *uint64 `json:"pass_duration_seconds" validate:"required"`
}

func (r *SetPassDurationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if *r.PassDurationSeconds > maxDurationSeconds {
		return dErrors.New(dErrors.CodeValidation, "pass_duration_seconds is too large")
	}
	return nil
}

func (r *SetPassDurationRequest) duration() time.Duration {
	return time.Duration(*r.PassDurationSeconds) * time.Second
}

type SetMaxSupplyRequest struct {
	MaxSupply *uint64 `json:"max_supply" validate:"required"`
}

func (r *SetMaxSupplyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if *r.MaxSupply > models.MaxSupplyLimit {
		return dErrors.New(dErrors.CodeValidation, "max_supply is too large")
	}
	return nil
}

// SetMetadataBaseRequest accepts an empty base, which clears token URIs.
type SetMetadataBaseRequest struct {
	MetadataBase string `json:"metadata_base" validate:"omitempty,uri"`
}

func (r *SetMetadataBaseRequest) Normalize() {
	if r == nil {
		return
	}
	r.MetadataBase = strings.TrimSpace(r.MetadataBase)
}

func (r *SetMetadataBaseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.CheckStringLength("metadata_base", r.MetadataBase, validation.MaxMetadataBaseLength)
}

type TransferAdminRequest struct {
	NewAdmin string `json:"new_admin" validate:"required,max=42"`

	newAdmin common.Address
}

func (r *TransferAdminRequest) Normalize() {
	if r == nil {
		return
	}
	r.NewAdmin = strings.TrimSpace(r.NewAdmin)
}

func (r *TransferAdminRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	addr, err := id.RequireAddress(r.NewAdmin, "new_admin")
	if err != nil {
		return err
	}
	r.newAdmin = addr
	return nil
}

type WithdrawRequest struct {
	To string `json:"to" validate:"required,max=42"`

	to common.Address
}

func (r *WithdrawRequest) Normalize() {
	if r == nil {
		return
	}
	r.To = strings.TrimSpace(r.To)
}

func (r *WithdrawRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	addr, err := id.RequireAddress(r.To, "to")
	if err != nil {
		return err
	}
	r.to = addr
	return nil
}
