package handler

import (
	"math/big"
	"time"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
)

// Amounts are decimal strings; timestamps on passes are Unix seconds.

type ConfigResponse struct {
	PassCost            string    `json:"pass_cost"`
	PassDurationSeconds uint64    `json:"pass_duration_seconds"`
	MaxSupply           uint64    `json:"max_supply"`
	TotalIssued         uint64    `json:"total_issued"`
	MetadataBase        string    `json:"metadata_base"`
	Admin               string    `json:"admin"`
	PaymentToken        string    `json:"payment_token"`
	Custody             string    `json:"custody"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type PassResponse struct {
	ID        uint64 `json:"id"`
	Recipient string `json:"recipient"`
	Payer     string `json:"payer,omitempty"`
	PricePaid string `json:"price_paid"`
	Kind      string `json:"kind"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

type PassViewResponse struct {
	PassResponse
	Owner    string `json:"owner"`
	Valid    bool   `json:"valid"`
	TokenURI string `json:"token_uri"`
}

type ValidityResponse struct {
	PassID uint64 `json:"pass_id"`
	Valid  bool   `json:"valid"`
}

type ActivityResponse struct {
	Address string `json:"address"`
	Active  bool   `json:"active"`
}

type TokenURIResponse struct {
	PassID   uint64 `json:"pass_id"`
	TokenURI string `json:"token_uri"`
}

type WithdrawResponse struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// Response mapping functions - convert domain objects to HTTP DTOs

func toConfigResponse(c *models.Configuration) *ConfigResponse {
	return &ConfigResponse{
		PassCost:            amount(c.PassCost),
		PassDurationSeconds: uint64(c.PassDuration / time.Second),
		MaxSupply:           c.MaxSupply,
		TotalIssued:         c.TotalIssued,
		MetadataBase:        c.MetadataBase,
		Admin:               c.Admin.Hex(),
		PaymentToken:        c.PaymentToken.Hex(),
		Custody:             c.Custody.Hex(),
		UpdatedAt:           c.UpdatedAt,
	}
}

func toPassResponse(p *models.Pass) PassResponse {
	resp := PassResponse{
		ID:        uint64(p.ID),
		Recipient: p.Recipient.Hex(),
		PricePaid: amount(p.PricePaid),
		Kind:      string(p.Kind),
		IssuedAt:  p.IssuedAt.Unix(),
		ExpiresAt: p.ExpiresAt.Unix(),
	}
	if !id.IsZeroAddress(p.Payer) {
		resp.Payer = p.Payer.Hex()
	}
	return resp
}

func toPassViewResponse(v *models.PassView) *PassViewResponse {
	return &PassViewResponse{
		PassResponse: toPassResponse(v.Pass),
		Owner:        v.Owner.Hex(),
		Valid:        v.Valid,
		TokenURI:     v.TokenURI,
	}
}

func amount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
