// Package faucet mounts dev-only routes that fund accounts on the in-memory
// payment ledger. The server only registers it when LEDGER_MODE=memory in a
// local environment.
package faucet

import (
	"log/slog"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/requestcontext"
)

// Funder is satisfied by *memory.PaymentToken.
type Funder interface {
	Credit(owner common.Address, amount *big.Int)
	Approve(owner, spender common.Address, amount *big.Int)
	Custody() common.Address
}

type Handler struct {
	funder Funder
	logger *slog.Logger
}

func New(funder Funder, logger *slog.Logger) *Handler {
	return &Handler{funder: funder, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/dev/faucet", h.HandleCredit)
}

// RegisterAuthenticated mounts approval, which always acts for the caller.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/dev/approve", h.HandleApprove)
}

type CreditRequest struct {
	Account string `json:"account" validate:"required,max=42"`
	Amount  string `json:"amount" validate:"required"`

	account common.Address
	amount  *big.Int
}

func (r *CreditRequest) Normalize() {
	r.Account = strings.TrimSpace(r.Account)
	r.Amount = strings.TrimSpace(r.Amount)
}

func (r *CreditRequest) Validate() error {
	addr, err := id.RequireAddress(r.Account, "account")
	if err != nil {
		return err
	}
	amount, err := id.ParseAmount(r.Amount)
	if err != nil {
		return err
	}
	r.account, r.amount = addr, amount
	return nil
}

type ApproveRequest struct {
	Amount string `json:"amount" validate:"required"`

	amount *big.Int
}

func (r *ApproveRequest) Validate() error {
	amount, err := id.ParseAmount(r.Amount)
	if err != nil {
		return err
	}
	r.amount = amount
	return nil
}

type BalanceChangeResponse struct {
	Account string `json:"account"`
	Spender string `json:"spender,omitempty"`
	Amount  string `json:"amount"`
}

func (h *Handler) HandleCredit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreditRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	h.funder.Credit(req.account, req.amount)
	h.logger.InfoContext(ctx, "dev faucet credited account",
		"account", req.account.Hex(),
		"amount", req.amount.String(),
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusOK, &BalanceChangeResponse{Account: req.account.Hex(), Amount: req.amount.String()})
}

// HandleApprove sets the caller's allowance for the custody account.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if id.IsZeroAddress(h.funder.Custody()) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "custody account not configured"))
		return
	}

	h.funder.Approve(caller, h.funder.Custody(), req.amount)
	httputil.WriteJSON(w, http.StatusOK, &BalanceChangeResponse{
		Account: caller.Hex(),
		Spender: h.funder.Custody().Hex(),
		Amount:  req.amount.String(),
	})
}
