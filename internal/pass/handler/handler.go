// Package handler exposes the pass service over HTTP.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"gatepass/internal/pass/models"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/requestcontext"
)

// Service defines the pass operations the handlers call.
// Returns domain objects, not HTTP response DTOs. Admin checks happen in the service.
type Service interface {
	Configuration(ctx context.Context) (*models.Configuration, error)
	IssuePass(ctx context.Context, payer, recipient common.Address) (*models.Pass, error)
	AdminIssue(ctx context.Context, caller, recipient common.Address) (*models.Pass, error)
	GetPass(ctx context.Context, passID id.PassID) (*models.PassView, error)
	IsPassValid(ctx context.Context, passID id.PassID) (bool, error)
	IsAddressActive(ctx context.Context, addr common.Address) (bool, error)
	TokenURI(ctx context.Context, passID id.PassID) (string, error)
	SetPassCost(ctx context.Context, caller common.Address, cost *big.Int) (*models.Configuration, error)
	SetPassDuration(ctx context.Context, caller common.Address, d time.Duration) (*models.Configuration, error)
	SetMaxSupply(ctx context.Context, caller common.Address, maxSupply uint64) (*models.Configuration, error)
	SetMetadataBase(ctx context.Context, caller common.Address, base string) (*models.Configuration, error)
	TransferAdmin(ctx context.Context, caller, newAdmin common.Address) (*models.Configuration, error)
	Withdraw(ctx context.Context, caller, to common.Address) (*big.Int, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the read-only routes. They need no caller identity.
func (h *Handler) Register(r chi.Router) {
	r.Get("/config", h.HandleGetConfig)
	r.Get("/passes/{id}", h.HandleGetPass)
	r.Get("/passes/{id}/valid", h.HandleIsPassValid)
	r.Get("/passes/{id}/uri", h.HandleTokenURI)
	r.Get("/addresses/{address}/active", h.HandleIsAddressActive)
}

// RegisterAuthenticated mounts routes that act as the caller. The router must
// install the auth middleware on r first.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/passes", h.HandleIssuePass)
	r.Post("/admin/passes", h.HandleAdminIssue)
	r.Put("/admin/config/pass-cost", h.HandleSetPassCost)
	r.Put("/admin/config/pass-duration", h.HandleSetPassDuration)
	r.Put("/admin/config/max-supply", h.HandleSetMaxSupply)
	r.Put("/admin/config/metadata-base", h.HandleSetMetadataBase)
	r.Post("/admin/transfer", h.HandleTransferAdmin)
	r.Post("/admin/withdraw", h.HandleWithdraw)
}

func (h *Handler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, err := h.service.Configuration(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get config failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}

// HandleIssuePass sells a pass; the authenticated caller pays.
func (h *Handler) HandleIssuePass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RecipientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	pass, err := h.service.IssuePass(ctx, caller, req.recipient)
	if err != nil {
		h.logger.WarnContext(ctx, "issue pass failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPassResponse(pass))
}

func (h *Handler) HandleAdminIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RecipientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	pass, err := h.service.AdminIssue(ctx, caller, req.recipient)
	if err != nil {
		h.logger.WarnContext(ctx, "admin issue failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPassResponse(pass))
}

func (h *Handler) HandleGetPass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passID, err := id.ParsePassID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.GetPass(ctx, passID)
	if err != nil {
		h.logger.DebugContext(ctx, "get pass failed", "error", err, "pass_id", passID, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPassViewResponse(view))
}

// HandleIsPassValid answers false for unissued ids instead of 404.
func (h *Handler) HandleIsPassValid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passID, err := id.ParsePassID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	valid, err := h.service.IsPassValid(ctx, passID)
	if err != nil {
		h.logger.ErrorContext(ctx, "validity check failed", "error", err, "pass_id", passID, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ValidityResponse{PassID: uint64(passID), Valid: valid})
}

func (h *Handler) HandleTokenURI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passID, err := id.ParsePassID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	uri, err := h.service.TokenURI(ctx, passID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &TokenURIResponse{PassID: uint64(passID), TokenURI: uri})
}

func (h *Handler) HandleIsAddressActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	active, err := h.service.IsAddressActive(ctx, addr)
	if err != nil {
		h.logger.ErrorContext(ctx, "activity check failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ActivityResponse{Address: addr.Hex(), Active: active})
}

func (h *Handler) HandleSetPassCost(w http.ResponseWriter, r *http.Request) {
	handleAdminUpdate(h, w, r, "set pass cost", func(ctx context.Context, caller common.Address, req *SetPassCostRequest) (*models.Configuration, error) {
		return h.service.SetPassCost(ctx, caller, req.cost)
	})
}

func (h *Handler) HandleSetPassDuration(w http.ResponseWriter, r *http.Request) {
	handleAdminUpdate(h, w, r, "set pass duration", func(ctx context.Context, caller common.Address, req *SetPassDurationRequest) (*models.Configuration, error) {
		return h.service.SetPassDuration(ctx, caller, req.duration())
	})
}

func (h *Handler) HandleSetMaxSupply(w http.ResponseWriter, r *http.Request) {
	handleAdminUpdate(h, w, r, "set max supply", func(ctx context.Context, caller common.Address, req *SetMaxSupplyRequest) (*models.Configuration, error) {
		return h.service.SetMaxSupply(ctx, caller, *req.MaxSupply)
	})
}

func (h *Handler) HandleSetMetadataBase(w http.ResponseWriter, r *http.Request) {
	handleAdminUpdate(h, w, r, "set metadata base", func(ctx context.Context, caller common.Address, req *SetMetadataBaseRequest) (*models.Configuration, error) {
		return h.service.SetMetadataBase(ctx, caller, req.MetadataBase)
	})
}

func (h *Handler) HandleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	handleAdminUpdate(h, w, r, "transfer admin", func(ctx context.Context, caller common.Address, req *TransferAdminRequest) (*models.Configuration, error) {
		return h.service.TransferAdmin(ctx, caller, req.newAdmin)
	})
}

func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[WithdrawRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	swept, err := h.service.Withdraw(ctx, caller, req.to)
	if err != nil {
		h.logger.WarnContext(ctx, "withdraw failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &WithdrawResponse{To: req.to.Hex(), Amount: amount(swept)})
}

// handleAdminUpdate decodes T, calls update as the caller, and writes the new configuration.
func handleAdminUpdate[T any](h *Handler, w http.ResponseWriter, r *http.Request, op string, update func(ctx context.Context, caller common.Address, req *T) (*models.Configuration, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[T](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cfg, err := update(ctx, caller, req)
	if err != nil {
		h.logger.WarnContext(ctx, op+" failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(cfg))
}
