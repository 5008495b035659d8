// Package handler is the thin HTTP layer over the compliance engine. It
// parses requests, resolves the authenticated caller, and translates domain
// errors into JSON responses; business rules stay in the engine.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trellis/internal/platform/middleware"
	"trellis/pkg/domain"
	dErrors "trellis/pkg/domain-errors"
)

// Registrar is the local identity registry's registration surface. Optional:
// deployments with an external verification service omit it.
type Registrar interface {
	Register(ctx context.Context, addrs ...domain.Address) error
	Deregister(ctx context.Context, addrs ...domain.Address) error
}

type Handler struct {
	engine    Engine
	registrar Registrar
	log       *slog.Logger
}

func New(engine Engine, registrar Registrar, log *slog.Logger) *Handler {
	return &Handler{engine: engine, registrar: registrar, log: log}
}

// RegisterPublic wires the read-only endpoints. No authentication required.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/token", h.handleTokenInfo)
	r.Get("/token/supply", h.handleSupply)
	r.Get("/token/holders/{address}", h.handleHolder)
}

// RegisterProtected wires the mutating endpoints. The router must carry the
// auth middleware so the caller address is present in the context.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/token/init", h.handleInit)
	r.Post("/token/mint", h.handleMint)
	r.Post("/token/burn", h.handleBurn)
	r.Post("/token/transfer", h.handleTransfer)
	r.Post("/token/mint-batch", h.handleBatchMint)
	r.Post("/token/transfer-batch", h.handleBatchTransfer)
	r.Post("/token/freeze-partial", h.handleFreezePartial)
	r.Post("/token/unfreeze-partial", h.handleUnfreezePartial)
	r.Post("/token/freeze-address", h.handleFreezeAddress)
	r.Post("/token/pause", h.handlePause)
	r.Post("/token/unpause", h.handleUnpause)
	r.Post("/token/agents", h.handleAddAgent)
	r.Delete("/token/agents/{address}", h.handleRemoveAgent)
	r.Post("/token/ownership", h.handleTransferOwnership)
	if h.registrar != nil {
		r.Post("/registry/holders", h.handleRegisterHolders)
		r.Delete("/registry/holders", h.handleDeregisterHolders)
	}
}

func (h *Handler) handleInit(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.engine.Init(r.Context(), middleware.GetCaller(r.Context()),
		req.Name, req.Symbol, req.Decimals, req.MaxSupply)
	h.respond(w, err, http.StatusCreated)
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !h.decode(w, r, &req) {
		return
	}
	addr, err := domain.ParseAddress(req.Address)
	if err != nil {
		h.writeError(w, err)
		return
	}
	err = h.engine.Mint(r.Context(), middleware.GetCaller(r.Context()), addr, req.Amount)
	h.respond(w, err, http.StatusOK)
}

func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !h.decode(w, r, &req) {
		return
	}
	addr, err := domain.ParseAddress(req.Address)
	if err != nil {
		h.writeError(w, err)
		return
	}
	err = h.engine.Burn(r.Context(), middleware.GetCaller(r.Context()), addr, req.Amount)
	h.respond(w, err, http.StatusOK)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		h.writeError(w, err)
		return
	}
	err = h.engine.Transfer(r.Context(), middleware.GetCaller(r.Context()), to, req.Amount)
	h.respond(w, err, http.StatusOK)
}

func (h *Handler) handleBatchMint(w http.ResponseWriter, r *http.Request) {
	h.handleBatch(w, r, h.engine.BatchMint)
}

func (h *Handler) handleBatchTransfer(w http.ResponseWriter, r *http.Request) {
	h.handleBatch(w, r, h.engine.BatchTransfer)
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, caller domain.Address, addrs []domain.Address, amounts []uint64) error) {
	var req batchRequest
	if !h.decode(w, r, &req) {
		return
	}
	addrs := make([]domain.Address, 0, len(req.Addresses))
	for _, raw := range req.Addresses {
		addr, err := domain.ParseAddress(raw)
		if err != nil {
			h.writeError(w, err)
			return
		}
		addrs = append(addrs, addr)
	}
	err := op(r.Context(), middleware.GetCaller(r.Context()), addrs, req.Amounts)
	h.respond(w, err, http.StatusOK)
}

func (h *Handler) handleFreezePartial(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !h.decode(w, r, &req) {
		return
	}
	addr, err := domain.ParseAddress(req.Address)
	if err != nil {
		h.writeError(w, err)
		return
	}
	err = h.engine.FreezePartialTokens(r.Context(), middleware.GetCaller(r.Context()), addr, req.Amount)
	h.respond(w, err, http.StatusOK)
}

func (h *Handler) handleUnfreezePartial(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !h.decode(w, r, &req) {
		return
	}
	addr, err := domain.ParseAddress(req.Address)
	if err != nil {
		h.writeError(w, err)
		return
	}
	err = h.engine.UnfreezePartialTokens(r.Context(), middleware.GetCaller(r.Context()), addr, req.Amount)
	h.respond(w, err, http.StatusOK)
}

func (h *Handler) handleFreezeAddress(w http.ResponseWriter, r *http.Request) {
	var req freezeAddressRequest
	if !h.decode(w, r, &req) {
		return
	}
	addr, err := domain.ParseAddress(req.Address)
	if err != nil {
		h.writeError(w, err)
		return
	}
	err = h.engine.SetAddressFrozen(r.Context(), middleware.GetCaller(r.Context()), addr, req.Frozen)
	h.respond(w, err, http.StatusOK)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.engine.Pause(r.Context(), middleware.GetCaller(r.Context())), http.StatusOK)
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.engine.Unpause(r.Context(), middleware.GetCaller(r.Context())), http.StatusOK)
}

func (h *Handler) handleAddAgent(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !h.decode(w, r, &req) {
		return
	}
	addr, err := domain.ParseAddress(req.Address)
	if err != nil {
		h.writeError(w, err)
		return
	}
	err = h.engine.AddAgent(r.Context(), middleware.GetCaller(r.Context()), addr)
	h.respond(w, err, http.StatusCreated)
}

func (h *Handler) handleRemoveAgent(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	err = h.engine.RemoveAgent(r.Context(), middleware.GetCaller(r.Context()), addr)
	h.respond(w, err, http.StatusOK)
}

func (h *Handler) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !h.decode(w, r, &req) {
		return
	}
	addr, err := domain.ParseAddress(req.Address)
	if err != nil {
		h.writeError(w, err)
		return
	}
	err = h.engine.TransferOwnership(r.Context(), middleware.GetCaller(r.Context()), addr)
	h.respond(w, err, http.StatusOK)
}

func (h *Handler) handleRegisterHolders(w http.ResponseWriter, r *http.Request) {
	h.handleRegistry(w, r, h.registrar.Register, http.StatusCreated)
}

func (h *Handler) handleDeregisterHolders(w http.ResponseWriter, r *http.Request) {
	h.handleRegistry(w, r, h.registrar.Deregister, http.StatusOK)
}

func (h *Handler) handleRegistry(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, addrs ...domain.Address) error, okStatus int) {
	var req holdersRequest
	if !h.decode(w, r, &req) {
		return
	}
	addrs := make([]domain.Address, 0, len(req.Addresses))
	for _, raw := range req.Addresses {
		addr, err := domain.ParseAddress(raw)
		if err != nil {
			h.writeError(w, err)
			return
		}
		addrs = append(addrs, addr)
	}
	h.respond(w, op(r.Context(), addrs...), okStatus)
}

func (h *Handler) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	meta := h.engine.Metadata()
	h.writeJSON(w, http.StatusOK, tokenInfoResponse{
		Initialized: h.engine.Initialized(),
		Name:        meta.Name,
		Symbol:      meta.Symbol,
		Decimals:    meta.Decimals,
		Paused:      h.engine.Paused(),
		Owner:       h.engine.Owner().String(),
	})
}

func (h *Handler) handleSupply(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, supplyResponse{
		TotalSupply:    h.engine.TotalSupply(),
		MaxTotalSupply: h.engine.MaxTotalSupply(),
	})
}

func (h *Handler) handleHolder(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, holderResponse{
		Address:   addr.String(),
		Balance:   h.engine.BalanceOf(addr),
		Frozen:    h.engine.FrozenTokens(addr),
		Available: h.engine.AvailableBalance(addr),
		IsFrozen:  h.engine.IsAddressFrozen(addr),
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid request body"))
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, err error, okStatus int) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, okStatus, statusResponse{Status: "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn("write response failed", "error", err)
	}
}

// writeError centralizes domain error translation to HTTP responses, keeping
// error envelopes consistent across handlers.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   string(code),
		Message: err.Error(),
	})
}
