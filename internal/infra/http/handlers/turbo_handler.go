package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type TurboService interface {
	JoinPool(ctx context.Context, repID string) error
	LeavePool(ctx context.Context, repID string) error
	ListPool(ctx context.Context) ([]*entity.PooledRep, error)
	StartSession(ctx context.Context) (*entity.TurboSession, error)
	GetSession(ctx context.Context, id string) (*entity.TurboSession, error)
	EndSession(ctx context.Context, id string) (*entity.TurboSession, error)
	ReleaseRep(ctx context.Context, sessionID string) (bool, error)
}

type TurboHandler struct {
	Turbo  TurboService
	Logger *zap.Logger
}

func NewTurboHandler(turbo TurboService, logger *zap.Logger) *TurboHandler {
	return &TurboHandler{Turbo: turbo, Logger: logger}
}

func (h *TurboHandler) Routes(r chi.Router) {
	r.Get("/pool", h.ListPool)
	r.Post("/pool/join", h.JoinPool)
	r.Post("/pool/leave", h.LeavePool)
	r.Post("/sessions", h.StartSession)
	r.Get("/sessions/{id}", h.GetSession)
	r.Post("/sessions/{id}/end", h.EndSession)
	r.Post("/sessions/{id}/release", h.ReleaseRep)
}

type poolRequest struct {
	RepID string `json:"rep_id"`
}

// repID reads rep_id from the body and falls back to the authenticated user.
func (h *TurboHandler) repID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req poolRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return "", false
	}
	id := strings.TrimSpace(req.RepID)
	if id == "" {
		id = middleware.UserID(r.Context())
	}
	if id == "" {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "rep_id is required")
		return "", false
	}
	return id, true
}

func (h *TurboHandler) ListPool(w http.ResponseWriter, r *http.Request) {
	reps, err := h.Turbo.ListPool(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reps)
}

func (h *TurboHandler) JoinPool(w http.ResponseWriter, r *http.Request) {
	id, ok := h.repID(w, r)
	if !ok {
		return
	}
	if err := h.Turbo.JoinPool(r.Context(), id); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TurboHandler) LeavePool(w http.ResponseWriter, r *http.Request) {
	id, ok := h.repID(w, r)
	if !ok {
		return
	}
	if err := h.Turbo.LeavePool(r.Context(), id); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TurboHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Turbo.StartSession(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *TurboHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Turbo.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *TurboHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Turbo.EndSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *TurboHandler) ReleaseRep(w http.ResponseWriter, r *http.Request) {
	released, err := h.Turbo.ReleaseRep(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"released": released})
}
