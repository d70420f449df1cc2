package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type LeadService interface {
	Create(ctx context.Context, in usecase.LeadInput) (*entity.Lead, error)
	Get(ctx context.Context, id string) (*entity.Lead, error)
	Update(ctx context.Context, id string, in usecase.LeadInput) (*entity.Lead, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error)
	Capture(ctx context.Context, in usecase.LeadInput) (*entity.Lead, error)
}

type LeadHandler struct {
	Leads  LeadService
	Logger *zap.Logger
}

func NewLeadHandler(leads LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{Leads: leads, Logger: logger}
}

func (h *LeadHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Delete)
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	leads, err := h.Leads.List(r.Context(), entity.LeadFilter{
		Status:  queryString(r, "status"),
		OwnerID: queryString(r, "owner_id"),
		Search:  queryString(r, "q"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.LeadInput
	if !decodeJSON(w, r, &in) {
		return
	}
	lead, err := h.Leads.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Leads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in usecase.LeadInput
	if !decodeJSON(w, r, &in) {
		return
	}
	lead, err := h.Leads.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Leads.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Leads.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type CaptureLeadResponse struct {
	Success bool   `json:"success"`
	LeadID  string `json:"lead_id,omitempty"`
}

// CaptureLead is the public website form endpoint. Rate limiting is applied
// by the router.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var in usecase.LeadInput
	if !decodeJSON(w, r, &in) {
		return
	}
	lead, err := h.Leads.Capture(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, CaptureLeadResponse{Success: true, LeadID: lead.ID})
}
