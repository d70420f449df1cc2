package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type DealService interface {
	Create(ctx context.Context, in usecase.DealInput) (*entity.Deal, error)
	Get(ctx context.Context, id string) (*entity.Deal, error)
	Update(ctx context.Context, id string, in usecase.DealInput) (*entity.Deal, error)
	MoveStage(ctx context.Context, id, stage string) (*entity.Deal, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.DealFilter) ([]*entity.Deal, error)
}

type DealHandler struct {
	Deals  DealService
	Logger *zap.Logger
}

func NewDealHandler(deals DealService, logger *zap.Logger) *DealHandler {
	return &DealHandler{Deals: deals, Logger: logger}
}

func (h *DealHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/stage", h.MoveStage)
	r.Delete("/{id}", h.Delete)
}

func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	deals, err := h.Deals.List(r.Context(), entity.DealFilter{
		Stage:   queryString(r, "stage"),
		OwnerID: queryString(r, "owner_id"),
		LeadID:  queryString(r, "lead_id"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deals)
}

func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.DealInput
	if !decodeJSON(w, r, &in) {
		return
	}
	deal, err := h.Deals.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, deal)
}

func (h *DealHandler) Get(w http.ResponseWriter, r *http.Request) {
	deal, err := h.Deals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in usecase.DealInput
	if !decodeJSON(w, r, &in) {
		return
	}
	deal, err := h.Deals.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func (h *DealHandler) MoveStage(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	deal, err := h.Deals.MoveStage(r.Context(), chi.URLParam(r, "id"), req.Stage)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deal)
}

func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Deals.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
