package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type TemplateService interface {
	Create(ctx context.Context, in usecase.TemplateInput) (*entity.EmailTemplate, error)
	Get(ctx context.Context, id string) (*entity.EmailTemplate, error)
	Update(ctx context.Context, id string, in usecase.TemplateInput) (*entity.EmailTemplate, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.TemplateFilter) ([]*entity.EmailTemplate, error)
	Preview(ctx context.Context, id string, in usecase.PreviewInput) (*usecase.PreviewOutput, error)
}

type TemplateHandler struct {
	Templates TemplateService
	Logger    *zap.Logger
}

func NewTemplateHandler(templates TemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{Templates: templates, Logger: logger}
}

func (h *TemplateHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/active", h.SetActive)
	r.Post("/{id}/preview", h.Preview)
	r.Delete("/{id}", h.Delete)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Templates.List(r.Context(), entity.TemplateFilter{
		Category: queryString(r, "category"),
		Active:   queryBool(r, "active"),
		Search:   queryString(r, "q"),
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.TemplateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	tpl, err := h.Templates.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in usecase.TemplateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	tpl, err := h.Templates.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Active == nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "active is required")
		return
	}
	if err := h.Templates.SetActive(r.Context(), chi.URLParam(r, "id"), *req.Active); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview renders against the given lead, or sample data when the body is empty.
func (h *TemplateHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var in usecase.PreviewInput
	if r.ContentLength != 0 && !decodeJSON(w, r, &in) {
		return
	}
	out, err := h.Templates.Preview(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
