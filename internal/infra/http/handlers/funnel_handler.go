package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type FunnelService interface {
	Create(ctx context.Context, in usecase.FunnelInput) (*entity.EmailFunnel, error)
	Get(ctx context.Context, id string) (*entity.EmailFunnel, error)
	Update(ctx context.Context, id string, in usecase.FunnelInput) (*entity.EmailFunnel, error)
	List(ctx context.Context) ([]*entity.EmailFunnel, error)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	AddPhase(ctx context.Context, funnelID string, in usecase.PhaseInput) (*entity.FunnelPhase, error)
	UpdatePhase(ctx context.Context, funnelID, phaseID string, in usecase.PhaseInput) (*entity.FunnelPhase, error)
	RemovePhase(ctx context.Context, funnelID, phaseID string) error
	ReorderPhases(ctx context.Context, funnelID string, in usecase.ReorderInput) (*entity.EmailFunnel, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, funnelID string, in usecase.EnrollInput) (*entity.Enrollment, error)
	ListByFunnel(ctx context.Context, funnelID string) ([]*entity.Enrollment, error)
	Pause(ctx context.Context, id string) (*entity.Enrollment, error)
	Resume(ctx context.Context, id string) (*entity.Enrollment, error)
	Cancel(ctx context.Context, id string) (*entity.Enrollment, error)
}

type FunnelHandler struct {
	Funnels     FunnelService
	Enrollments EnrollmentService
	Logger      *zap.Logger
}

func NewFunnelHandler(funnels FunnelService, enrollments EnrollmentService, logger *zap.Logger) *FunnelHandler {
	return &FunnelHandler{Funnels: funnels, Enrollments: enrollments, Logger: logger}
}

func (h *FunnelHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Patch("/active", h.SetActive)

		r.Post("/phases", h.AddPhase)
		r.Put("/phases/order", h.ReorderPhases)
		r.Put("/phases/{phaseID}", h.UpdatePhase)
		r.Delete("/phases/{phaseID}", h.RemovePhase)

		r.Get("/enrollments", h.ListEnrollments)
		r.Post("/enrollments", h.Enroll)
	})
}

// EnrollmentRoutes serves state changes on a single enrollment.
func (h *FunnelHandler) EnrollmentRoutes(r chi.Router) {
	r.Post("/{id}/pause", h.enrollmentAction(h.Enrollments.Pause))
	r.Post("/{id}/resume", h.enrollmentAction(h.Enrollments.Resume))
	r.Post("/{id}/cancel", h.enrollmentAction(h.Enrollments.Cancel))
}

func (h *FunnelHandler) List(w http.ResponseWriter, r *http.Request) {
	funnels, err := h.Funnels.List(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, funnels)
}

func (h *FunnelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.FunnelInput
	if !decodeJSON(w, r, &in) {
		return
	}
	funnel, err := h.Funnels.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, funnel)
}

func (h *FunnelHandler) Get(w http.ResponseWriter, r *http.Request) {
	funnel, err := h.Funnels.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, funnel)
}

func (h *FunnelHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in usecase.FunnelInput
	if !decodeJSON(w, r, &in) {
		return
	}
	funnel, err := h.Funnels.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, funnel)
}

func (h *FunnelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Funnels.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FunnelHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Active == nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "active is required")
		return
	}
	if err := h.Funnels.SetActive(r.Context(), chi.URLParam(r, "id"), *req.Active); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FunnelHandler) AddPhase(w http.ResponseWriter, r *http.Request) {
	var in usecase.PhaseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	phase, err := h.Funnels.AddPhase(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, phase)
}

func (h *FunnelHandler) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	var in usecase.PhaseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	phase, err := h.Funnels.UpdatePhase(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "phaseID"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, phase)
}

func (h *FunnelHandler) RemovePhase(w http.ResponseWriter, r *http.Request) {
	if err := h.Funnels.RemovePhase(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "phaseID")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FunnelHandler) ReorderPhases(w http.ResponseWriter, r *http.Request) {
	var in usecase.ReorderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	funnel, err := h.Funnels.ReorderPhases(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, funnel)
}

func (h *FunnelHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.Enrollments.ListByFunnel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollments)
}

func (h *FunnelHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var in usecase.EnrollInput
	if !decodeJSON(w, r, &in) {
		return
	}
	enrollment, err := h.Enrollments.Enroll(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, enrollment)
}

func (h *FunnelHandler) enrollmentAction(action func(context.Context, string) (*entity.Enrollment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollment, err := action(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, h.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, enrollment)
	}
}
