package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type TaskService interface {
	Create(ctx context.Context, in usecase.TaskInput) (*entity.Task, error)
	Get(ctx context.Context, id string) (*entity.Task, error)
	Update(ctx context.Context, id string, in usecase.TaskInput) (*entity.Task, error)
	ToggleStatus(ctx context.Context, id string) (*entity.Task, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error)
}

type TaskHandler struct {
	Tasks  TaskService
	Logger *zap.Logger
}

func NewTaskHandler(tasks TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Logger: logger}
}

func (h *TaskHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/toggle", h.Toggle)
	r.Delete("/{id}", h.Delete)
}

// List accepts assigned_to=me as a shortcut for the authenticated user.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	assignee := queryString(r, "assigned_to")
	if assignee == "me" {
		assignee = middleware.UserID(r.Context())
	}
	overdue := queryBool(r, "overdue")

	tasks, err := h.Tasks.List(r.Context(), entity.TaskFilter{
		Status:     queryString(r, "status"),
		AssignedTo: assignee,
		LeadID:     queryString(r, "lead_id"),
		DealID:     queryString(r, "deal_id"),
		Overdue:    overdue != nil && *overdue,
		Now:        time.Now(),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.AssignedTo == "" {
		in.AssignedTo = middleware.UserID(r.Context())
	}
	task, err := h.Tasks.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.Tasks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in usecase.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	task, err := h.Tasks.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	task, err := h.Tasks.ToggleStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
