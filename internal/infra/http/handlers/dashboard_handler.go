package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type DashboardService interface {
	Execute(ctx context.Context) (*entity.DashboardStats, error)
}

type DashboardHandler struct {
	Dashboard DashboardService
	Logger    *zap.Logger
}

func NewDashboardHandler(dashboard DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard, Logger: logger}
}

func (h *DashboardHandler) Handle(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Dashboard.Execute(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
