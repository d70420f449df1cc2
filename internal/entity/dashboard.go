package entity

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type StageSummary struct {
	Stage string          `json:"stage"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

type DashboardStats struct {
	OpenPipelineValue decimal.Decimal `json:"open_pipeline_value"`
	OpenDeals         int             `json:"open_deals"`
	WonValue          decimal.Decimal `json:"won_value"`
	WonDeals          int             `json:"won_deals"`
	LostDeals         int             `json:"lost_deals"`
	WinRate           decimal.Decimal `json:"win_rate"`
	Stages            []StageSummary  `json:"stages"`
	LeadsByStatus     map[string]int  `json:"leads_by_status"`
	OpenTasks         int             `json:"open_tasks"`
	OverdueTasks      int             `json:"overdue_tasks"`
	ActiveEnrollments int             `json:"active_enrollments"`
	ActiveSessions    int             `json:"active_sessions"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

type DashboardRepositoryInterface interface {
	StageSummaries(ctx context.Context) ([]StageSummary, error)
	LeadsByStatus(ctx context.Context) (map[string]int, error)
	TaskCounts(ctx context.Context, now time.Time) (open int, overdue int, err error)
	ActiveEnrollments(ctx context.Context) (int, error)
	ActiveSessions(ctx context.Context) (int, error)
}
