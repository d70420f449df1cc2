package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type DashboardRepository struct {
	DB *sql.DB
}

func NewDashboardRepository(db *sql.DB) *DashboardRepository {
	return &DashboardRepository{DB: db}
}

func (r *DashboardRepository) StageSummaries(ctx context.Context) ([]entity.StageSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT stage, COUNT(*), COALESCE(SUM(value), 0)
		FROM deals
		WHERE is_deleted = FALSE
		GROUP BY stage
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]entity.StageSummary, 0)
	for rows.Next() {
		var s entity.StageSummary
		if err := rows.Scan(&s.Stage, &s.Count, &s.Value); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *DashboardRepository) LeadsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM leads WHERE is_deleted = FALSE GROUP BY status`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *DashboardRepository) TaskCounts(ctx context.Context, now time.Time) (int, int, error) {
	var open, overdue int
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'pending' AND due_date < $1)
		FROM tasks
		WHERE is_deleted = FALSE
	`, now).Scan(&open, &overdue)
	return open, overdue, err
}

func (r *DashboardRepository) ActiveEnrollments(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_funnel_enrollments WHERE status = 'active'`,
	).Scan(&n)
	return n, err
}

// ActiveSessions counts sessions that have not ended, waiting ones included.
func (r *DashboardRepository) ActiveSessions(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM turbo_mode_sessions WHERE status <> 'ended'`,
	).Scan(&n)
	return n, err
}
