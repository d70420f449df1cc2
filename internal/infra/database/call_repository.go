package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CallRepository struct {
	DB *sql.DB
}

func NewCallRepository(db *sql.DB) *CallRepository {
	return &CallRepository{DB: db}
}

func (r *CallRepository) JoinConference(ctx context.Context, callSid, conferenceSid string, sessionID *string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO calls (id, call_sid, session_id, conference_sid, status, started_at)
		VALUES ($1, $2, $3, $4, 'in_conference', NOW())
		ON CONFLICT (call_sid) DO UPDATE SET
			conference_sid = EXCLUDED.conference_sid,
			session_id = COALESCE(calls.session_id, EXCLUDED.session_id),
			status = 'in_conference'
	`, uuid.New().String(), callSid, sessionID, conferenceSid)
	return err
}

func (r *CallRepository) LeaveConference(ctx context.Context, callSid, status string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE calls SET status = $2, ended_at = $3 WHERE call_sid = $1`,
		callSid, status, at,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}
