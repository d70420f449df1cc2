package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type TurboRepository struct {
	DB *sql.DB
}

func NewTurboRepository(db *sql.DB) *TurboRepository {
	return &TurboRepository{DB: db}
}

func (r *TurboRepository) JoinPool(ctx context.Context, repID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO turbo_rep_pool (rep_id, status, updated_at)
		VALUES ($1, 'available', NOW())
		ON CONFLICT (rep_id) DO NOTHING
	`, repID)
	return err
}

func (r *TurboRepository) LeavePool(ctx context.Context, repID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM turbo_rep_pool WHERE rep_id = $1`, repID)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *TurboRepository) ListPool(ctx context.Context) ([]*entity.PooledRep, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT rep_id, session_id, status, updated_at FROM turbo_rep_pool ORDER BY updated_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reps := make([]*entity.PooledRep, 0)
	for rows.Next() {
		var (
			rep       entity.PooledRep
			sessionID sql.NullString
		)
		if err := rows.Scan(&rep.RepID, &sessionID, &rep.Status, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		rep.SessionID = nullStringPtr(sessionID)
		reps = append(reps, &rep)
	}
	return reps, rows.Err()
}

// StartSession picks the rep that has been available the longest. Concurrent
// starts skip reps already locked by another transaction.
func (r *TurboRepository) StartSession(ctx context.Context, session *entity.TurboSession) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var repID string
	err = tx.QueryRowContext(ctx, `
		SELECT rep_id FROM turbo_rep_pool
		WHERE status = 'available'
		ORDER BY updated_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`).Scan(&repID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNoRepAvailable
	}
	if err != nil {
		return err
	}

	session.RepID = repID
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO turbo_mode_sessions (id, rep_id, status, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, session.ID, session.RepID, session.Status, session.StartedAt, session.UpdatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE turbo_rep_pool SET status = 'busy', session_id = $2, updated_at = NOW()
		WHERE rep_id = $1
	`, repID, session.ID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *TurboRepository) FindSession(ctx context.Context, id string) (*entity.TurboSession, error) {
	var (
		s             entity.TurboSession
		conferenceSid sql.NullString
		endedAt       sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, rep_id, status, conference_sid, started_at, ended_at, updated_at
		FROM turbo_mode_sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.RepID, &s.Status, &conferenceSid, &s.StartedAt, &endedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.ConferenceSid = nullStringPtr(conferenceSid)
	s.EndedAt = nullTimePtr(endedAt)
	return &s, nil
}

// AttachConference binds the conference and activates the session. Ended sessions
// are left untouched and reported as not found.
func (r *TurboRepository) AttachConference(ctx context.Context, sessionID, conferenceSid string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE turbo_mode_sessions SET conference_sid = $2, status = 'active', updated_at = NOW()
		WHERE id = $1 AND status <> 'ended'
	`, sessionID, conferenceSid)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *TurboRepository) EndSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE turbo_mode_sessions
		SET status = 'ended', conference_sid = NULL, ended_at = COALESCE(ended_at, $2), updated_at = NOW()
		WHERE id = $1
	`, sessionID, endedAt)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *TurboRepository) ReleaseRep(ctx context.Context, sessionID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE turbo_rep_pool SET status = 'available', session_id = NULL, updated_at = NOW()
		WHERE session_id = $1
	`, sessionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TurboRepository) ExpireWaiting(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		WITH expired AS (
			UPDATE turbo_mode_sessions
			SET status = 'ended', ended_at = NOW(), updated_at = NOW()
			WHERE status = 'waiting' AND started_at < $1
			RETURNING id
		), released AS (
			UPDATE turbo_rep_pool p
			SET status = 'available', session_id = NULL, updated_at = NOW()
			FROM expired
			WHERE p.session_id = expired.id
		)
		SELECT id FROM expired
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
