package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type EnrollmentRepository struct {
	DB *sql.DB
}

func NewEnrollmentRepository(db *sql.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

const enrollmentSelect = `
	SELECT e.id, e.funnel_id, e.lead_id, TRIM(l.first_name || ' ' || COALESCE(l.last_name, '')), l.email,
		e.status, e.current_phase, e.next_send_at, e.last_sent_at, e.last_error,
		e.enrolled_at, e.completed_at, e.updated_at
	FROM email_funnel_enrollments e
	JOIN leads l ON l.id = e.lead_id
`

func (r *EnrollmentRepository) Create(ctx context.Context, e *entity.Enrollment) error {
	query := `
		INSERT INTO email_funnel_enrollments (id, funnel_id, lead_id, status, current_phase, next_send_at, enrolled_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID,
		e.FunnelID,
		e.LeadID,
		e.Status,
		e.CurrentPhase,
		e.NextSendAt,
		e.EnrolledAt,
		e.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrConflict
	}
	return err
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*entity.Enrollment, error) {
	e, err := scanEnrollment(r.DB.QueryRowContext(ctx, enrollmentSelect+` WHERE e.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return e, err
}

func (r *EnrollmentRepository) ListByFunnel(ctx context.Context, funnelID string) ([]*entity.Enrollment, error) {
	rows, err := r.DB.QueryContext(ctx, enrollmentSelect+` WHERE e.funnel_id = $1 ORDER BY e.enrolled_at DESC`, funnelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]*entity.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

func (r *EnrollmentRepository) Update(ctx context.Context, e *entity.Enrollment) error {
	query := `
		UPDATE email_funnel_enrollments SET
			status = $2, current_phase = $3, next_send_at = $4, last_sent_at = $5,
			last_error = $6, completed_at = $7, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.ID,
		e.Status,
		e.CurrentPhase,
		e.NextSendAt,
		e.LastSentAt,
		nullString(e.LastError),
		e.CompletedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrConflict
	}
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *EnrollmentRepository) Reschedule(ctx context.Context, id string, at time.Time, lastError string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE email_funnel_enrollments SET next_send_at = $2, last_error = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, id, at, nullString(lastError))
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *EnrollmentRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.Enrollment, error) {
	query := `
		UPDATE email_funnel_enrollments SET next_send_at = NULL, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM email_funnel_enrollments
			WHERE status = 'active' AND next_send_at <= $1
			ORDER BY next_send_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, funnel_id, lead_id, status, current_phase, enrolled_at, updated_at
	`
	rows, err := r.DB.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claimed := make([]*entity.Enrollment, 0)
	for rows.Next() {
		var e entity.Enrollment
		if err := rows.Scan(
			&e.ID,
			&e.FunnelID,
			&e.LeadID,
			&e.Status,
			&e.CurrentPhase,
			&e.EnrolledAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		claimed = append(claimed, &e)
	}
	return claimed, rows.Err()
}

func scanEnrollment(row rowScanner) (*entity.Enrollment, error) {
	var (
		e                                   entity.Enrollment
		nextSendAt, lastSentAt, completedAt sql.NullTime
		lastError                           sql.NullString
	)
	err := row.Scan(
		&e.ID,
		&e.FunnelID,
		&e.LeadID,
		&e.LeadName,
		&e.LeadEmail,
		&e.Status,
		&e.CurrentPhase,
		&nextSendAt,
		&lastSentAt,
		&lastError,
		&e.EnrolledAt,
		&completedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.NextSendAt = nullTimePtr(nextSendAt)
	e.LastSentAt = nullTimePtr(lastSentAt)
	e.CompletedAt = nullTimePtr(completedAt)
	e.LastError = lastError.String
	return &e, nil
}
