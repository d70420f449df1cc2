package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type EmailFunnelRepository struct {
	DB *sql.DB
}

func NewEmailFunnelRepository(db *sql.DB) *EmailFunnelRepository {
	return &EmailFunnelRepository{DB: db}
}

const funnelSelect = `
	SELECT f.id, f.name, f.description, f.is_active, f.created_at, f.updated_at,
		(SELECT COUNT(*) FROM email_funnel_enrollments e WHERE e.funnel_id = f.id AND e.status = 'active')
	FROM email_funnels f
`

const phaseSelect = `
	SELECT p.id, p.funnel_id, p.template_id, t.name, p.name, p.position, p.delay_hours
	FROM email_funnel_phases p
	JOIN email_templates t ON t.id = p.template_id
`

func (r *EmailFunnelRepository) Create(ctx context.Context, funnel *entity.EmailFunnel) error {
	query := `
		INSERT INTO email_funnels (id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query,
		funnel.ID,
		funnel.Name,
		nullString(funnel.Description),
		funnel.IsActive,
		funnel.CreatedAt,
		funnel.UpdatedAt,
	)
	return err
}

func (r *EmailFunnelRepository) FindByID(ctx context.Context, id string) (*entity.EmailFunnel, error) {
	funnel, err := scanFunnel(r.DB.QueryRowContext(ctx, funnelSelect+` WHERE f.id = $1 AND f.is_deleted = FALSE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	phases, err := r.loadPhases(ctx, []string{funnel.ID})
	if err != nil {
		return nil, err
	}
	funnel.Phases = phases[funnel.ID]
	return funnel, nil
}

func (r *EmailFunnelRepository) Update(ctx context.Context, funnel *entity.EmailFunnel) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE email_funnels SET name = $2, description = $3, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		funnel.ID, funnel.Name, nullString(funnel.Description),
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *EmailFunnelRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE email_funnels SET is_active = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		id, active,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *EmailFunnelRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE email_funnels SET is_deleted = TRUE, is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		id,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *EmailFunnelRepository) List(ctx context.Context) ([]*entity.EmailFunnel, error) {
	rows, err := r.DB.QueryContext(ctx, funnelSelect+` WHERE f.is_deleted = FALSE ORDER BY f.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	funnels := make([]*entity.EmailFunnel, 0)
	ids := make([]string, 0)
	for rows.Next() {
		funnel, err := scanFunnel(rows)
		if err != nil {
			return nil, err
		}
		funnels = append(funnels, funnel)
		ids = append(ids, funnel.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return funnels, nil
	}

	phases, err := r.loadPhases(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, f := range funnels {
		f.Phases = phases[f.ID]
	}
	return funnels, nil
}

// AddPhase appends the phase after the current last position and writes the
// assigned position back into phase.
func (r *EmailFunnelRepository) AddPhase(ctx context.Context, phase *entity.FunnelPhase) error {
	query := `
		INSERT INTO email_funnel_phases (id, funnel_id, template_id, name, position, delay_hours)
		SELECT $1, $2, $3, $4, COALESCE(MAX(position), 0) + 1, $5
		FROM email_funnel_phases WHERE funnel_id = $2
		RETURNING position
	`
	return r.DB.QueryRowContext(ctx, query,
		phase.ID,
		phase.FunnelID,
		phase.TemplateID,
		phase.Name,
		phase.DelayHours,
	).Scan(&phase.Position)
}

func (r *EmailFunnelRepository) UpdatePhase(ctx context.Context, phase *entity.FunnelPhase) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE email_funnel_phases SET template_id = $3, name = $4, delay_hours = $5 WHERE id = $1 AND funnel_id = $2`,
		phase.ID, phase.FunnelID, phase.TemplateID, phase.Name, phase.DelayHours,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

// DeletePhase removes the phase and shifts later phases down so positions stay 1..n.
func (r *EmailFunnelRepository) DeletePhase(ctx context.Context, funnelID, phaseID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var position int
	err = tx.QueryRowContext(ctx,
		`DELETE FROM email_funnel_phases WHERE id = $1 AND funnel_id = $2 RETURNING position`,
		phaseID, funnelID,
	).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE email_funnel_phases SET position = position - 1 WHERE funnel_id = $1 AND position > $2`,
		funnelID, position,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// ReorderPhases assigns positions 1..n following phaseIDs.
func (r *EmailFunnelRepository) ReorderPhases(ctx context.Context, funnelID string, phaseIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, id := range phaseIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE email_funnel_phases SET position = $3 WHERE id = $1 AND funnel_id = $2`,
			id, funnelID, i+1,
		)
		if err != nil {
			return err
		}
		if err := checkAffected(res, entity.ErrNotFound); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE email_funnels SET updated_at = NOW() WHERE id = $1`, funnelID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *EmailFunnelRepository) loadPhases(ctx context.Context, funnelIDs []string) (map[string][]entity.FunnelPhase, error) {
	rows, err := r.DB.QueryContext(ctx,
		phaseSelect+` WHERE p.funnel_id = ANY($1) ORDER BY p.funnel_id, p.position`,
		pq.Array(funnelIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phases := make(map[string][]entity.FunnelPhase, len(funnelIDs))
	for _, id := range funnelIDs {
		phases[id] = []entity.FunnelPhase{}
	}
	for rows.Next() {
		phase, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases[phase.FunnelID] = append(phases[phase.FunnelID], *phase)
	}
	return phases, rows.Err()
}

func scanFunnel(row rowScanner) (*entity.EmailFunnel, error) {
	var (
		funnel      entity.EmailFunnel
		description sql.NullString
	)
	err := row.Scan(
		&funnel.ID,
		&funnel.Name,
		&description,
		&funnel.IsActive,
		&funnel.CreatedAt,
		&funnel.UpdatedAt,
		&funnel.ActiveEnrollments,
	)
	if err != nil {
		return nil, err
	}
	funnel.Description = description.String
	return &funnel, nil
}

func scanPhase(row rowScanner) (*entity.FunnelPhase, error) {
	var phase entity.FunnelPhase
	err := row.Scan(
		&phase.ID,
		&phase.FunnelID,
		&phase.TemplateID,
		&phase.TemplateName,
		&phase.Name,
		&phase.Position,
		&phase.DelayHours,
	)
	if err != nil {
		return nil, err
	}
	return &phase, nil
}
