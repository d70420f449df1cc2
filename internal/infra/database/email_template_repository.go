package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type EmailTemplateRepository struct {
	DB *sql.DB
}

func NewEmailTemplateRepository(db *sql.DB) *EmailTemplateRepository {
	return &EmailTemplateRepository{DB: db}
}

const templateColumns = `id, name, subject, body, format, category, is_active, created_at, updated_at`

func (r *EmailTemplateRepository) Create(ctx context.Context, tpl *entity.EmailTemplate) error {
	query := `
		INSERT INTO email_templates (id, name, subject, body, format, category, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		tpl.ID,
		tpl.Name,
		tpl.Subject,
		tpl.Body,
		tpl.Format,
		nullString(tpl.Category),
		tpl.IsActive,
		tpl.CreatedAt,
		tpl.UpdatedAt,
	)
	return err
}

func (r *EmailTemplateRepository) FindByID(ctx context.Context, id string) (*entity.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE id = $1 AND is_deleted = FALSE`

	tpl, err := scanTemplate(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return tpl, err
}

func (r *EmailTemplateRepository) Update(ctx context.Context, tpl *entity.EmailTemplate) error {
	query := `
		UPDATE email_templates SET
			name = $2, subject = $3, body = $4, format = $5, category = $6, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`
	res, err := r.DB.ExecContext(ctx, query,
		tpl.ID,
		tpl.Name,
		tpl.Subject,
		tpl.Body,
		tpl.Format,
		nullString(tpl.Category),
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *EmailTemplateRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE email_templates SET is_active = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		id, active,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *EmailTemplateRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE email_templates SET is_deleted = TRUE, is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		id,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *EmailTemplateRepository) List(ctx context.Context, filter entity.TemplateFilter) ([]*entity.EmailTemplate, error) {
	var (
		where = []string{"is_deleted = FALSE"}
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR subject ILIKE $%d)", n, n))
	}

	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY name ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*entity.EmailTemplate, 0)
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (r *EmailTemplateRepository) IsUsedByActiveFunnel(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM email_funnel_phases p
			JOIN email_funnels f ON f.id = p.funnel_id
			WHERE p.template_id = $1 AND f.is_active = TRUE AND f.is_deleted = FALSE
		)
	`
	var used bool
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&used)
	return used, err
}

func scanTemplate(row rowScanner) (*entity.EmailTemplate, error) {
	var (
		tpl      entity.EmailTemplate
		category sql.NullString
	)
	err := row.Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.Subject,
		&tpl.Body,
		&tpl.Format,
		&category,
		&tpl.IsActive,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tpl.Category = category.String
	return &tpl, nil
}
