package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, first_name, last_name, email, phone, company, source, status, owner_id, notes, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, first_name, last_name, email, phone, company, source, status, owner_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.FirstName,
		nullString(lead.LastName),
		lead.Email,
		nullString(lead.Phone),
		nullString(lead.Company),
		nullString(lead.Source),
		lead.Status,
		nullString(lead.OwnerID),
		nullString(lead.Notes),
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrConflict
	}
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND is_deleted = FALSE`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return lead, err
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			first_name = $2, last_name = $3, email = $4, phone = $5, company = $6,
			source = $7, status = $8, owner_id = $9, notes = $10, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`
	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.FirstName,
		nullString(lead.LastName),
		lead.Email,
		nullString(lead.Phone),
		nullString(lead.Company),
		nullString(lead.Source),
		lead.Status,
		nullString(lead.OwnerID),
		nullString(lead.Notes),
	)
	if isUniqueViolation(err) {
		return entity.ErrConflict
	}
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET status = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		id, status,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *LeadRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		id,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	var (
		where = []string{"is_deleted = FALSE"}
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", n, n, n, n))
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at DESC`
	query, args = paginate(query, args, filter.Limit, filter.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]*entity.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// Upsert inserts the lead or refreshes the existing row with the same email. Empty
// incoming fields never overwrite stored ones, and a soft deleted lead is revived.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, first_name, last_name, email, phone, company, source, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), leads.first_name),
			last_name = COALESCE(EXCLUDED.last_name, leads.last_name),
			phone = COALESCE(EXCLUDED.phone, leads.phone),
			company = COALESCE(EXCLUDED.company, leads.company),
			source = COALESCE(leads.source, EXCLUDED.source),
			is_deleted = FALSE,
			updated_at = NOW()
		RETURNING id, status, created_at, updated_at
	`

	return r.DB.QueryRowContext(
		ctx,
		query,
		lead.ID,
		lead.FirstName,
		nullString(lead.LastName),
		lead.Email,
		nullString(lead.Phone),
		nullString(lead.Company),
		nullString(lead.Source),
		lead.Status,
	).Scan(
		&lead.ID,
		&lead.Status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead                                           entity.Lead
		lastName, phone, company, source, owner, notes sql.NullString
	)
	err := row.Scan(
		&lead.ID,
		&lead.FirstName,
		&lastName,
		&lead.Email,
		&phone,
		&company,
		&source,
		&lead.Status,
		&owner,
		&notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lead.LastName = lastName.String
	lead.Phone = phone.String
	lead.Company = company.String
	lead.Source = source.String
	lead.OwnerID = owner.String
	lead.Notes = notes.String
	return &lead, nil
}

// paginate appends LIMIT/OFFSET placeholders. A non-positive limit falls back to 50
// and anything above 200 is capped.
func paginate(query string, args []any, limit, offset int) (string, []any) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	return fmt.Sprintf("%s LIMIT $%d OFFSET $%d", query, len(args)-1, len(args)), args
}
