package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type DealRepository struct {
	DB *sql.DB
}

func NewDealRepository(db *sql.DB) *DealRepository {
	return &DealRepository{DB: db}
}

const dealSelect = `
	SELECT d.id, d.lead_id, TRIM(l.first_name || ' ' || COALESCE(l.last_name, '')), d.title, d.value,
		d.currency, d.stage, d.probability, d.expected_close_date, d.owner_id, d.closed_at,
		d.created_at, d.updated_at
	FROM deals d
	JOIN leads l ON l.id = d.lead_id
`

func (r *DealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	query := `
		INSERT INTO deals (id, lead_id, title, value, currency, stage, probability,
			expected_close_date, owner_id, closed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		deal.ID,
		deal.LeadID,
		deal.Title,
		deal.Value,
		deal.Currency,
		deal.Stage,
		deal.Probability,
		deal.ExpectedCloseDate,
		nullString(deal.OwnerID),
		deal.ClosedAt,
		deal.CreatedAt,
		deal.UpdatedAt,
	)
	return err
}

func (r *DealRepository) FindByID(ctx context.Context, id string) (*entity.Deal, error) {
	query := dealSelect + ` WHERE d.id = $1 AND d.is_deleted = FALSE`

	deal, err := scanDeal(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return deal, err
}

func (r *DealRepository) Update(ctx context.Context, deal *entity.Deal) error {
	query := `
		UPDATE deals SET
			lead_id = $2, title = $3, value = $4, currency = $5, stage = $6, probability = $7,
			expected_close_date = $8, owner_id = $9, closed_at = $10, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`
	res, err := r.DB.ExecContext(ctx, query,
		deal.ID,
		deal.LeadID,
		deal.Title,
		deal.Value,
		deal.Currency,
		deal.Stage,
		deal.Probability,
		deal.ExpectedCloseDate,
		nullString(deal.OwnerID),
		deal.ClosedAt,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *DealRepository) UpdateStage(ctx context.Context, id, stage string, closedAt *time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE deals SET stage = $2, closed_at = $3, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		id, stage, closedAt,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *DealRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE deals SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`,
		id,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func (r *DealRepository) List(ctx context.Context, filter entity.DealFilter) ([]*entity.Deal, error) {
	var (
		where = []string{"d.is_deleted = FALSE"}
		args  []any
	)
	if filter.Stage != "" {
		args = append(args, filter.Stage)
		where = append(where, fmt.Sprintf("d.stage = $%d", len(args)))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("d.owner_id = $%d", len(args)))
	}
	if filter.LeadID != "" {
		args = append(args, filter.LeadID)
		where = append(where, fmt.Sprintf("d.lead_id = $%d", len(args)))
	}

	query := dealSelect + ` WHERE ` + strings.Join(where, " AND ") + ` ORDER BY d.created_at DESC`
	query, args = paginate(query, args, filter.Limit, filter.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := make([]*entity.Deal, 0)
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}
	return deals, rows.Err()
}

func scanDeal(row rowScanner) (*entity.Deal, error) {
	var (
		deal      entity.Deal
		closeDate sql.NullTime
		closedAt  sql.NullTime
		owner     sql.NullString
	)
	err := row.Scan(
		&deal.ID,
		&deal.LeadID,
		&deal.LeadName,
		&deal.Title,
		&deal.Value,
		&deal.Currency,
		&deal.Stage,
		&deal.Probability,
		&closeDate,
		&owner,
		&closedAt,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	deal.OwnerID = owner.String
	deal.ExpectedCloseDate = nullTimePtr(closeDate)
	deal.ClosedAt = nullTimePtr(closedAt)
	return &deal, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
