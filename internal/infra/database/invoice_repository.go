package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type InvoiceRepository struct {
	DB *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

const invoiceColumns = `id, number, kind, lead_id, deal_id, total, currency, document_id, created_by, created_at`

func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, number, kind, lead_id, deal_id, total, currency, document_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.DB.ExecContext(ctx, query,
		inv.ID,
		inv.Number,
		inv.Kind,
		inv.LeadID,
		inv.DealID,
		inv.Total,
		inv.Currency,
		inv.DocumentID,
		nullString(inv.CreatedBy),
		inv.CreatedAt,
	)
	return err
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.DB.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return inv, err
}

func (r *InvoiceRepository) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	query, args := paginate(`SELECT `+invoiceColumns+` FROM invoices ORDER BY created_at DESC`, nil, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]*entity.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var (
		inv                        entity.Invoice
		leadID, dealID, documentID sql.NullString
		createdBy                  sql.NullString
	)
	err := row.Scan(
		&inv.ID,
		&inv.Number,
		&inv.Kind,
		&leadID,
		&dealID,
		&inv.Total,
		&inv.Currency,
		&documentID,
		&createdBy,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.LeadID = nullStringPtr(leadID)
	inv.DealID = nullStringPtr(dealID)
	inv.DocumentID = nullStringPtr(documentID)
	inv.CreatedBy = createdBy.String
	return &inv, nil
}
