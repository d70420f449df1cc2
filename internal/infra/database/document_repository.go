package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type DocumentRepository struct {
	DB *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

const documentColumns = `id, name, storage_key, content_type, size_bytes, kind, lead_id, deal_id, uploaded_by, created_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (id, name, storage_key, content_type, size_bytes, kind, lead_id, deal_id, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		doc.StorageKey,
		doc.ContentType,
		doc.SizeBytes,
		doc.Kind,
		doc.LeadID,
		doc.DealID,
		nullString(doc.UploadedBy),
		doc.CreatedAt,
	)
	return err
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND is_deleted = FALSE`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return doc, err
}

func (r *DocumentRepository) List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.Document, error) {
	var (
		where = []string{"is_deleted = FALSE"}
		args  []any
	)
	if filter.LeadID != "" {
		args = append(args, filter.LeadID)
		where = append(where, fmt.Sprintf("lead_id = $%d", len(args)))
	}
	if filter.DealID != "" {
		args = append(args, filter.DealID)
		where = append(where, fmt.Sprintf("deal_id = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*entity.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE documents SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`, id,
	)
	if err != nil {
		return err
	}
	return checkAffected(res, entity.ErrNotFound)
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		doc                      entity.Document
		leadID, dealID, uploader sql.NullString
	)
	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.StorageKey,
		&doc.ContentType,
		&doc.SizeBytes,
		&doc.Kind,
		&leadID,
		&dealID,
		&uploader,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.LeadID = nullStringPtr(leadID)
	doc.DealID = nullStringPtr(dealID)
	doc.UploadedBy = uploader.String
	return &doc, nil
}
