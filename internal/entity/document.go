package entity

import (
	"context"
	"time"
)

const (
	DocumentKindUpload  = "upload"
	DocumentKindInvoice = "invoice"
	DocumentKindLetter  = "letter"
)

type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Kind        string    `json:"kind"`
	LeadID      *string   `json:"lead_id,omitempty"`
	DealID      *string   `json:"deal_id,omitempty"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	IsDeleted   bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

type DocumentFilter struct {
	LeadID string
	DealID string
	Kind   string
}

type DocumentRepositoryInterface interface {
	Create(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]*Document, error)
	SoftDelete(ctx context.Context, id string) error
}
