package entity

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoiceKindInvoice       = "invoice"
	InvoiceKindBuyDirection  = "buy_direction"
	InvoiceKindSellDirection = "sell_direction"
)

func IsValidInvoiceKind(kind string) bool {
	return kind == InvoiceKindInvoice || kind == InvoiceKindBuyDirection || kind == InvoiceKindSellDirection
}

// Invoice is the stored record of a generated document; the rendered PDF lives in
// the documents bucket.
type Invoice struct {
	ID         string          `json:"id"`
	Number     string          `json:"number"`
	Kind       string          `json:"kind"`
	LeadID     *string         `json:"lead_id,omitempty"`
	DealID     *string         `json:"deal_id,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
	DocumentID *string         `json:"document_id,omitempty"`
	CreatedBy  string          `json:"created_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type InvoiceRepositoryInterface interface {
	Create(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, limit, offset int) ([]*Invoice, error)
}
