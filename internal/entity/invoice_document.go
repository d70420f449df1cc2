package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const ItemsPerPage = 10

type Party struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// LetterDetails carries the extra fields of buy/sell direction letters.
type LetterDetails struct {
	PropertyAddress string          `json:"property_address"`
	Buyer           string          `json:"buyer"`
	Seller          string          `json:"seller"`
	Amount          decimal.Decimal `json:"amount"`
	ClosingDate     *time.Time      `json:"closing_date,omitempty"`
	Paragraphs      []string        `json:"paragraphs"`
	Signatory       string          `json:"signatory"`
}

type InvoicePage struct {
	Number int
	Of     int
	Items  []LineItem
	IsLast bool
}

// InvoiceDocument is the fully computed, paginated model handed to the printer.
type InvoiceDocument struct {
	Kind      string
	Number    string
	IssueDate time.Time
	DueDate   *time.Time
	Issuer    Party
	Recipient Party
	Items     []LineItem
	Pages     []InvoicePage
	Subtotal  decimal.Decimal
	TaxRate   decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	Currency  string
	Notes     string
	Letter    *LetterDetails
}

func (d *InvoiceDocument) IsLetter() bool {
	return d.Kind == InvoiceKindBuyDirection || d.Kind == InvoiceKindSellDirection
}

// PaginateItems splits items into pages of perPage. An empty list still yields
// one page, and only the last page is flagged to carry totals.
func PaginateItems(items []LineItem, perPage int) []InvoicePage {
	if perPage <= 0 {
		perPage = ItemsPerPage
	}

	count := (len(items) + perPage - 1) / perPage
	if count == 0 {
		count = 1
	}

	pages := make([]InvoicePage, 0, count)
	for i := 0; i < count; i++ {
		start := i * perPage
		end := min(start+perPage, len(items))
		page := InvoicePage{Number: i + 1, Of: count, IsLast: i == count-1}
		if start < len(items) {
			page.Items = items[start:end]
		}
		pages = append(pages, page)
	}
	return pages
}
