package usecase

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

var hundred = decimal.NewFromInt(100)

type LineItemInput struct {
	Description string          `json:"description" validate:"notblank,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type PartyInput struct {
	Name    string `json:"name" validate:"notblank,max=200"`
	Company string `json:"company"`
	Address string `json:"address"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
}

type LetterInput struct {
	PropertyAddress string          `json:"property_address" validate:"notblank"`
	Buyer           string          `json:"buyer" validate:"notblank"`
	Seller          string          `json:"seller" validate:"notblank"`
	Amount          decimal.Decimal `json:"amount"`
	ClosingDate     *time.Time      `json:"closing_date"`
	Paragraphs      []string        `json:"paragraphs"`
	Signatory       string          `json:"signatory" validate:"notblank"`
}

type GenerateInvoiceInput struct {
	Kind      string          `json:"kind" validate:"required,oneof=invoice buy_direction sell_direction"`
	Number    string          `json:"number" validate:"notblank,max=50"`
	IssueDate *time.Time      `json:"issue_date"`
	DueDate   *time.Time      `json:"due_date"`
	Issuer    PartyInput      `json:"issuer"`
	Recipient PartyInput      `json:"recipient"`
	Items     []LineItemInput `json:"items" validate:"dive"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Currency  string          `json:"currency" validate:"omitempty,len=3"`
	Notes     string          `json:"notes"`
	Letter    *LetterInput    `json:"letter"`
	LeadID    *string         `json:"lead_id" validate:"omitempty,uuid"`
	DealID    *string         `json:"deal_id" validate:"omitempty,uuid"`

	Format    string `json:"-"`
	Store     bool   `json:"-"`
	CreatedBy string `json:"-"`
}

type GenerateInvoiceOutput struct {
	ContentType string
	Filename    string
	Body        []byte
	Pages       int
	Invoice     *entity.Invoice
}

// InvoiceTemplate renders the printable HTML of a computed document.
type InvoiceTemplate interface {
	RenderHTML(doc *entity.InvoiceDocument) (string, error)
}

type GenerateInvoiceUseCase struct {
	Template  InvoiceTemplate
	PDF       PDFRenderer
	Storage   ObjectStorage
	Documents entity.DocumentRepositoryInterface
	Invoices  entity.InvoiceRepositoryInterface
	Recorder  EventRecorder
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewGenerateInvoiceUseCase(
	tpl InvoiceTemplate,
	pdf PDFRenderer,
	storage ObjectStorage,
	documents entity.DocumentRepositoryInterface,
	invoices entity.InvoiceRepositoryInterface,
	recorder EventRecorder,
	logger *zap.Logger,
) *GenerateInvoiceUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &GenerateInvoiceUseCase{
		Template:  tpl,
		PDF:       pdf,
		Storage:   storage,
		Documents: documents,
		Invoices:  invoices,
		Recorder:  recorder,
		Logger:    logger.Named("invoices"),
		Now:       time.Now,
	}
}

func (uc *GenerateInvoiceUseCase) Execute(ctx context.Context, in GenerateInvoiceInput) (*GenerateInvoiceOutput, error) {
	if in.Format == "" {
		in.Format = FormatHTML
	}
	if in.Format != FormatHTML && in.Format != FormatPDF {
		return nil, invalidField("format", "must be one of: html pdf")
	}
	if in.Store && in.Format != FormatPDF {
		return nil, invalidField("store", "is only supported for pdf output")
	}

	// 1. Calcula totais e paginação
	doc, err := BuildInvoiceDocument(in, uc.Now())
	if err != nil {
		return nil, err
	}

	// 2. Monta o HTML de impressão
	html, err := uc.Template.RenderHTML(doc)
	if err != nil {
		return nil, &TechnicalError{Code: CodeRender, Message: "failed to render invoice", Err: err}
	}

	filename := fileSafe(doc.Kind + "-" + doc.Number)
	if in.Format == FormatHTML {
		return &GenerateInvoiceOutput{
			ContentType: "text/html; charset=utf-8",
			Filename:    filename + ".html",
			Body:        []byte(html),
			Pages:       len(doc.Pages),
		}, nil
	}

	// 3. HTML -> PDF no Chrome headless
	pdf, err := uc.PDF.RenderPDF(ctx, html)
	if err != nil {
		return nil, &TechnicalError{Code: CodeRender, Message: "failed to render pdf", Err: err}
	}
	pages, err := uc.PDF.CountPages(pdf)
	if err != nil {
		uc.Logger.Warn("could not count pdf pages", zap.Error(err))
		pages = len(doc.Pages)
	}
	uc.Recorder.DocumentGenerated(doc.Kind)

	out := &GenerateInvoiceOutput{
		ContentType: "application/pdf",
		Filename:    filename + ".pdf",
		Body:        pdf,
		Pages:       pages,
	}
	if !in.Store {
		return out, nil
	}

	// 4. Guarda no bucket + documents + invoices
	inv, err := uc.store(ctx, in, doc, out)
	if err != nil {
		return nil, err
	}
	out.Invoice = inv
	return out, nil
}

// store uploads the pdf, then records the document and invoice rows. Earlier
// steps are undone when a later one fails.
func (uc *GenerateInvoiceUseCase) store(ctx context.Context, in GenerateInvoiceInput, doc *entity.InvoiceDocument, out *GenerateInvoiceOutput) (*entity.Invoice, error) {
	now := uc.Now()
	docKind := entity.DocumentKindInvoice
	if doc.IsLetter() {
		docKind = entity.DocumentKindLetter
	}

	document := &entity.Document{
		ID:          uuid.New().String(),
		Name:        out.Filename,
		ContentType: out.ContentType,
		SizeBytes:   int64(len(out.Body)),
		Kind:        docKind,
		LeadID:      in.LeadID,
		DealID:      in.DealID,
		UploadedBy:  in.CreatedBy,
		CreatedAt:   now,
	}
	document.StorageKey = storageKey(docKind+"s", document.ID, out.Filename, now)

	docID := document.ID
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		Number:     doc.Number,
		Kind:       doc.Kind,
		LeadID:     in.LeadID,
		DealID:     in.DealID,
		Total:      doc.Total,
		Currency:   doc.Currency,
		DocumentID: &docID,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  now,
	}

	tx := NewTransaction(uc.Logger)
	tx.AddOperation("upload pdf",
		func(ctx context.Context) error {
			return uc.Storage.Upload(ctx, document.StorageKey, bytes.NewReader(out.Body), document.SizeBytes, document.ContentType)
		},
		func(ctx context.Context) error { return uc.Storage.Delete(ctx, document.StorageKey) },
	)
	tx.AddOperation("insert document",
		func(ctx context.Context) error { return uc.Documents.Create(ctx, document) },
		func(ctx context.Context) error { return uc.Documents.SoftDelete(ctx, document.ID) },
	)
	tx.AddOperation("insert invoice",
		func(ctx context.Context) error { return uc.Invoices.Create(ctx, inv) },
		nil,
	)

	if err := tx.Execute(ctx); err != nil {
		return nil, &TechnicalError{Code: CodeStorage, Message: "failed to store invoice", Err: err}
	}

	uc.Logger.Info("invoice stored",
		zap.String("invoice_id", inv.ID),
		zap.String("number", inv.Number),
		zap.String("document_id", document.ID),
		zap.String("total", inv.Total.StringFixed(2)),
	)
	return inv, nil
}

func (uc *GenerateInvoiceUseCase) Get(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.Invoices.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("INVOICE", err)
	}
	return inv, nil
}

func (uc *GenerateInvoiceUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	invoices, err := uc.Invoices.List(ctx, limit, offset)
	if err != nil {
		return nil, repoError("INVOICE", err)
	}
	return invoices, nil
}

// BuildInvoiceDocument validates the input and computes line totals, tax and
// pages. Money is rounded half up to cents.
func BuildInvoiceDocument(in GenerateInvoiceInput, now time.Time) (*entity.InvoiceDocument, error) {
	in.Number = strings.TrimSpace(in.Number)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = "USD"
	}

	errs := Validate(in)
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
		errs = append(errs, ValidationError{Field: "tax_rate", Message: "must be between 0 and 100"})
	}
	for i, item := range in.Items {
		if !item.Quantity.IsPositive() {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be greater than 0"})
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("items[%d].unit_price", i), Message: "must be greater than or equal to 0"})
		}
	}
	isLetter := in.Kind == entity.InvoiceKindBuyDirection || in.Kind == entity.InvoiceKindSellDirection
	if isLetter && in.Letter == nil {
		errs = append(errs, ValidationError{Field: "letter", Message: "is required"})
	}
	if isLetter && in.Letter != nil && in.Letter.Amount.IsNegative() {
		errs = append(errs, ValidationError{Field: "letter.amount", Message: "must be greater than or equal to 0"})
	}
	if len(errs) > 0 {
		return nil, invalid(errs)
	}

	issue := now
	if in.IssueDate != nil {
		issue = *in.IssueDate
	}

	doc := &entity.InvoiceDocument{
		Kind:      in.Kind,
		Number:    in.Number,
		IssueDate: issue,
		DueDate:   in.DueDate,
		Issuer:    entity.Party(in.Issuer),
		Recipient: entity.Party(in.Recipient),
		TaxRate:   in.TaxRate,
		Currency:  in.Currency,
		Notes:     strings.TrimSpace(in.Notes),
		Items:     make([]entity.LineItem, 0, len(in.Items)),
	}

	subtotal := decimal.Zero
	for _, item := range in.Items {
		total := item.Quantity.Mul(item.UnitPrice).Round(2)
		doc.Items = append(doc.Items, entity.LineItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Round(2),
			Total:       total,
		})
		subtotal = subtotal.Add(total)
	}

	if isLetter {
		letter := in.Letter
		paragraphs := make([]string, 0, len(letter.Paragraphs))
		for _, p := range letter.Paragraphs {
			if p = strings.TrimSpace(p); p != "" {
				paragraphs = append(paragraphs, p)
			}
		}
		doc.Letter = &entity.LetterDetails{
			PropertyAddress: strings.TrimSpace(letter.PropertyAddress),
			Buyer:           strings.TrimSpace(letter.Buyer),
			Seller:          strings.TrimSpace(letter.Seller),
			Amount:          letter.Amount.Round(2),
			ClosingDate:     letter.ClosingDate,
			Paragraphs:      paragraphs,
			Signatory:       strings.TrimSpace(letter.Signatory),
		}
		if len(doc.Items) == 0 {
			subtotal = doc.Letter.Amount
		}
	}

	doc.Subtotal = subtotal.Round(2)
	doc.Tax = doc.Subtotal.Mul(in.TaxRate).Div(hundred).Round(2)
	doc.Total = doc.Subtotal.Add(doc.Tax)
	doc.Pages = entity.PaginateItems(doc.Items, entity.ItemsPerPage)
	return doc, nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func fileSafe(name string) string {
	name = unsafeFileChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, "_.")
	if name == "" {
		return "document"
	}
	return name
}

func storageKey(prefix, id, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%04d/%02d/%s/%s", prefix, now.Year(), int(now.Month()), id, fileSafe(filename))
}
