package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type InvoiceService interface {
	Execute(ctx context.Context, in usecase.GenerateInvoiceInput) (*usecase.GenerateInvoiceOutput, error)
	Get(ctx context.Context, id string) (*entity.Invoice, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
}

type InvoiceHandler struct {
	Invoices InvoiceService
	Logger   *zap.Logger
}

func NewInvoiceHandler(invoices InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{Invoices: invoices, Logger: logger}
}

func (h *InvoiceHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/generate", h.Generate)
	r.Get("/{id}", h.Get)
}

// Generate renders an invoice or direction letter. The query selects the
// output: format=html|pdf and store=true to keep the pdf.
func (h *InvoiceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var in usecase.GenerateInvoiceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.Format = queryString(r, "format")
	if store := queryBool(r, "store"); store != nil {
		in.Store = *store
	}
	in.CreatedBy = middleware.UserID(r.Context())

	out, err := h.Invoices.Execute(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	disposition := "inline"
	if in.Format == usecase.FormatPDF {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", disposition+`; filename="`+out.Filename+`"`)
	w.Header().Set("X-Page-Count", strconv.Itoa(out.Pages))
	if out.Invoice != nil {
		w.Header().Set("X-Invoice-ID", out.Invoice.ID)
		w.WriteHeader(http.StatusCreated)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_, _ = w.Write(out.Body)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	invoices, err := h.Invoices.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invoices.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
