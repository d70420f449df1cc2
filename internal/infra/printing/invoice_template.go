package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var _ usecase.InvoiceTemplate = (*InvoiceTemplate)(nil)

// InvoiceTemplate renders invoices and buy/sell direction letters.
type InvoiceTemplate struct {
	tpl *template.Template
}

func NewInvoiceTemplate() (*InvoiceTemplate, error) {
	tpl, err := template.New("documents").Funcs(template.FuncMap{
		"money": money,
		"qty":   quantity,
		"date":  formatDate,
		"title": documentTitle,
	}).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse document templates: %w", err)
	}
	return &InvoiceTemplate{tpl: tpl}, nil
}

func (t *InvoiceTemplate) RenderHTML(doc *entity.InvoiceDocument) (string, error) {
	name := "invoice.html.tmpl"
	if doc.IsLetter() {
		name = "letter.html.tmpl"
	}

	var buf bytes.Buffer
	if err := t.tpl.ExecuteTemplate(&buf, name, doc); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.String(), nil
}

func money(currency string, amount decimal.Decimal) string {
	return currency + " " + groupThousands(amount.StringFixed(2))
}

func quantity(q decimal.Decimal) string {
	return q.String()
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString("." + frac)
	}
	return sign + b.String()
}

func formatDate(v any) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format("January 2, 2006")
	case *time.Time:
		if d == nil {
			return ""
		}
		return d.Format("January 2, 2006")
	}
	return ""
}

func documentTitle(kind string) string {
	switch kind {
	case entity.InvoiceKindBuyDirection:
		return "Direction to Buy"
	case entity.InvoiceKindSellDirection:
		return "Direction to Sell"
	}
	return "Invoice"
}
