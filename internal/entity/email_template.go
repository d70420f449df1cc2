package entity

import (
	"context"
	"time"
)

const (
	TemplateFormatHTML     = "html"
	TemplateFormatMarkdown = "markdown"
)

type EmailTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Format    string    `json:"format"` // html, markdown
	Category  string    `json:"category,omitempty"`
	IsActive  bool      `json:"is_active"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TemplateFilter struct {
	Category string
	Active   *bool
	Search   string
}

type EmailTemplateRepositoryInterface interface {
	Create(ctx context.Context, tpl *EmailTemplate) error
	FindByID(ctx context.Context, id string) (*EmailTemplate, error)
	Update(ctx context.Context, tpl *EmailTemplate) error
	SetActive(ctx context.Context, id string, active bool) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter TemplateFilter) ([]*EmailTemplate, error)
	IsUsedByActiveFunnel(ctx context.Context, id string) (bool, error)
}
