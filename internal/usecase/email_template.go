package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type TemplateInput struct {
	Name     string `json:"name" validate:"notblank,max=200"`
	Subject  string `json:"subject" validate:"notblank,max=300"`
	Body     string `json:"body" validate:"notblank"`
	Format   string `json:"format" validate:"omitempty,oneof=html markdown"`
	Category string `json:"category" validate:"max=100"`
	IsActive *bool  `json:"is_active"`
}

func (in *TemplateInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Category = strings.TrimSpace(in.Category)
	if in.Format == "" {
		in.Format = entity.TemplateFormatHTML
	}
}

type PreviewInput struct {
	LeadID string `json:"lead_id"`
}

type PreviewOutput struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type EmailTemplateUseCase struct {
	Repo     entity.EmailTemplateRepositoryInterface
	LeadRepo entity.LeadRepositoryInterface
	Renderer TemplateRenderer
	Now      func() time.Time
}

func NewEmailTemplateUseCase(repo entity.EmailTemplateRepositoryInterface, leadRepo entity.LeadRepositoryInterface, renderer TemplateRenderer) *EmailTemplateUseCase {
	return &EmailTemplateUseCase{Repo: repo, LeadRepo: leadRepo, Renderer: renderer, Now: time.Now}
}

func (uc *EmailTemplateUseCase) Create(ctx context.Context, in TemplateInput) (*entity.EmailTemplate, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := uc.Now()
	tpl := &entity.EmailTemplate{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Subject:   in.Subject,
		Body:      in.Body,
		Format:    in.Format,
		Category:  in.Category,
		IsActive:  in.IsActive == nil || *in.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Repo.Create(ctx, tpl); err != nil {
		return nil, repoError("TEMPLATE", err)
	}
	return tpl, nil
}

func (uc *EmailTemplateUseCase) Get(ctx context.Context, id string) (*entity.EmailTemplate, error) {
	tpl, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("TEMPLATE", err)
	}
	return tpl, nil
}

func (uc *EmailTemplateUseCase) Update(ctx context.Context, id string, in TemplateInput) (*entity.EmailTemplate, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	tpl, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("TEMPLATE", err)
	}
	tpl.Name = in.Name
	tpl.Subject = in.Subject
	tpl.Body = in.Body
	tpl.Format = in.Format
	tpl.Category = in.Category
	tpl.UpdatedAt = uc.Now()

	if err := uc.Repo.Update(ctx, tpl); err != nil {
		return nil, repoError("TEMPLATE", err)
	}
	if in.IsActive != nil && *in.IsActive != tpl.IsActive {
		if err := uc.SetActive(ctx, id, *in.IsActive); err != nil {
			return nil, err
		}
		tpl.IsActive = *in.IsActive
	}
	return tpl, nil
}

// SetActive refuses to deactivate a template an active funnel still sends.
func (uc *EmailTemplateUseCase) SetActive(ctx context.Context, id string, active bool) error {
	if !active {
		if err := uc.ensureUnused(ctx, id); err != nil {
			return err
		}
	}
	return repoError("TEMPLATE", uc.Repo.SetActive(ctx, id, active))
}

func (uc *EmailTemplateUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.ensureUnused(ctx, id); err != nil {
		return err
	}
	return repoError("TEMPLATE", uc.Repo.SoftDelete(ctx, id))
}

func (uc *EmailTemplateUseCase) List(ctx context.Context, filter entity.TemplateFilter) ([]*entity.EmailTemplate, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	templates, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, repoError("TEMPLATE", err)
	}
	return templates, nil
}

// Preview renders the template for a lead, or for SampleVars when no lead is given.
func (uc *EmailTemplateUseCase) Preview(ctx context.Context, id string, in PreviewInput) (*PreviewOutput, error) {
	tpl, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("TEMPLATE", err)
	}

	vars := SampleVars()
	if leadID := strings.TrimSpace(in.LeadID); leadID != "" {
		lead, err := uc.LeadRepo.FindByID(ctx, leadID)
		if err != nil {
			return nil, repoError("LEAD", err)
		}
		vars = LeadVars(lead)
	}

	subject, html, err := uc.Renderer.Render(tpl, vars)
	if err != nil {
		return nil, &TechnicalError{Code: CodeRender, Message: "failed to render template", Err: err}
	}
	return &PreviewOutput{Subject: subject, HTML: html}, nil
}

func (uc *EmailTemplateUseCase) ensureUnused(ctx context.Context, id string) error {
	used, err := uc.Repo.IsUsedByActiveFunnel(ctx, id)
	if err != nil {
		return repoError("TEMPLATE", err)
	}
	if used {
		return conflict("template is used by an active funnel")
	}
	return nil
}

// LeadVars exposes the placeholder values available to templates.
func LeadVars(lead *entity.Lead) map[string]string {
	return map[string]string{
		"first_name": lead.FirstName,
		"last_name":  lead.LastName,
		"full_name":  lead.FullName(),
		"email":      lead.Email,
		"company":    lead.Company,
		"phone":      lead.Phone,
	}
}

func SampleVars() map[string]string {
	return map[string]string{
		"first_name": "Jane",
		"last_name":  "Doe",
		"full_name":  "Jane Doe",
		"email":      "jane.doe@example.com",
		"company":    "Acme Inc.",
		"phone":      "+1 555 0100",
	}
}
