package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadInput struct {
	FirstName string `json:"first_name" validate:"notblank,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"notblank,email,max=254"`
	Phone     string `json:"phone" validate:"max=40"`
	Company   string `json:"company" validate:"max=200"`
	Source    string `json:"source" validate:"max=100"`
	Status    string `json:"status" validate:"omitempty,oneof=new contacted qualified unqualified converted"`
	OwnerID   string `json:"owner_id"`
	Notes     string `json:"notes"`
}

func (in *LeadInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Company = strings.TrimSpace(in.Company)
	in.Source = strings.TrimSpace(in.Source)
	in.Notes = strings.TrimSpace(in.Notes)
}

type LeadUseCase struct {
	Repo   entity.LeadRepositoryInterface
	Logger *zap.Logger
}

func NewLeadUseCase(repo entity.LeadRepositoryInterface, logger *zap.Logger) *LeadUseCase {
	return &LeadUseCase{Repo: repo, Logger: logger.Named("leads")}
}

func (uc *LeadUseCase) Create(ctx context.Context, in LeadInput) (*entity.Lead, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	lead := entity.NewLead(in.FirstName, in.LastName, in.Email)
	applyLeadInput(lead, in)

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, repoError("LEAD", err)
	}

	uc.Logger.Info("lead created", zap.String("lead_id", lead.ID), zap.String("source", lead.Source))
	return lead, nil
}

func (uc *LeadUseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("LEAD", err)
	}
	return lead, nil
}

func (uc *LeadUseCase) Update(ctx context.Context, id string, in LeadInput) (*entity.Lead, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("LEAD", err)
	}

	lead.FirstName = in.FirstName
	lead.LastName = in.LastName
	lead.Email = in.Email
	applyLeadInput(lead, in)
	lead.UpdatedAt = time.Now()

	if err := uc.Repo.Update(ctx, lead); err != nil {
		return nil, repoError("LEAD", err)
	}
	return lead, nil
}

func (uc *LeadUseCase) UpdateStatus(ctx context.Context, id, status string) error {
	if !entity.IsValidLeadStatus(status) {
		return invalidField("status", "must be one of: new contacted qualified unqualified converted")
	}
	return repoError("LEAD", uc.Repo.UpdateStatus(ctx, id, status))
}

func (uc *LeadUseCase) Delete(ctx context.Context, id string) error {
	return repoError("LEAD", uc.Repo.SoftDelete(ctx, id))
}

func (uc *LeadUseCase) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	if filter.Status != "" && !entity.IsValidLeadStatus(filter.Status) {
		return nil, invalidField("status", "is invalid")
	}
	filter.Search = strings.TrimSpace(filter.Search)

	leads, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, repoError("LEAD", err)
	}
	return leads, nil
}

// Capture is the public form entry point. Submissions for an email that already
// exists refresh the stored lead instead of failing.
func (uc *LeadUseCase) Capture(ctx context.Context, in LeadInput) (*entity.Lead, error) {
	in.normalize()
	in.Status = ""
	in.OwnerID = ""
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Source == "" {
		in.Source = "website"
	}

	lead := entity.NewLead(in.FirstName, in.LastName, in.Email)
	applyLeadInput(lead, in)

	if err := uc.Repo.Upsert(ctx, lead); err != nil {
		return nil, repoError("LEAD", err)
	}

	uc.Logger.Info("lead captured", zap.String("lead_id", lead.ID), zap.String("source", lead.Source))
	return lead, nil
}

func applyLeadInput(lead *entity.Lead, in LeadInput) {
	lead.Phone = in.Phone
	lead.Company = in.Company
	lead.Source = in.Source
	lead.OwnerID = in.OwnerID
	lead.Notes = in.Notes
	if in.Status != "" {
		lead.Status = in.Status
	}
}
