package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type FunnelInput struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description"`
}

type PhaseInput struct {
	TemplateID string `json:"template_id" validate:"notblank,uuid"`
	Name       string `json:"name" validate:"notblank,max=200"`
	DelayHours int    `json:"delay_hours" validate:"gte=0,lte=8760"`
}

type ReorderInput struct {
	PhaseIDs []string `json:"phase_ids" validate:"required,min=1,dive,uuid"`
}

type EmailFunnelUseCase struct {
	Repo         entity.EmailFunnelRepositoryInterface
	TemplateRepo entity.EmailTemplateRepositoryInterface
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewEmailFunnelUseCase(repo entity.EmailFunnelRepositoryInterface, templateRepo entity.EmailTemplateRepositoryInterface, logger *zap.Logger) *EmailFunnelUseCase {
	return &EmailFunnelUseCase{
		Repo:         repo,
		TemplateRepo: templateRepo,
		Logger:       logger.Named("funnels"),
		Now:          time.Now,
	}
}

func (uc *EmailFunnelUseCase) Create(ctx context.Context, in FunnelInput) (*entity.EmailFunnel, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := uc.Now()
	funnel := &entity.EmailFunnel{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Phases:      []entity.FunnelPhase{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Repo.Create(ctx, funnel); err != nil {
		return nil, repoError("FUNNEL", err)
	}
	return funnel, nil
}

func (uc *EmailFunnelUseCase) Get(ctx context.Context, id string) (*entity.EmailFunnel, error) {
	funnel, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("FUNNEL", err)
	}
	return funnel, nil
}

func (uc *EmailFunnelUseCase) Update(ctx context.Context, id string, in FunnelInput) (*entity.EmailFunnel, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	funnel, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("FUNNEL", err)
	}
	funnel.Name = in.Name
	funnel.Description = in.Description
	funnel.UpdatedAt = uc.Now()

	if err := uc.Repo.Update(ctx, funnel); err != nil {
		return nil, repoError("FUNNEL", err)
	}
	return funnel, nil
}

func (uc *EmailFunnelUseCase) List(ctx context.Context) ([]*entity.EmailFunnel, error) {
	funnels, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, repoError("FUNNEL", err)
	}
	return funnels, nil
}

func (uc *EmailFunnelUseCase) Delete(ctx context.Context, id string) error {
	return repoError("FUNNEL", uc.Repo.SoftDelete(ctx, id))
}

// SetActive only activates funnels that have something to send.
func (uc *EmailFunnelUseCase) SetActive(ctx context.Context, id string, active bool) error {
	if active {
		funnel, err := uc.Repo.FindByID(ctx, id)
		if err != nil {
			return repoError("FUNNEL", err)
		}
		if len(funnel.Phases) == 0 {
			return businessRule("funnel needs at least one phase before activation")
		}
	}
	if err := uc.Repo.SetActive(ctx, id, active); err != nil {
		return repoError("FUNNEL", err)
	}
	uc.Logger.Info("funnel activation changed", zap.String("funnel_id", id), zap.Bool("active", active))
	return nil
}

func (uc *EmailFunnelUseCase) AddPhase(ctx context.Context, funnelID string, in PhaseInput) (*entity.FunnelPhase, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.TemplateID = strings.TrimSpace(in.TemplateID)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := uc.Repo.FindByID(ctx, funnelID); err != nil {
		return nil, repoError("FUNNEL", err)
	}
	tpl, err := uc.activeTemplate(ctx, in.TemplateID)
	if err != nil {
		return nil, err
	}

	phase := &entity.FunnelPhase{
		ID:           uuid.New().String(),
		FunnelID:     funnelID,
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		Name:         in.Name,
		DelayHours:   in.DelayHours,
	}
	if err := uc.Repo.AddPhase(ctx, phase); err != nil {
		return nil, repoError("PHASE", err)
	}
	return phase, nil
}

func (uc *EmailFunnelUseCase) UpdatePhase(ctx context.Context, funnelID, phaseID string, in PhaseInput) (*entity.FunnelPhase, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.TemplateID = strings.TrimSpace(in.TemplateID)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	funnel, err := uc.Repo.FindByID(ctx, funnelID)
	if err != nil {
		return nil, repoError("FUNNEL", err)
	}
	var phase *entity.FunnelPhase
	for i := range funnel.Phases {
		if funnel.Phases[i].ID == phaseID {
			phase = &funnel.Phases[i]
			break
		}
	}
	if phase == nil {
		return nil, notFound("PHASE")
	}

	if in.TemplateID != phase.TemplateID {
		tpl, err := uc.activeTemplate(ctx, in.TemplateID)
		if err != nil {
			return nil, err
		}
		phase.TemplateID = tpl.ID
		phase.TemplateName = tpl.Name
	}
	phase.Name = in.Name
	phase.DelayHours = in.DelayHours

	if err := uc.Repo.UpdatePhase(ctx, phase); err != nil {
		return nil, repoError("PHASE", err)
	}
	return phase, nil
}

// RemovePhase deletes a phase. An active funnel keeps at least one phase.
func (uc *EmailFunnelUseCase) RemovePhase(ctx context.Context, funnelID, phaseID string) error {
	funnel, err := uc.Repo.FindByID(ctx, funnelID)
	if err != nil {
		return repoError("FUNNEL", err)
	}
	if funnel.IsActive && len(funnel.Phases) == 1 && funnel.Phases[0].ID == phaseID {
		return businessRule("cannot remove the last phase of an active funnel")
	}
	return repoError("PHASE", uc.Repo.DeletePhase(ctx, funnelID, phaseID))
}

// ReorderPhases requires phase_ids to be a permutation of the funnel's phases.
func (uc *EmailFunnelUseCase) ReorderPhases(ctx context.Context, funnelID string, in ReorderInput) (*entity.EmailFunnel, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	funnel, err := uc.Repo.FindByID(ctx, funnelID)
	if err != nil {
		return nil, repoError("FUNNEL", err)
	}
	if len(in.PhaseIDs) != len(funnel.Phases) {
		return nil, invalidField("phase_ids", "must list every phase of the funnel exactly once")
	}
	existing := make(map[string]bool, len(funnel.Phases))
	for _, p := range funnel.Phases {
		existing[p.ID] = true
	}
	seen := make(map[string]bool, len(in.PhaseIDs))
	for _, id := range in.PhaseIDs {
		if !existing[id] || seen[id] {
			return nil, invalidField("phase_ids", "must list every phase of the funnel exactly once")
		}
		seen[id] = true
	}

	if err := uc.Repo.ReorderPhases(ctx, funnelID, in.PhaseIDs); err != nil {
		return nil, repoError("PHASE", err)
	}
	return uc.Get(ctx, funnelID)
}

func (uc *EmailFunnelUseCase) activeTemplate(ctx context.Context, id string) (*entity.EmailTemplate, error) {
	tpl, err := uc.TemplateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("TEMPLATE", err)
	}
	if !tpl.IsActive {
		return nil, businessRule("template is not active")
	}
	return tpl, nil
}
