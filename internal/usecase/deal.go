package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type DealInput struct {
	LeadID            string          `json:"lead_id" validate:"notblank,uuid"`
	Title             string          `json:"title" validate:"notblank,max=200"`
	Value             decimal.Decimal `json:"value"`
	Currency          string          `json:"currency" validate:"omitempty,len=3"`
	Stage             string          `json:"stage" validate:"omitempty,oneof=prospecting qualification proposal negotiation closed_won closed_lost"`
	Probability       int             `json:"probability" validate:"gte=0,lte=100"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date"`
	OwnerID           string          `json:"owner_id"`
}

func (in *DealInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.LeadID = strings.TrimSpace(in.LeadID)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = "USD"
	}
}

func (in DealInput) validate() error {
	errs := Validate(in)
	if in.Value.IsNegative() {
		errs = append(errs, ValidationError{Field: "value", Message: "must be greater than or equal to 0"})
	}
	if len(errs) > 0 {
		return invalid(errs)
	}
	return nil
}

// DealUseCase owns the pipeline. Every mutation drops the cached dashboard
// stats so the totals never lag behind a stage move.
type DealUseCase struct {
	Repo     entity.DealRepositoryInterface
	LeadRepo entity.LeadRepositoryInterface
	Cache    StatsCache
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewDealUseCase(repo entity.DealRepositoryInterface, leadRepo entity.LeadRepositoryInterface, cache StatsCache, logger *zap.Logger) *DealUseCase {
	return &DealUseCase{
		Repo:     repo,
		LeadRepo: leadRepo,
		Cache:    cache,
		Logger:   logger.Named("deals"),
		Now:      time.Now,
	}
}

func (uc *DealUseCase) Create(ctx context.Context, in DealInput) (*entity.Deal, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	lead, err := uc.LeadRepo.FindByID(ctx, in.LeadID)
	if err != nil {
		return nil, repoError("LEAD", err)
	}

	now := uc.Now()
	deal := &entity.Deal{
		ID:        uuid.New().String(),
		LeadID:    lead.ID,
		LeadName:  lead.FullName(),
		Stage:     entity.DealStageProspecting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyDealInput(deal, in, now)

	if err := uc.Repo.Create(ctx, deal); err != nil {
		return nil, repoError("DEAL", err)
	}
	uc.invalidate(ctx)

	uc.Logger.Info("deal created",
		zap.String("deal_id", deal.ID),
		zap.String("stage", deal.Stage),
		zap.String("value", deal.Value.StringFixed(2)),
	)
	return deal, nil
}

func (uc *DealUseCase) Get(ctx context.Context, id string) (*entity.Deal, error) {
	deal, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("DEAL", err)
	}
	return deal, nil
}

func (uc *DealUseCase) Update(ctx context.Context, id string, in DealInput) (*entity.Deal, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	deal, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("DEAL", err)
	}
	if in.LeadID != deal.LeadID {
		lead, err := uc.LeadRepo.FindByID(ctx, in.LeadID)
		if err != nil {
			return nil, repoError("LEAD", err)
		}
		deal.LeadID = lead.ID
		deal.LeadName = lead.FullName()
	}

	now := uc.Now()
	applyDealInput(deal, in, now)
	deal.UpdatedAt = now

	if err := uc.Repo.Update(ctx, deal); err != nil {
		return nil, repoError("DEAL", err)
	}
	uc.invalidate(ctx)
	return deal, nil
}

// MoveStage sets closed_at when the deal enters a closed stage and clears it
// when the deal is reopened.
func (uc *DealUseCase) MoveStage(ctx context.Context, id, stage string) (*entity.Deal, error) {
	if !entity.IsValidDealStage(stage) {
		return nil, invalidField("stage", "is invalid")
	}

	deal, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("DEAL", err)
	}

	now := uc.Now()
	deal.ClosedAt = closedAtFor(deal.Stage, stage, deal.ClosedAt, now)
	deal.Stage = stage
	deal.UpdatedAt = now

	if err := uc.Repo.UpdateStage(ctx, id, stage, deal.ClosedAt); err != nil {
		return nil, repoError("DEAL", err)
	}
	uc.invalidate(ctx)

	uc.Logger.Info("deal stage changed", zap.String("deal_id", id), zap.String("stage", stage))
	return deal, nil
}

func (uc *DealUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.Repo.SoftDelete(ctx, id); err != nil {
		return repoError("DEAL", err)
	}
	uc.invalidate(ctx)
	return nil
}

func (uc *DealUseCase) List(ctx context.Context, filter entity.DealFilter) ([]*entity.Deal, error) {
	if filter.Stage != "" && !entity.IsValidDealStage(filter.Stage) {
		return nil, invalidField("stage", "is invalid")
	}
	deals, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, repoError("DEAL", err)
	}
	return deals, nil
}

func (uc *DealUseCase) invalidate(ctx context.Context) {
	if uc.Cache == nil {
		return
	}
	if err := uc.Cache.InvalidateStats(ctx); err != nil {
		uc.Logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func applyDealInput(deal *entity.Deal, in DealInput, now time.Time) {
	deal.Title = in.Title
	deal.Value = in.Value.Round(2)
	deal.Currency = in.Currency
	deal.Probability = in.Probability
	deal.ExpectedCloseDate = in.ExpectedCloseDate
	deal.OwnerID = in.OwnerID
	if in.Stage != "" {
		deal.ClosedAt = closedAtFor(deal.Stage, in.Stage, deal.ClosedAt, now)
		deal.Stage = in.Stage
	}
}

func closedAtFor(from, to string, current *time.Time, now time.Time) *time.Time {
	switch {
	case !entity.IsClosedStage(to):
		return nil
	case entity.IsClosedStage(from) && current != nil:
		return current
	default:
		return &now
	}
}
