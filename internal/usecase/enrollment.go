package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type EnrollInput struct {
	LeadID string `json:"lead_id" validate:"notblank,uuid"`
}

type EnrollmentUseCase struct {
	Repo       entity.EnrollmentRepositoryInterface
	FunnelRepo entity.EmailFunnelRepositoryInterface
	LeadRepo   entity.LeadRepositoryInterface
	Logger     *zap.Logger
	Now        func() time.Time
}

func NewEnrollmentUseCase(
	repo entity.EnrollmentRepositoryInterface,
	funnelRepo entity.EmailFunnelRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	logger *zap.Logger,
) *EnrollmentUseCase {
	return &EnrollmentUseCase{
		Repo:       repo,
		FunnelRepo: funnelRepo,
		LeadRepo:   leadRepo,
		Logger:     logger.Named("enrollments"),
		Now:        time.Now,
	}
}

// Enroll schedules the first phase relative to the enrollment time.
func (uc *EnrollmentUseCase) Enroll(ctx context.Context, funnelID string, in EnrollInput) (*entity.Enrollment, error) {
	in.LeadID = strings.TrimSpace(in.LeadID)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	funnel, err := uc.FunnelRepo.FindByID(ctx, funnelID)
	if err != nil {
		return nil, repoError("FUNNEL", err)
	}
	if !funnel.IsActive {
		return nil, businessRule("funnel is not active")
	}
	if len(funnel.Phases) == 0 {
		return nil, businessRule("funnel has no phases")
	}

	lead, err := uc.LeadRepo.FindByID(ctx, in.LeadID)
	if err != nil {
		return nil, repoError("LEAD", err)
	}
	if strings.TrimSpace(lead.Email) == "" {
		return nil, businessRule("lead has no email address")
	}

	now := uc.Now()
	next := now.Add(funnel.Phases[0].Delay())
	e := &entity.Enrollment{
		ID:         uuid.New().String(),
		FunnelID:   funnel.ID,
		LeadID:     lead.ID,
		LeadName:   lead.FullName(),
		LeadEmail:  lead.Email,
		Status:     entity.EnrollmentActive,
		NextSendAt: &next,
		EnrolledAt: now,
		UpdatedAt:  now,
	}
	if err := uc.Repo.Create(ctx, e); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return nil, conflict("lead is already enrolled in this funnel")
		}
		return nil, repoError("ENROLLMENT", err)
	}

	uc.Logger.Info("lead enrolled",
		zap.String("enrollment_id", e.ID),
		zap.String("funnel_id", funnel.ID),
		zap.String("lead_id", lead.ID),
		zap.Time("next_send_at", next),
	)
	return e, nil
}

func (uc *EnrollmentUseCase) ListByFunnel(ctx context.Context, funnelID string) ([]*entity.Enrollment, error) {
	if _, err := uc.FunnelRepo.FindByID(ctx, funnelID); err != nil {
		return nil, repoError("FUNNEL", err)
	}
	enrollments, err := uc.Repo.ListByFunnel(ctx, funnelID)
	if err != nil {
		return nil, repoError("ENROLLMENT", err)
	}
	return enrollments, nil
}

func (uc *EnrollmentUseCase) Pause(ctx context.Context, id string) (*entity.Enrollment, error) {
	return uc.transition(ctx, id, func(e *entity.Enrollment, _ time.Time) error {
		if e.Status != entity.EnrollmentActive {
			return businessRule("only active enrollments can be paused")
		}
		e.Status = entity.EnrollmentPaused
		e.NextSendAt = nil
		return nil
	})
}

// Resume makes the next phase due immediately.
func (uc *EnrollmentUseCase) Resume(ctx context.Context, id string) (*entity.Enrollment, error) {
	return uc.transition(ctx, id, func(e *entity.Enrollment, now time.Time) error {
		if e.Status != entity.EnrollmentPaused {
			return businessRule("only paused enrollments can be resumed")
		}
		e.Status = entity.EnrollmentActive
		e.NextSendAt = &now
		return nil
	})
}

func (uc *EnrollmentUseCase) Cancel(ctx context.Context, id string) (*entity.Enrollment, error) {
	return uc.transition(ctx, id, func(e *entity.Enrollment, _ time.Time) error {
		if !e.IsOpen() {
			return businessRule("enrollment is already finished")
		}
		e.Status = entity.EnrollmentCancelled
		e.NextSendAt = nil
		return nil
	})
}

func (uc *EnrollmentUseCase) transition(ctx context.Context, id string, apply func(*entity.Enrollment, time.Time) error) (*entity.Enrollment, error) {
	e, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("ENROLLMENT", err)
	}

	now := uc.Now()
	if err := apply(e, now); err != nil {
		return nil, err
	}
	e.UpdatedAt = now

	if err := uc.Repo.Update(ctx, e); err != nil {
		return nil, repoError("ENROLLMENT", err)
	}
	uc.Logger.Info("enrollment status changed", zap.String("enrollment_id", e.ID), zap.String("status", e.Status))
	return e, nil
}
