package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// DispatchDueEnrollmentsUseCase claims due enrollments and queues one send per
// claim. A claim nulls next_send_at, so an enrollment is queued at most once
// until the consumer reschedules it.
type DispatchDueEnrollmentsUseCase struct {
	Repo      entity.EnrollmentRepositoryInterface
	Queue     FunnelQueue
	Logger    *zap.Logger
	BatchSize int
	Now       func() time.Time
}

func NewDispatchDueEnrollmentsUseCase(repo entity.EnrollmentRepositoryInterface, queue FunnelQueue, batchSize int, logger *zap.Logger) *DispatchDueEnrollmentsUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &DispatchDueEnrollmentsUseCase{
		Repo:      repo,
		Queue:     queue,
		Logger:    logger.Named("funnel_dispatch"),
		BatchSize: batchSize,
		Now:       time.Now,
	}
}

// Execute returns how many sends were queued.
func (uc *DispatchDueEnrollmentsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.Now()
	claimed, err := uc.Repo.ClaimDue(ctx, now, uc.BatchSize)
	if err != nil {
		return 0, repoError("ENROLLMENT", err)
	}

	queued := 0
	for _, e := range claimed {
		payload := FunnelSendPayload{
			EnrollmentID: e.ID,
			FunnelID:     e.FunnelID,
			LeadID:       e.LeadID,
			Phase:        e.CurrentPhase + 1,
			ClaimedAt:    now,
		}
		if err := uc.Queue.PublishFunnelSend(ctx, payload); err != nil {
			uc.Logger.Error("failed to queue funnel send",
				zap.String("enrollment_id", e.ID),
				zap.Error(err),
			)
			// put it back so the next tick picks it up again
			if rerr := uc.Repo.Reschedule(ctx, e.ID, now, "queue: "+err.Error()); rerr != nil {
				uc.Logger.Error("failed to release claimed enrollment", zap.String("enrollment_id", e.ID), zap.Error(rerr))
			}
			continue
		}
		queued++
	}

	if len(claimed) > 0 {
		uc.Logger.Info("funnel sends dispatched", zap.Int("claimed", len(claimed)), zap.Int("queued", queued))
	}
	return queued, nil
}

// SendFunnelPhaseUseCase delivers one phase and advances the enrollment.
type SendFunnelPhaseUseCase struct {
	Enrollments entity.EnrollmentRepositoryInterface
	Funnels     entity.EmailFunnelRepositoryInterface
	Templates   entity.EmailTemplateRepositoryInterface
	Leads       entity.LeadRepositoryInterface
	Renderer    TemplateRenderer
	Sender      EmailSender
	Recorder    EventRecorder
	Logger      *zap.Logger
	RetryDelay  time.Duration
	Now         func() time.Time
}

func NewSendFunnelPhaseUseCase(
	enrollments entity.EnrollmentRepositoryInterface,
	funnels entity.EmailFunnelRepositoryInterface,
	templates entity.EmailTemplateRepositoryInterface,
	leads entity.LeadRepositoryInterface,
	renderer TemplateRenderer,
	sender EmailSender,
	recorder EventRecorder,
	retryDelay time.Duration,
	logger *zap.Logger,
) *SendFunnelPhaseUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if retryDelay <= 0 {
		retryDelay = 15 * time.Minute
	}
	return &SendFunnelPhaseUseCase{
		Enrollments: enrollments,
		Funnels:     funnels,
		Templates:   templates,
		Leads:       leads,
		Renderer:    renderer,
		Sender:      sender,
		Recorder:    recorder,
		Logger:      logger.Named("funnel_send"),
		RetryDelay:  retryDelay,
		Now:         time.Now,
	}
}

// Execute returns an error only when the send failed; the claimed enrollment
// is then rescheduled after RetryDelay so the scheduler picks it up again.
// Stale or obsolete payloads are dropped silently.
func (uc *SendFunnelPhaseUseCase) Execute(ctx context.Context, payload FunnelSendPayload) error {
	err := uc.send(ctx, payload)
	if err == nil {
		return nil
	}

	retryAt := uc.Now().Add(uc.RetryDelay)
	if rerr := uc.Enrollments.Reschedule(ctx, payload.EnrollmentID, retryAt, err.Error()); rerr != nil && !errors.Is(rerr, entity.ErrNotFound) {
		uc.Logger.Error("failed to reschedule enrollment",
			zap.String("enrollment_id", payload.EnrollmentID),
			zap.Error(rerr),
		)
	}
	return err
}

func (uc *SendFunnelPhaseUseCase) send(ctx context.Context, payload FunnelSendPayload) error {
	log := uc.Logger.With(zap.String("enrollment_id", payload.EnrollmentID), zap.Int("phase", payload.Phase))

	// 1. Inscrição ainda ativa e na fase esperada?
	e, err := uc.Enrollments.FindByID(ctx, payload.EnrollmentID)
	if errors.Is(err, entity.ErrNotFound) {
		log.Warn("enrollment not found, dropping send")
		return nil
	}
	if err != nil {
		return repoError("ENROLLMENT", err)
	}
	if e.Status != entity.EnrollmentActive {
		log.Info("enrollment no longer active, skipping", zap.String("status", e.Status))
		uc.Recorder.FunnelEmail("skipped")
		return nil
	}
	if payload.Phase != e.CurrentPhase+1 {
		log.Info("stale funnel send, skipping", zap.Int("current_phase", e.CurrentPhase))
		uc.Recorder.FunnelEmail("skipped")
		return nil
	}

	now := uc.Now()

	// 2. Funil e fase
	funnel, err := uc.Funnels.FindByID(ctx, e.FunnelID)
	if errors.Is(err, entity.ErrNotFound) {
		return uc.finish(ctx, e, entity.EnrollmentCancelled, "funnel deleted", now)
	}
	if err != nil {
		return repoError("FUNNEL", err)
	}
	if !funnel.IsActive {
		log.Info("funnel inactive, postponing send")
		return repoError("ENROLLMENT", uc.Enrollments.Reschedule(ctx, e.ID, now.Add(uc.RetryDelay), "funnel inactive"))
	}

	phase, ok := phaseAt(funnel, e.CurrentPhase+1)
	if !ok {
		return uc.finish(ctx, e, entity.EnrollmentCompleted, "", now)
	}

	// 3. Lead
	lead, err := uc.Leads.FindByID(ctx, e.LeadID)
	if errors.Is(err, entity.ErrNotFound) {
		return uc.finish(ctx, e, entity.EnrollmentCancelled, "lead deleted", now)
	}
	if err != nil {
		return repoError("LEAD", err)
	}

	// 4. Renderiza e envia
	if err := uc.deliver(ctx, phase, lead); err != nil {
		uc.Recorder.FunnelEmail("failed")
		log.Error("funnel send failed", zap.Error(err))
		return err
	}

	// 5. Avança (ou conclui)
	e.CurrentPhase++
	e.LastSentAt = &now
	e.LastError = ""
	e.UpdatedAt = now
	if next, ok := phaseAt(funnel, e.CurrentPhase+1); ok {
		at := now.Add(next.Delay())
		e.NextSendAt = &at
	} else {
		e.Status = entity.EnrollmentCompleted
		e.NextSendAt = nil
		e.CompletedAt = &now
	}

	if err := uc.Enrollments.Update(ctx, e); err != nil {
		return repoError("ENROLLMENT", err)
	}

	uc.Recorder.FunnelEmail("sent")
	log.Info("funnel phase sent",
		zap.String("lead_id", lead.ID),
		zap.String("template_id", phase.TemplateID),
		zap.String("status", e.Status),
	)
	return nil
}

func (uc *SendFunnelPhaseUseCase) deliver(ctx context.Context, phase entity.FunnelPhase, lead *entity.Lead) error {
	tpl, err := uc.Templates.FindByID(ctx, phase.TemplateID)
	if err != nil {
		return fmt.Errorf("load template %s: %w", phase.TemplateID, err)
	}

	subject, html, err := uc.Renderer.Render(tpl, LeadVars(lead))
	if err != nil {
		return &TechnicalError{Code: CodeRender, Message: "failed to render template", Err: err}
	}

	msg := OutgoingEmail{
		To:       lead.Email,
		ToName:   lead.FullName(),
		Subject:  subject,
		HTMLBody: html,
		Tags: map[string]string{
			"funnel_id": phase.FunnelID,
			"phase":     fmt.Sprint(phase.Position),
		},
	}
	if err := uc.Sender.Send(ctx, msg); err != nil {
		return &TechnicalError{Code: CodeMail, Message: "failed to send email", Err: err}
	}
	return nil
}

func (uc *SendFunnelPhaseUseCase) finish(ctx context.Context, e *entity.Enrollment, status, reason string, now time.Time) error {
	e.Status = status
	e.NextSendAt = nil
	e.LastError = reason
	e.UpdatedAt = now
	if status == entity.EnrollmentCompleted {
		e.CompletedAt = &now
	}
	if err := uc.Enrollments.Update(ctx, e); err != nil {
		return repoError("ENROLLMENT", err)
	}
	uc.Logger.Info("enrollment finished",
		zap.String("enrollment_id", e.ID),
		zap.String("status", status),
		zap.String("reason", reason),
	)
	return nil
}

func phaseAt(funnel *entity.EmailFunnel, position int) (entity.FunnelPhase, bool) {
	for _, p := range funnel.Phases {
		if p.Position == position {
			return p, true
		}
	}
	return entity.FunnelPhase{}, false
}
