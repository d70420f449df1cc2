package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/cache"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// app holds the connections shared by every command.
type app struct {
	db       *sql.DB
	rabbitMQ *queue.RabbitMQ
	redis    *redis.Client

	leads       *database.LeadRepository
	deals       *database.DealRepository
	tasks       *database.TaskRepository
	templates   *database.EmailTemplateRepository
	funnels     *database.EmailFunnelRepository
	enrollments *database.EnrollmentRepository
	documents   *database.DocumentRepository
	invoices    *database.InvoiceRepository
	turbo       *database.TurboRepository
	calls       *database.CallRepository
	dashboard   *database.DashboardRepository

	renderer *mail.Renderer
	recorder middleware.Recorder
}

func newApp(ctx context.Context) (*app, error) {
	db, err := database.NewDBConnection(cfg.Database)
	if err != nil {
		return nil, err
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		db:          db,
		rabbitMQ:    rabbitMQ,
		// Repositórios
		leads:       database.NewLeadRepository(db),
		deals:       database.NewDealRepository(db),
		tasks:       database.NewTaskRepository(db),
		templates:   database.NewEmailTemplateRepository(db),
		funnels:     database.NewEmailFunnelRepository(db),
		enrollments: database.NewEnrollmentRepository(db),
		documents:   database.NewDocumentRepository(db),
		invoices:    database.NewInvoiceRepository(db),
		turbo:       database.NewTurboRepository(db),
		calls:       database.NewCallRepository(db),
		dashboard:   database.NewDashboardRepository(db),
		renderer:    mail.NewRenderer(),
	}

	// The stats cache is optional; without redis every dashboard read hits postgres.
	client, err := cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
	} else {
		a.redis = client
	}

	return a, nil
}

func (a *app) statsCache() usecase.StatsCache {
	if a.redis == nil {
		return nil
	}
	return cache.NewStatsCache(a.redis, cfg.Redis.StatsTTL, log)
}

func (a *app) emailSender() usecase.EmailSender {
	if cfg.Mail.Provider == "resend" {
		return mail.NewResendSender(cfg.Mail.ResendAPIKey, cfg.Mail.From, log)
	}
	return mail.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUser, cfg.Mail.SMTPPassword, cfg.Mail.From, log)
}

func (a *app) sendFunnelPhase() *usecase.SendFunnelPhaseUseCase {
	return usecase.NewSendFunnelPhaseUseCase(
		a.enrollments, a.funnels, a.templates, a.leads,
		a.renderer, a.emailSender(), a.recorder,
		cfg.Funnel.RetryDelay, log,
	)
}

// startConsumer runs the funnel send consumer until ctx is done.
func (a *app) startConsumer(ctx context.Context) error {
	w := queue.NewWorker(a.rabbitMQ.Ch, a.sendFunnelPhase(), log)
	if err := w.Start(ctx, queue.QueueName); err != nil {
		return fmt.Errorf("funnel consumer: %w", err)
	}
	return nil
}

func (a *app) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.rabbitMQ.Close(), a.db.Close())
	return errors.Join(errs...)
}
