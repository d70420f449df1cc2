package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/printing"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/storage"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

var (
	withConsumer bool
	autoMigrate  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), withConsumer)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&withConsumer, "with-consumer", true, "also consume funnel sends in this process")
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")
}

func runServe(parent context.Context, consume bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("shutdown cleanup failed", zap.Error(err))
		}
	}()

	if autoMigrate {
		m, err := database.NewMigrator(a.db, log)
		if err != nil {
			return err
		}
		if err := m.Up(); err != nil {
			return err
		}
	}

	// 1. Adapters
	store, err := storage.NewS3Storage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Warn("document bucket not ready", zap.Error(err))
	}

	pdf := printing.NewChromeRenderer(cfg.PDF, log)
	defer pdf.Close()
	invoiceTpl, err := printing.NewInvoiceTemplate()
	if err != nil {
		return err
	}

	statsCache := a.statsCache()
	producer := queue.NewProducer(a.rabbitMQ.Ch)

	// 2. UseCases
	leadUC := usecase.NewLeadUseCase(a.leads, log)
	dealUC := usecase.NewDealUseCase(a.deals, a.leads, statsCache, log)
	taskUC := usecase.NewTaskUseCase(a.tasks)
	templateUC := usecase.NewEmailTemplateUseCase(a.templates, a.leads, a.renderer)
	funnelUC := usecase.NewEmailFunnelUseCase(a.funnels, a.templates, log)
	enrollmentUC := usecase.NewEnrollmentUseCase(a.enrollments, a.funnels, a.leads, log)
	dispatchUC := usecase.NewDispatchDueEnrollmentsUseCase(a.enrollments, producer, cfg.Funnel.BatchSize, log)
	documentUC := usecase.NewDocumentUseCase(a.documents, store, cfg.HTTP.MaxUploadBytes, log)
	invoiceUC := usecase.NewGenerateInvoiceUseCase(invoiceTpl, pdf, store, a.documents, a.invoices, a.recorder, log)
	turboUC := usecase.NewTurboUseCase(a.turbo, log)
	conferenceUC := usecase.NewHandleConferenceEventUseCase(a.turbo, a.calls, a.recorder, log)
	dashboardUC := usecase.NewGetDashboardUseCase(a.dashboard, statsCache, log)

	// 3. Handlers + Router
	health := handlers.NewHealthHandler(version, map[string]handlers.HealthCheck{
		"database": a.db.PingContext,
		"rabbitmq": func(context.Context) error {
			if !a.rabbitMQ.IsHealthy() {
				return errors.New("connection closed")
			}
			return nil
		},
		"redis":   a.redisCheck(),
		"storage": store.Ping,
	})

	router := handlers.NewRouter(handlers.RouterConfig{
		CORSAllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		JWTSecret:         cfg.Auth.JWTSecret,
		LeadCaptureLimit:  cfg.HTTP.LeadCaptureLimit,
		LeadCaptureWindow: cfg.HTTP.LeadCaptureWindow,
	}, handlers.Handlers{
		Health:     health,
		Leads:      handlers.NewLeadHandler(leadUC, log),
		Deals:      handlers.NewDealHandler(dealUC, log),
		Tasks:      handlers.NewTaskHandler(taskUC, log),
		Templates:  handlers.NewTemplateHandler(templateUC, log),
		Funnels:    handlers.NewFunnelHandler(funnelUC, enrollmentUC, log),
		Documents:  handlers.NewDocumentHandler(documentUC, cfg.HTTP.MaxUploadBytes, log),
		Invoices:   handlers.NewInvoiceHandler(invoiceUC, log),
		Turbo:      handlers.NewTurboHandler(turboUC, log),
		Dashboard:  handlers.NewDashboardHandler(dashboardUC, log),
		Conference: handlers.NewConferenceWebhookHandler(conferenceUC, cfg.Twilio.AuthToken, cfg.Twilio.PublicBaseURL, log),
	}, log)

	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret is empty, API authentication is disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	// 4. HTTP, scheduler, expiração e consumer no mesmo errgroup
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		worker.NewFunnelScheduler(dispatchUC, cfg.Funnel.SchedulerInterval, log).Start(gctx)
		return nil
	})

	g.Go(func() error {
		worker.NewTurboSessionExpiry(turboUC, cfg.Turbo.SessionExpiry, cfg.Turbo.SweepInterval, log).Start(gctx)
		return nil
	})

	if consume {
		g.Go(func() error { return a.startConsumer(gctx) })
	}

	return g.Wait()
}

func (a *app) redisCheck() handlers.HealthCheck {
	if a.redis == nil {
		return nil
	}
	return func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
}
