package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
)

type RouterConfig struct {
	CORSAllowOrigins  []string
	JWTSecret         string
	LeadCaptureLimit  int
	LeadCaptureWindow time.Duration
}

type Handlers struct {
	Health     *HealthHandler
	Leads      *LeadHandler
	Deals      *DealHandler
	Tasks      *TaskHandler
	Templates  *TemplateHandler
	Funnels    *FunnelHandler
	Documents  *DocumentHandler
	Invoices   *InvoiceHandler
	Turbo      *TurboHandler
	Dashboard  *DashboardHandler
	Conference *ConferenceWebhookHandler
}

func NewRouter(cfg RouterConfig, h Handlers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Page-Count", "X-Invoice-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhooks/twilio/conference-status", h.Conference.Handle)

	limiter := middleware.NewRateLimiter(cfg.LeadCaptureLimit, cfg.LeadCaptureWindow)
	r.With(limiter.Middleware).Post("/public/leads", h.Leads.CaptureLead)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		r.Get("/dashboard", h.Dashboard.Handle)
		r.Route("/leads", h.Leads.Routes)
		r.Route("/deals", h.Deals.Routes)
		r.Route("/tasks", h.Tasks.Routes)
		r.Route("/email-templates", h.Templates.Routes)
		r.Route("/email-funnels", h.Funnels.Routes)
		r.Route("/enrollments", h.Funnels.EnrollmentRoutes)
		r.Route("/documents", h.Documents.Routes)
		r.Route("/invoices", h.Invoices.Routes)
		r.Route("/turbo", h.Turbo.Routes)
	})

	return r
}
