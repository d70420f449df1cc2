package usecase

import (
	"context"
	"io"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type FunnelSendPayload struct {
	EnrollmentID string    `json:"enrollment_id"`
	FunnelID     string    `json:"funnel_id"`
	LeadID       string    `json:"lead_id"`
	Phase        int       `json:"phase"`
	ClaimedAt    time.Time `json:"claimed_at"`
}

type FunnelQueue interface {
	PublishFunnelSend(ctx context.Context, payload FunnelSendPayload) error
}

type OutgoingEmail struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	Tags     map[string]string
}

type EmailSender interface {
	Send(ctx context.Context, msg OutgoingEmail) error
}

// TemplateRenderer substitutes lead placeholders into a template.
type TemplateRenderer interface {
	Render(tpl *entity.EmailTemplate, vars map[string]string) (subject string, html string, err error)
}

type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key, filename string) (string, error)
	PresignPut(ctx context.Context, key, contentType string) (string, error)
}

// PDFRenderer turns a printable HTML page into PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
	CountPages(pdf []byte) (int, error)
}

type StatsCache interface {
	GetStats(ctx context.Context) (*entity.DashboardStats, bool, error)
	SetStats(ctx context.Context, stats *entity.DashboardStats) error
	InvalidateStats(ctx context.Context) error
}

// EventRecorder receives business counters. The prometheus middleware package
// implements it; tests use NopRecorder.
type EventRecorder interface {
	FunnelEmail(status string)
	ConferenceEvent(event string)
	DocumentGenerated(kind string)
}

type NopRecorder struct{}

func (NopRecorder) FunnelEmail(string)       {}
func (NopRecorder) ConferenceEvent(string)   {}
func (NopRecorder) DocumentGenerated(string) {}
