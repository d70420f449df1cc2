package entity

import (
	"context"
	"time"
)

type EmailFunnel struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description,omitempty"`
	IsActive          bool          `json:"is_active"`
	IsDeleted         bool          `json:"-"`
	Phases            []FunnelPhase `json:"phases"`
	ActiveEnrollments int           `json:"active_enrollments"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// FunnelPhase is one timed send. Position starts at 1; DelayHours counts from the
// previous send (or from enrollment for the first phase).
type FunnelPhase struct {
	ID           string `json:"id"`
	FunnelID     string `json:"funnel_id"`
	TemplateID   string `json:"template_id"`
	TemplateName string `json:"template_name,omitempty"`
	Name         string `json:"name"`
	Position     int    `json:"position"`
	DelayHours   int    `json:"delay_hours"`
}

func (p FunnelPhase) Delay() time.Duration {
	return time.Duration(p.DelayHours) * time.Hour
}

type EmailFunnelRepositoryInterface interface {
	Create(ctx context.Context, funnel *EmailFunnel) error
	FindByID(ctx context.Context, id string) (*EmailFunnel, error)
	Update(ctx context.Context, funnel *EmailFunnel) error
	SetActive(ctx context.Context, id string, active bool) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*EmailFunnel, error)

	AddPhase(ctx context.Context, phase *FunnelPhase) error
	UpdatePhase(ctx context.Context, phase *FunnelPhase) error
	DeletePhase(ctx context.Context, funnelID, phaseID string) error
	ReorderPhases(ctx context.Context, funnelID string, phaseIDs []string) error
}
