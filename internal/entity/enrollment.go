package entity

import (
	"context"
	"time"
)

const (
	EnrollmentActive    = "active"
	EnrollmentPaused    = "paused"
	EnrollmentCompleted = "completed"
	EnrollmentCancelled = "cancelled"
)

// Enrollment tracks a lead's progress through a funnel. CurrentPhase is the number of
// phases already sent, so the next phase to send is at position CurrentPhase+1.
type Enrollment struct {
	ID           string     `json:"id"`
	FunnelID     string     `json:"funnel_id"`
	LeadID       string     `json:"lead_id"`
	LeadName     string     `json:"lead_name,omitempty"`
	LeadEmail    string     `json:"lead_email,omitempty"`
	Status       string     `json:"status"`
	CurrentPhase int        `json:"current_phase"`
	NextSendAt   *time.Time `json:"next_send_at,omitempty"`
	LastSentAt   *time.Time `json:"last_sent_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	EnrolledAt   time.Time  `json:"enrolled_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (e *Enrollment) IsOpen() bool {
	return e.Status == EnrollmentActive || e.Status == EnrollmentPaused
}

type EnrollmentRepositoryInterface interface {
	// Create fails with ErrConflict when the lead already has an open enrollment in the funnel.
	Create(ctx context.Context, e *Enrollment) error
	FindByID(ctx context.Context, id string) (*Enrollment, error)
	ListByFunnel(ctx context.Context, funnelID string) ([]*Enrollment, error)
	Update(ctx context.Context, e *Enrollment) error

	// Reschedule sets next_send_at and last_error on an active enrollment without
	// touching its progress.
	Reschedule(ctx context.Context, id string, at time.Time, lastError string) error

	// ClaimDue nulls next_send_at on up to limit active enrollments due at now and
	// returns them. Concurrent callers never claim the same row.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Enrollment, error)
}
