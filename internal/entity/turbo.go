package entity

import (
	"context"
	"time"
)

const (
	TurboSessionWaiting = "waiting"
	TurboSessionActive  = "active"
	TurboSessionEnded   = "ended"

	RepAvailable = "available"
	RepBusy      = "busy"
)

type TurboSession struct {
	ID            string     `json:"id"`
	RepID         string     `json:"rep_id"`
	Status        string     `json:"status"`
	ConferenceSid *string    `json:"conference_sid,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type PooledRep struct {
	RepID     string    `json:"rep_id"`
	SessionID *string   `json:"session_id,omitempty"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TurboRepositoryInterface interface {
	JoinPool(ctx context.Context, repID string) error
	LeavePool(ctx context.Context, repID string) error
	ListPool(ctx context.Context) ([]*PooledRep, error)

	// StartSession claims an available rep, marks it busy and inserts the session in
	// one transaction. Returns ErrNoRepAvailable when the pool is empty.
	StartSession(ctx context.Context, session *TurboSession) error
	FindSession(ctx context.Context, id string) (*TurboSession, error)
	AttachConference(ctx context.Context, sessionID, conferenceSid string) error
	EndSession(ctx context.Context, sessionID string, endedAt time.Time) error

	// ReleaseRep frees the rep bound to sessionID. Reports false when nothing was bound.
	ReleaseRep(ctx context.Context, sessionID string) (bool, error)

	// ExpireWaiting ends waiting sessions started before cutoff and returns their ids.
	ExpireWaiting(ctx context.Context, cutoff time.Time) ([]string, error)
}
