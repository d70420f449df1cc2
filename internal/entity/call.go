package entity

import (
	"context"
	"time"
)

const (
	CallStatusInConference = "in_conference"
	CallStatusLeft         = "left"
	CallStatusCompleted    = "completed"
)

type Call struct {
	ID            string     `json:"id"`
	CallSid       string     `json:"call_sid"`
	LeadID        *string    `json:"lead_id,omitempty"`
	RepID         string     `json:"rep_id,omitempty"`
	SessionID     *string    `json:"session_id,omitempty"`
	ConferenceSid *string    `json:"conference_sid,omitempty"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
}

type CallRepositoryInterface interface {
	// JoinConference records the participant, creating the call row when the dialer
	// has not registered it yet.
	JoinConference(ctx context.Context, callSid, conferenceSid string, sessionID *string) error
	LeaveConference(ctx context.Context, callSid, status string, at time.Time) error
}
