package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	LeadStatusNew         = "new"
	LeadStatusContacted   = "contacted"
	LeadStatusQualified   = "qualified"
	LeadStatusUnqualified = "unqualified"
	LeadStatusConverted   = "converted"
)

type Lead struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Source    string    `json:"source,omitempty"`
	Status    string    `json:"status"` // new, contacted, qualified, unqualified, converted
	OwnerID   string    `json:"owner_id,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewLead(firstName, lastName, email string) *Lead {
	now := time.Now()
	return &Lead{
		ID:        uuid.New().String(),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Status:    LeadStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

func IsValidLeadStatus(status string) bool {
	switch status {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusUnqualified, LeadStatusConverted:
		return true
	}
	return false
}

type LeadFilter struct {
	Status  string
	OwnerID string
	Search  string
	Limit   int
	Offset  int
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	Update(ctx context.Context, lead *Lead) error
	UpdateStatus(ctx context.Context, id, status string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)

	// Upsert keys on email and keeps existing name/phone when the new ones are empty.
	Upsert(ctx context.Context, lead *Lead) error
}
