package entity

import (
	"context"
	"time"
)

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	LeadID      *string    `json:"lead_id,omitempty"`
	LeadName    string     `json:"lead_name,omitempty"`
	DealID      *string    `json:"deal_id,omitempty"`
	DealTitle   string     `json:"deal_title,omitempty"`
	CallID      *string    `json:"call_id,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	IsDeleted   bool       `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status == TaskStatusPending && t.DueDate != nil && t.DueDate.Before(now)
}

func IsValidTaskPriority(p string) bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

type TaskFilter struct {
	Status     string
	AssignedTo string
	LeadID     string
	DealID     string
	Overdue    bool
	Now        time.Time
	Limit      int
	Offset     int
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, task *Task) error
	SetStatus(ctx context.Context, id, status string, completedAt *time.Time) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter TaskFilter) ([]*Task, error)
}
