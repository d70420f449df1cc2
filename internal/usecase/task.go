package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type TaskInput struct {
	Title       string     `json:"title" validate:"notblank,max=200"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	LeadID      *string    `json:"lead_id" validate:"omitempty,uuid"`
	DealID      *string    `json:"deal_id" validate:"omitempty,uuid"`
	CallID      *string    `json:"call_id" validate:"omitempty,uuid"`
	AssignedTo  string     `json:"assigned_to"`
}

func (in *TaskInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Priority == "" {
		in.Priority = entity.TaskPriorityMedium
	}
	in.LeadID = blankToNil(in.LeadID)
	in.DealID = blankToNil(in.DealID)
	in.CallID = blankToNil(in.CallID)
}

type TaskUseCase struct {
	Repo entity.TaskRepositoryInterface
	Now  func() time.Time
}

func NewTaskUseCase(repo entity.TaskRepositoryInterface) *TaskUseCase {
	return &TaskUseCase{Repo: repo, Now: time.Now}
}

func (uc *TaskUseCase) Create(ctx context.Context, in TaskInput) (*entity.Task, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := uc.Now()
	task := &entity.Task{
		ID:        uuid.New().String(),
		Status:    entity.TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyTaskInput(task, in)

	if err := uc.Repo.Create(ctx, task); err != nil {
		return nil, repoError("TASK", err)
	}
	return task, nil
}

func (uc *TaskUseCase) Get(ctx context.Context, id string) (*entity.Task, error) {
	task, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("TASK", err)
	}
	return task, nil
}

func (uc *TaskUseCase) Update(ctx context.Context, id string, in TaskInput) (*entity.Task, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	task, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("TASK", err)
	}
	applyTaskInput(task, in)
	task.UpdatedAt = uc.Now()

	if err := uc.Repo.Update(ctx, task); err != nil {
		return nil, repoError("TASK", err)
	}
	return task, nil
}

// ToggleStatus flips pending and completed, stamping completed_at on completion.
func (uc *TaskUseCase) ToggleStatus(ctx context.Context, id string) (*entity.Task, error) {
	task, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("TASK", err)
	}

	now := uc.Now()
	if task.Status == entity.TaskStatusCompleted {
		task.Status = entity.TaskStatusPending
		task.CompletedAt = nil
	} else {
		task.Status = entity.TaskStatusCompleted
		task.CompletedAt = &now
	}
	task.UpdatedAt = now

	if err := uc.Repo.SetStatus(ctx, id, task.Status, task.CompletedAt); err != nil {
		return nil, repoError("TASK", err)
	}
	return task, nil
}

func (uc *TaskUseCase) Delete(ctx context.Context, id string) error {
	return repoError("TASK", uc.Repo.SoftDelete(ctx, id))
}

func (uc *TaskUseCase) List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error) {
	if filter.Status != "" && filter.Status != entity.TaskStatusPending && filter.Status != entity.TaskStatusCompleted {
		return nil, invalidField("status", "must be one of: pending completed")
	}
	if filter.Overdue && filter.Now.IsZero() {
		filter.Now = uc.Now()
	}
	tasks, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, repoError("TASK", err)
	}
	return tasks, nil
}

func applyTaskInput(task *entity.Task, in TaskInput) {
	task.Title = in.Title
	task.Description = in.Description
	task.DueDate = in.DueDate
	task.Priority = in.Priority
	task.LeadID = in.LeadID
	task.DealID = in.DealID
	task.CallID = in.CallID
	task.AssignedTo = strings.TrimSpace(in.AssignedTo)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
