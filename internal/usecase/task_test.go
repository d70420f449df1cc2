package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestTaskUseCase_ToggleStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 9, 9, 0, 0, 0, time.UTC)
	repo := new(MockTaskRepository)
	uc := NewTaskUseCase(repo)
	uc.Now = fixedClock(now)

	done := now.Add(-time.Hour)
	repo.On("FindByID", ctx, "open").Return(&entity.Task{ID: "open", Status: entity.TaskStatusPending}, nil)
	repo.On("FindByID", ctx, "done").Return(&entity.Task{ID: "done", Status: entity.TaskStatusCompleted, CompletedAt: &done}, nil)
	repo.On("SetStatus", ctx, "open", entity.TaskStatusCompleted, &now).Return(nil)
	repo.On("SetStatus", ctx, "done", entity.TaskStatusPending, (*time.Time)(nil)).Return(nil)

	task, err := uc.ToggleStatus(ctx, "open")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusCompleted, task.Status)
	assert.Equal(t, now, *task.CompletedAt)

	task, err = uc.ToggleStatus(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusPending, task.Status)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskUseCase_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTaskRepository)
	uc := NewTaskUseCase(repo)
	repo.On("Create", ctx, mock.MatchedBy(func(task *entity.Task) bool {
		return task.Priority == entity.TaskPriorityMedium && task.LeadID == nil && task.Status == entity.TaskStatusPending
	})).Return(nil)

	blank := "  "
	_, err := uc.Create(ctx, TaskInput{Title: "Call back", LeadID: &blank})
	require.NoError(t, err)

	_, err = uc.Create(ctx, TaskInput{Title: "Call back", Priority: "urgent"})
	assert.True(t, HasCode(err, CodeValidation))
}

func TestTaskUseCase_ListOverdueUsesClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 9, 9, 0, 0, 0, time.UTC)
	repo := new(MockTaskRepository)
	uc := NewTaskUseCase(repo)
	uc.Now = fixedClock(now)
	repo.On("List", ctx, entity.TaskFilter{Overdue: true, Now: now}).Return([]*entity.Task{}, nil)

	_, err := uc.List(ctx, entity.TaskFilter{Overdue: true})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
