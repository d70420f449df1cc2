package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestSummarizePipeline(t *testing.T) {
	stats := SummarizePipeline([]entity.StageSummary{
		{Stage: entity.DealStageClosedLost, Count: 1, Value: decimal.NewFromInt(500)},
		{Stage: entity.DealStageProposal, Count: 2, Value: decimal.RequireFromString("1500.50")},
		{Stage: entity.DealStageClosedWon, Count: 2, Value: decimal.NewFromInt(9000)},
		{Stage: entity.DealStageProspecting, Count: 4, Value: decimal.NewFromInt(100)},
	})

	require.Len(t, stats.Stages, len(entity.DealStages))
	for i, s := range stats.Stages {
		assert.Equal(t, entity.DealStages[i], s.Stage)
	}
	assert.Equal(t, 6, stats.OpenDeals)
	assert.Equal(t, "1600.50", stats.OpenPipelineValue.StringFixed(2))
	assert.Equal(t, 2, stats.WonDeals)
	assert.Equal(t, 1, stats.LostDeals)
	assert.Equal(t, "9000.00", stats.WonValue.StringFixed(2))
	assert.Equal(t, "66.67", stats.WinRate.StringFixed(2))
}

func TestSummarizePipeline_NothingClosed(t *testing.T) {
	stats := SummarizePipeline(nil)

	assert.True(t, stats.WinRate.IsZero())
	assert.Equal(t, 0, stats.OpenDeals)
	assert.Len(t, stats.Stages, len(entity.DealStages))
}

func mockDashboardRepo(now time.Time) *MockDashboardRepository {
	repo := new(MockDashboardRepository)
	repo.On("StageSummaries", mock.Anything).Return([]entity.StageSummary{
		{Stage: entity.DealStageClosedWon, Count: 1, Value: decimal.NewFromInt(10)},
	}, nil)
	repo.On("LeadsByStatus", mock.Anything).Return(map[string]int{"new": 3}, nil)
	repo.On("TaskCounts", mock.Anything, now).Return(5, 2, nil)
	repo.On("ActiveEnrollments", mock.Anything).Return(7, nil)
	repo.On("ActiveSessions", mock.Anything).Return(1, nil)
	return repo
}

func TestGetDashboardUseCase(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("cache hit skips the database", func(t *testing.T) {
		repo := new(MockDashboardRepository)
		cache := new(MockStatsCache)
		cached := &entity.DashboardStats{OpenDeals: 42}
		cache.On("GetStats", ctx).Return(cached, true, nil)
		uc := NewGetDashboardUseCase(repo, cache, zap.NewNop())

		stats, err := uc.Execute(ctx)

		require.NoError(t, err)
		assert.Same(t, cached, stats)
		repo.AssertNotCalled(t, "StageSummaries", mock.Anything)
	})

	t.Run("cache errors fall back to the database", func(t *testing.T) {
		repo := mockDashboardRepo(now)
		cache := new(MockStatsCache)
		cache.On("GetStats", ctx).Return(nil, false, errors.New("redis down"))
		cache.On("SetStats", ctx, mock.Anything).Return(errors.New("redis down"))
		uc := NewGetDashboardUseCase(repo, cache, zap.NewNop())
		uc.Now = fixedClock(now)

		stats, err := uc.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 5, stats.OpenTasks)
		assert.Equal(t, 2, stats.OverdueTasks)
		assert.Equal(t, 7, stats.ActiveEnrollments)
		assert.Equal(t, 1, stats.ActiveSessions)
		assert.Equal(t, 3, stats.LeadsByStatus["new"])
		assert.Equal(t, "100.00", stats.WinRate.StringFixed(2))
		assert.Equal(t, now, stats.GeneratedAt)
	})

	t.Run("works without a cache", func(t *testing.T) {
		uc := NewGetDashboardUseCase(mockDashboardRepo(now), nil, zap.NewNop())
		uc.Now = fixedClock(now)

		_, err := uc.Execute(ctx)

		require.NoError(t, err)
	})

	t.Run("any failed query fails the request", func(t *testing.T) {
		repo := new(MockDashboardRepository)
		repo.On("StageSummaries", mock.Anything).Return([]entity.StageSummary(nil), errors.New("boom"))
		repo.On("LeadsByStatus", mock.Anything).Return(map[string]int{}, nil)
		repo.On("TaskCounts", mock.Anything, mock.Anything).Return(0, 0, nil)
		repo.On("ActiveEnrollments", mock.Anything).Return(0, nil)
		repo.On("ActiveSessions", mock.Anything).Return(0, nil)
		uc := NewGetDashboardUseCase(repo, nil, zap.NewNop())

		_, err := uc.Execute(ctx)

		assert.True(t, IsTechnicalError(err))
	})
}
