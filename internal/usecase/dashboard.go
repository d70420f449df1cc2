package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type GetDashboardUseCase struct {
	Repo   entity.DashboardRepositoryInterface
	Cache  StatsCache
	Logger *zap.Logger
	Now    func() time.Time
}

func NewGetDashboardUseCase(repo entity.DashboardRepositoryInterface, cache StatsCache, logger *zap.Logger) *GetDashboardUseCase {
	return &GetDashboardUseCase{Repo: repo, Cache: cache, Logger: logger.Named("dashboard"), Now: time.Now}
}

// Execute serves cached stats when present. Cache errors are logged and the
// stats are computed from the database instead.
func (uc *GetDashboardUseCase) Execute(ctx context.Context) (*entity.DashboardStats, error) {
	if uc.Cache != nil {
		stats, ok, err := uc.Cache.GetStats(ctx)
		if err != nil {
			uc.Logger.Warn("dashboard cache read failed", zap.Error(err))
		} else if ok {
			return stats, nil
		}
	}

	stats, err := uc.compute(ctx)
	if err != nil {
		return nil, err
	}

	if uc.Cache != nil {
		if err := uc.Cache.SetStats(ctx, stats); err != nil {
			uc.Logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (uc *GetDashboardUseCase) compute(ctx context.Context) (*entity.DashboardStats, error) {
	now := uc.Now()

	var (
		stages      []entity.StageSummary
		leads       map[string]int
		open        int
		overdue     int
		enrollments int
		sessions    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stages, err = uc.Repo.StageSummaries(gctx)
		return err
	})
	g.Go(func() (err error) {
		leads, err = uc.Repo.LeadsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		open, overdue, err = uc.Repo.TaskCounts(gctx, now)
		return err
	})
	g.Go(func() (err error) {
		enrollments, err = uc.Repo.ActiveEnrollments(gctx)
		return err
	})
	g.Go(func() (err error) {
		sessions, err = uc.Repo.ActiveSessions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, repoError("DASHBOARD", err)
	}

	stats := SummarizePipeline(stages)
	stats.LeadsByStatus = leads
	stats.OpenTasks = open
	stats.OverdueTasks = overdue
	stats.ActiveEnrollments = enrollments
	stats.ActiveSessions = sessions
	stats.GeneratedAt = now
	return stats, nil
}

// SummarizePipeline orders stages as the pipeline does, fills missing stages
// with zeros and derives open, won and lost totals. Win rate is
// won / (won + lost) * 100, or 0 when nothing has closed.
func SummarizePipeline(summaries []entity.StageSummary) *entity.DashboardStats {
	byStage := make(map[string]entity.StageSummary, len(summaries))
	for _, s := range summaries {
		byStage[s.Stage] = s
	}

	stats := &entity.DashboardStats{
		OpenPipelineValue: decimal.Zero,
		WonValue:          decimal.Zero,
		WinRate:           decimal.Zero,
		Stages:            make([]entity.StageSummary, 0, len(entity.DealStages)),
	}
	for _, stage := range entity.DealStages {
		s, ok := byStage[stage]
		if !ok {
			s = entity.StageSummary{Stage: stage, Value: decimal.Zero}
		}
		stats.Stages = append(stats.Stages, s)

		switch stage {
		case entity.DealStageClosedWon:
			stats.WonDeals = s.Count
			stats.WonValue = s.Value
		case entity.DealStageClosedLost:
			stats.LostDeals = s.Count
		default:
			stats.OpenDeals += s.Count
			stats.OpenPipelineValue = stats.OpenPipelineValue.Add(s.Value)
		}
	}

	if closed := stats.WonDeals + stats.LostDeals; closed > 0 {
		stats.WinRate = decimal.NewFromInt(int64(stats.WonDeals)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(closed))).
			Round(2)
	}
	return stats
}
