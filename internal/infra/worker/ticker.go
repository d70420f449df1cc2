package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// tickerJob runs fn once at start and then on every tick until ctx is done.
type tickerJob struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) (int, error)
	logger   *zap.Logger
}

func (j *tickerJob) run(ctx context.Context) {
	j.logger.Info("worker started", zap.String("worker", j.name), zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("worker stopped", zap.String("worker", j.name))
			return
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

func (j *tickerJob) tick(ctx context.Context) {
	n, err := j.fn(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		j.logger.Error("worker tick failed", zap.String("worker", j.name), zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Info("worker tick", zap.String("worker", j.name), zap.Int("processed", n))
	}
}
