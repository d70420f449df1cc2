package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type WaitingSessionExpirer interface {
	ExpireWaiting(ctx context.Context, maxAge time.Duration) (int, error)
}

// TurboSessionExpiry ends turbo sessions left waiting longer than maxAge.
type TurboSessionExpiry struct {
	job tickerJob
}

func NewTurboSessionExpiry(expirer WaitingSessionExpirer, maxAge, interval time.Duration, logger *zap.Logger) *TurboSessionExpiry {
	if interval <= 0 {
		interval = time.Minute
	}
	return &TurboSessionExpiry{
		job: tickerJob{
			name:     "turbo_session_expiry",
			interval: interval,
			fn: func(ctx context.Context) (int, error) {
				return expirer.ExpireWaiting(ctx, maxAge)
			},
			logger: logger,
		},
	}
}

func (e *TurboSessionExpiry) Start(ctx context.Context) {
	e.job.run(ctx)
}
