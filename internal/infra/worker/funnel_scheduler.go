package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type DueEnrollmentDispatcher interface {
	Execute(ctx context.Context) (int, error)
}

// FunnelScheduler periodically claims due enrollments and queues their next phase.
type FunnelScheduler struct {
	job tickerJob
}

func NewFunnelScheduler(dispatcher DueEnrollmentDispatcher, interval time.Duration, logger *zap.Logger) *FunnelScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &FunnelScheduler{
		job: tickerJob{
			name:     "funnel_scheduler",
			interval: interval,
			fn:       dispatcher.Execute,
			logger:   logger,
		},
	}
}

// Start blocks until ctx is cancelled.
func (s *FunnelScheduler) Start(ctx context.Context) {
	s.job.run(ctx)
}
