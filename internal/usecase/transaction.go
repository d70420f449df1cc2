package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Transaction runs steps in order and, when one fails, runs the compensations of
// the steps that already succeeded in reverse order.
type Transaction struct {
	steps  []step
	logger *zap.Logger
}

type step struct {
	name       string
	fn         func(context.Context) error
	compensate func(context.Context) error
}

func NewTransaction(logger *zap.Logger) *Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transaction{logger: logger}
}

// AddOperation registers a step. compensate may be nil.
func (t *Transaction) AddOperation(name string, fn, compensate func(context.Context) error) {
	t.steps = append(t.steps, step{name: name, fn: fn, compensate: compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, s := range t.steps {
		if err := s.fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", s.name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) {
	// compensations must run even when the request context is already cancelled
	ctx = context.WithoutCancel(ctx)
	for i := failedAt - 1; i >= 0; i-- {
		s := t.steps[i]
		if s.compensate == nil {
			continue
		}
		if err := s.compensate(ctx); err != nil {
			t.logger.Error("compensation failed",
				zap.String("operation", s.name),
				zap.Error(err),
			)
		}
	}
}
