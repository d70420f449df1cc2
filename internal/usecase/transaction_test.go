package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTransaction_RollsBackInReverse(t *testing.T) {
	var trail []string
	record := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			trail = append(trail, name)
			return err
		}
	}

	tx := NewTransaction(zap.NewNop())
	tx.AddOperation("first", record("do first", nil), record("undo first", nil))
	tx.AddOperation("second", record("do second", nil), nil)
	tx.AddOperation("third", record("do third", nil), record("undo third", errors.New("ignored")))
	tx.AddOperation("fourth", record("do fourth", errors.New("boom")), record("undo fourth", nil))

	err := tx.Execute(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation 'fourth' failed")
	assert.Equal(t, []string{
		"do first", "do second", "do third", "do fourth",
		"undo third", "undo first",
	}, trail)
}

func TestTransaction_CompensatesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var compensationCtxErr error

	tx := NewTransaction(nil)
	tx.AddOperation("upload",
		func(context.Context) error { return nil },
		func(ctx context.Context) error {
			compensationCtxErr = ctx.Err()
			return nil
		},
	)
	tx.AddOperation("insert", func(context.Context) error {
		cancel()
		return context.Canceled
	}, nil)

	err := tx.Execute(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, compensationCtxErr)
}

func TestTransaction_Success(t *testing.T) {
	calls := 0
	tx := NewTransaction(zap.NewNop())
	tx.AddOperation("only", func(context.Context) error { calls++; return nil }, func(context.Context) error {
		t.Fatal("compensation must not run")
		return nil
	})

	require.NoError(t, tx.Execute(context.Background()))
	assert.Equal(t, 1, calls)
}
