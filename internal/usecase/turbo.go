package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// TurboUseCase pools reps for turbo dialing. A rep is bound to at most one
// session, and releasing an already free rep is a no-op.
type TurboUseCase struct {
	Repo   entity.TurboRepositoryInterface
	Logger *zap.Logger
	Now    func() time.Time
}

func NewTurboUseCase(repo entity.TurboRepositoryInterface, logger *zap.Logger) *TurboUseCase {
	return &TurboUseCase{Repo: repo, Logger: logger.Named("turbo"), Now: time.Now}
}

func (uc *TurboUseCase) JoinPool(ctx context.Context, repID string) error {
	repID = strings.TrimSpace(repID)
	if repID == "" {
		return invalidField("rep_id", "is required")
	}
	if err := uc.Repo.JoinPool(ctx, repID); err != nil {
		return repoError("REP", err)
	}
	uc.Logger.Info("rep joined pool", zap.String("rep_id", repID))
	return nil
}

func (uc *TurboUseCase) LeavePool(ctx context.Context, repID string) error {
	if err := uc.Repo.LeavePool(ctx, strings.TrimSpace(repID)); err != nil {
		return repoError("REP", err)
	}
	uc.Logger.Info("rep left pool", zap.String("rep_id", repID))
	return nil
}

func (uc *TurboUseCase) ListPool(ctx context.Context) ([]*entity.PooledRep, error) {
	reps, err := uc.Repo.ListPool(ctx)
	if err != nil {
		return nil, repoError("REP", err)
	}
	return reps, nil
}

func (uc *TurboUseCase) StartSession(ctx context.Context) (*entity.TurboSession, error) {
	now := uc.Now()
	session := &entity.TurboSession{
		ID:        uuid.New().String(),
		Status:    entity.TurboSessionWaiting,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Repo.StartSession(ctx, session); err != nil {
		if errors.Is(err, entity.ErrNoRepAvailable) {
			return nil, &DomainError{Code: CodeNoRep, Message: "no representative available"}
		}
		return nil, repoError("SESSION", err)
	}

	uc.Logger.Info("turbo session started", zap.String("session_id", session.ID), zap.String("rep_id", session.RepID))
	return session, nil
}

func (uc *TurboUseCase) GetSession(ctx context.Context, id string) (*entity.TurboSession, error) {
	session, err := uc.Repo.FindSession(ctx, id)
	if err != nil {
		return nil, repoError("SESSION", err)
	}
	return session, nil
}

// EndSession ends the session, clears its conference and frees the rep.
func (uc *TurboUseCase) EndSession(ctx context.Context, id string) (*entity.TurboSession, error) {
	now := uc.Now()
	if err := uc.Repo.EndSession(ctx, id, now); err != nil {
		return nil, repoError("SESSION", err)
	}
	if _, err := uc.ReleaseRep(ctx, id); err != nil {
		return nil, err
	}
	return uc.GetSession(ctx, id)
}

func (uc *TurboUseCase) ReleaseRep(ctx context.Context, sessionID string) (bool, error) {
	released, err := uc.Repo.ReleaseRep(ctx, sessionID)
	if err != nil {
		return false, repoError("REP", err)
	}
	if released {
		uc.Logger.Info("rep released", zap.String("session_id", sessionID))
	}
	return released, nil
}

// ExpireWaiting ends sessions still waiting for a conference after maxAge.
func (uc *TurboUseCase) ExpireWaiting(ctx context.Context, maxAge time.Duration) (int, error) {
	ids, err := uc.Repo.ExpireWaiting(ctx, uc.Now().Add(-maxAge))
	if err != nil {
		return 0, repoError("SESSION", err)
	}
	if len(ids) > 0 {
		uc.Logger.Info("expired waiting turbo sessions", zap.Int("count", len(ids)), zap.Strings("session_ids", ids))
	}
	return len(ids), nil
}
