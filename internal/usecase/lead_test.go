package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestLeadUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes and stores", func(t *testing.T) {
		repo := new(MockLeadRepository)
		uc := NewLeadUseCase(repo, zap.NewNop())
		repo.On("Create", ctx, mock.MatchedBy(func(l *entity.Lead) bool {
			return l.Email == "ana@example.com" && l.FirstName == "Ana" && l.Status == entity.LeadStatusNew
		})).Return(nil)

		lead, err := uc.Create(ctx, LeadInput{FirstName: "  Ana ", Email: " ANA@Example.com "})

		require.NoError(t, err)
		assert.NotEmpty(t, lead.ID)
		repo.AssertExpectations(t)
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		uc := NewLeadUseCase(new(MockLeadRepository), zap.NewNop())

		_, err := uc.Create(ctx, LeadInput{FirstName: "   ", Email: "not-an-email", Status: "hot"})

		var de *DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, CodeValidation, de.Code)
		fields := map[string]string{}
		for _, f := range de.Fields {
			fields[f.Field] = f.Message
		}
		assert.Equal(t, "is required", fields["first_name"])
		assert.Equal(t, "is invalid", fields["email"])
		assert.Contains(t, fields["status"], "must be one of")
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		repo := new(MockLeadRepository)
		uc := NewLeadUseCase(repo, zap.NewNop())
		repo.On("Create", ctx, mock.Anything).Return(entity.ErrConflict)

		_, err := uc.Create(ctx, LeadInput{FirstName: "Ana", Email: "ana@example.com"})

		assert.True(t, HasCode(err, CodeConflict))
	})
}

func TestLeadUseCase_Capture(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	uc := NewLeadUseCase(repo, zap.NewNop())

	repo.On("Upsert", ctx, mock.MatchedBy(func(l *entity.Lead) bool {
		// public submissions cannot pick status or owner
		return l.Source == "website" && l.Status == entity.LeadStatusNew && l.OwnerID == ""
	})).Return(nil)

	_, err := uc.Capture(ctx, LeadInput{
		FirstName: "Ana",
		Email:     "ana@example.com",
		Status:    entity.LeadStatusConverted,
		OwnerID:   "someone",
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLeadUseCase_Errors(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	uc := NewLeadUseCase(repo, zap.NewNop())

	repo.On("FindByID", ctx, "missing").Return(nil, entity.ErrNotFound)
	repo.On("SoftDelete", ctx, "broken").Return(errors.New("connection refused"))

	_, err := uc.Get(ctx, "missing")
	assert.True(t, HasCode(err, "LEAD_NOT_FOUND"))

	err = uc.Delete(ctx, "broken")
	var te *TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeDatabase, te.Code)

	err = uc.UpdateStatus(ctx, "id", "archived")
	assert.True(t, HasCode(err, CodeValidation))
}
