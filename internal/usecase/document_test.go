package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func newDocumentFixture() (*DocumentUseCase, *MockDocumentRepository, *MockStorage) {
	repo := new(MockDocumentRepository)
	storage := new(MockStorage)
	uc := NewDocumentUseCase(repo, storage, 1024, zap.NewNop())
	uc.Now = fixedClock(time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC))
	return uc, repo, storage
}

func TestDocumentUseCase_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores object then row", func(t *testing.T) {
		uc, repo, storage := newDocumentFixture()
		storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "documents/2026/06/") && strings.HasSuffix(key, "/contract_v2.pdf")
		}), mock.Anything, int64(5), "application/pdf").Return(nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		doc, err := uc.Upload(ctx, UploadDocumentInput{
			Name:        "contract v2.pdf",
			ContentType: "application/pdf",
			SizeBytes:   5,
			Body:        strings.NewReader("hello"),
		})

		require.NoError(t, err)
		assert.Equal(t, entity.DocumentKindUpload, doc.Kind)
		storage.AssertExpectations(t)
	})

	t.Run("row failure removes the object", func(t *testing.T) {
		uc, repo, storage := newDocumentFixture()
		storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		storage.On("Delete", mock.Anything, mock.Anything).Return(nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

		_, err := uc.Upload(ctx, UploadDocumentInput{
			Name:        "a.txt",
			ContentType: "text/plain",
			SizeBytes:   1,
			Body:        strings.NewReader("x"),
		})

		assert.True(t, IsTechnicalError(err))
		storage.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("oversized file is rejected", func(t *testing.T) {
		uc, _, storage := newDocumentFixture()

		_, err := uc.Upload(ctx, UploadDocumentInput{
			Name:        "big.bin",
			ContentType: "application/octet-stream",
			SizeBytes:   4096,
			Body:        strings.NewReader("x"),
		})

		assert.True(t, HasCode(err, CodeValidation))
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDocumentUseCase_RequestUploadURL(t *testing.T) {
	ctx := context.Background()
	uc, repo, storage := newDocumentFixture()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("SoftDelete", mock.Anything, mock.Anything).Return(nil)
	storage.On("PresignPut", mock.Anything, mock.Anything, "image/png").Return("", errors.New("no credentials"))

	_, err := uc.RequestUploadURL(ctx, UploadDocumentInput{Name: "logo.png", ContentType: "image/png", SizeBytes: 10})

	require.Error(t, err)
	repo.AssertCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}

func TestDocumentUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	uc, repo, storage := newDocumentFixture()
	repo.On("FindByID", ctx, "d1").Return(&entity.Document{ID: "d1", StorageKey: "documents/k"}, nil)
	repo.On("SoftDelete", ctx, "d1").Return(nil)
	storage.On("Delete", ctx, "documents/k").Return(errors.New("bucket gone"))

	// object removal is best effort
	assert.NoError(t, uc.Delete(ctx, "d1"))
}
