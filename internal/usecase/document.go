package usecase

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type UploadDocumentInput struct {
	Name        string    `json:"name" validate:"notblank,max=255"`
	ContentType string    `json:"content_type" validate:"notblank"`
	SizeBytes   int64     `json:"size_bytes" validate:"gt=0"`
	LeadID      *string   `json:"lead_id" validate:"omitempty,uuid"`
	DealID      *string   `json:"deal_id" validate:"omitempty,uuid"`
	UploadedBy  string    `json:"-"`
	Body        io.Reader `json:"-"`
}

type UploadURLOutput struct {
	Document  *entity.Document `json:"document"`
	UploadURL string           `json:"upload_url"`
}

type DocumentUseCase struct {
	Repo     entity.DocumentRepositoryInterface
	Storage  ObjectStorage
	Logger   *zap.Logger
	MaxBytes int64
	Now      func() time.Time
}

func NewDocumentUseCase(repo entity.DocumentRepositoryInterface, storage ObjectStorage, maxBytes int64, logger *zap.Logger) *DocumentUseCase {
	return &DocumentUseCase{
		Repo:     repo,
		Storage:  storage,
		Logger:   logger.Named("documents"),
		MaxBytes: maxBytes,
		Now:      time.Now,
	}
}

// Upload writes the object first and the row second; if the row insert fails
// the object is removed again.
func (uc *DocumentUseCase) Upload(ctx context.Context, in UploadDocumentInput) (*entity.Document, error) {
	doc, err := uc.newDocument(in)
	if err != nil {
		return nil, err
	}
	if in.Body == nil {
		return nil, invalidField("file", "is required")
	}

	// Objeto primeiro; se o INSERT falhar o objeto é removido
	tx := NewTransaction(uc.Logger)
	tx.AddOperation("upload object",
		func(ctx context.Context) error {
			return uc.Storage.Upload(ctx, doc.StorageKey, in.Body, doc.SizeBytes, doc.ContentType)
		},
		func(ctx context.Context) error { return uc.Storage.Delete(ctx, doc.StorageKey) },
	)
	tx.AddOperation("insert document",
		func(ctx context.Context) error { return uc.Repo.Create(ctx, doc) },
		nil,
	)

	if err := tx.Execute(ctx); err != nil {
		return nil, &TechnicalError{Code: CodeStorage, Message: "failed to upload document", Err: err}
	}

	uc.Logger.Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("key", doc.StorageKey),
		zap.Int64("size", doc.SizeBytes),
	)
	return doc, nil
}

// RequestUploadURL records the document and returns a presigned PUT the client
// uploads to directly.
func (uc *DocumentUseCase) RequestUploadURL(ctx context.Context, in UploadDocumentInput) (*UploadURLOutput, error) {
	doc, err := uc.newDocument(in)
	if err != nil {
		return nil, err
	}

	var url string
	tx := NewTransaction(uc.Logger)
	tx.AddOperation("insert document",
		func(ctx context.Context) error { return uc.Repo.Create(ctx, doc) },
		func(ctx context.Context) error { return uc.Repo.SoftDelete(ctx, doc.ID) },
	)
	tx.AddOperation("presign upload",
		func(ctx context.Context) error {
			var err error
			url, err = uc.Storage.PresignPut(ctx, doc.StorageKey, doc.ContentType)
			return err
		},
		nil,
	)

	if err := tx.Execute(ctx); err != nil {
		return nil, &TechnicalError{Code: CodeStorage, Message: "failed to prepare upload", Err: err}
	}
	return &UploadURLOutput{Document: doc, UploadURL: url}, nil
}

func (uc *DocumentUseCase) Get(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError("DOCUMENT", err)
	}
	return doc, nil
}

func (uc *DocumentUseCase) List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.Document, error) {
	docs, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, repoError("DOCUMENT", err)
	}
	return docs, nil
}

func (uc *DocumentUseCase) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return "", repoError("DOCUMENT", err)
	}
	url, err := uc.Storage.PresignGet(ctx, doc.StorageKey, doc.Name)
	if err != nil {
		return "", &TechnicalError{Code: CodeStorage, Message: "failed to presign download", Err: err}
	}
	return url, nil
}

// Delete hides the row; the stored object is removed best effort.
func (uc *DocumentUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		return repoError("DOCUMENT", err)
	}
	if err := uc.Repo.SoftDelete(ctx, id); err != nil {
		return repoError("DOCUMENT", err)
	}
	if err := uc.Storage.Delete(ctx, doc.StorageKey); err != nil {
		uc.Logger.Warn("failed to delete stored object",
			zap.String("document_id", id),
			zap.String("key", doc.StorageKey),
			zap.Error(err),
		)
	}
	return nil
}

func (uc *DocumentUseCase) newDocument(in UploadDocumentInput) (*entity.Document, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ContentType = strings.TrimSpace(in.ContentType)
	in.LeadID = blankToNil(in.LeadID)
	in.DealID = blankToNil(in.DealID)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if uc.MaxBytes > 0 && in.SizeBytes > uc.MaxBytes {
		return nil, invalidField("size_bytes", "exceeds the upload limit")
	}

	now := uc.Now()
	doc := &entity.Document{
		ID:          uuid.New().String(),
		Name:        in.Name,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		Kind:        entity.DocumentKindUpload,
		LeadID:      in.LeadID,
		DealID:      in.DealID,
		UploadedBy:  in.UploadedBy,
		CreatedAt:   now,
	}
	doc.StorageKey = storageKey("documents", doc.ID, doc.Name, now)
	return doc, nil
}
