package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type DocumentService interface {
	Upload(ctx context.Context, in usecase.UploadDocumentInput) (*entity.Document, error)
	RequestUploadURL(ctx context.Context, in usecase.UploadDocumentInput) (*usecase.UploadURLOutput, error)
	Get(ctx context.Context, id string) (*entity.Document, error)
	List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.Document, error)
	DownloadURL(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

type DocumentHandler struct {
	Documents      DocumentService
	MaxUploadBytes int64
	Logger         *zap.Logger
}

func NewDocumentHandler(documents DocumentService, maxUploadBytes int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{Documents: documents, MaxUploadBytes: maxUploadBytes, Logger: logger}
}

func (h *DocumentHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Upload)
	r.Post("/upload-url", h.RequestUploadURL)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/download", h.Download)
	r.Delete("/{id}", h.Delete)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Documents.List(r.Context(), entity.DocumentFilter{
		LeadID: queryString(r, "lead_id"),
		DealID: queryString(r, "deal_id"),
		Kind:   queryString(r, "kind"),
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Upload takes a multipart form with a "file" part and optional lead_id and
// deal_id fields.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeErrorResponse(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "upload exceeds the size limit")
			return
		}
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_FORM", "expected multipart/form-data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.Documents.Upload(r.Context(), usecase.UploadDocumentInput{
		Name:        header.Filename,
		ContentType: contentType,
		SizeBytes:   header.Size,
		LeadID:      formRef(r, "lead_id"),
		DealID:      formRef(r, "deal_id"),
		UploadedBy:  middleware.UserID(r.Context()),
		Body:        file,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) RequestUploadURL(w http.ResponseWriter, r *http.Request) {
	var in usecase.UploadDocumentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.UploadedBy = middleware.UserID(r.Context())

	out, err := h.Documents.RequestUploadURL(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Documents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Download returns the presigned link, or redirects to it with ?redirect=1.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	url, err := h.Documents.DownloadURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if redirect := queryBool(r, "redirect"); redirect != nil && *redirect {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Documents.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func formRef(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return nil
	}
	return &v
}
