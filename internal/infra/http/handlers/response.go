package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const maxJSONBody = 1 << 20

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeError maps use case errors onto HTTP statuses. Technical errors are
// logged and their cause is not exposed.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeJSON(w, domainStatus(de.Code), ErrorResponse{Error: de.Code, Message: de.Message, Fields: de.Fields})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		logger.Error("request failed", zap.String("code", te.Code), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, te.Code, te.Message)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func domainStatus(code string) int {
	switch {
	case code == usecase.CodeValidation:
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case code == usecase.CodeConflict || code == usecase.CodeNoRep:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			msg = "request body too large"
		case errors.Is(err, io.EOF):
			msg = "request body is empty"
		}
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", msg)
		return false
	}
	return true
}

// pagination reads limit and offset, clamping limit to [1, 200].
func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func queryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryString(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

type activeRequest struct {
	Active *bool `json:"active"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type stageRequest struct {
	Stage string `json:"stage"`
}
