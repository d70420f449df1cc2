package usecase

import (
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeBusinessRule = "BUSINESS_RULE"
	CodeNoRep        = "NO_REP_AVAILABLE"
	CodeDatabase     = "DATABASE_ERROR"
	CodeStorage      = "STORAGE_ERROR"
	CodeQueue        = "QUEUE_ERROR"
	CodeMail         = "MAIL_ERROR"
	CodeRender       = "RENDER_ERROR"
)

type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// HasCode reports whether err carries a domain error with the given code.
func HasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

func notFound(resource string) *DomainError {
	return &DomainError{Code: resource + "_NOT_FOUND", Message: resource + " not found"}
}

func conflict(msg string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: msg}
}

func businessRule(msg string) *DomainError {
	return &DomainError{Code: CodeBusinessRule, Message: msg}
}

func invalid(errs []ValidationError) *DomainError {
	return &DomainError{Code: CodeValidation, Message: "invalid input", Fields: errs}
}

func invalidField(field, msg string) *DomainError {
	return invalid([]ValidationError{{Field: field, Message: msg}})
}

// repoError translates repository sentinels into domain errors and wraps anything
// else as a database failure.
func repoError(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entity.ErrNotFound):
		return notFound(resource)
	case errors.Is(err, entity.ErrConflict):
		return conflict(resource + " already exists")
	case IsDomainError(err) || IsTechnicalError(err):
		return err
	default:
		return &TechnicalError{Code: CodeDatabase, Message: "failed to access " + resourceLabel(resource), Err: err}
	}
}

func resourceLabel(resource string) string {
	switch resource {
	case "LEAD":
		return "leads"
	case "DEAL":
		return "deals"
	case "TASK":
		return "tasks"
	case "TEMPLATE":
		return "email templates"
	case "FUNNEL":
		return "email funnels"
	case "PHASE":
		return "funnel phases"
	case "ENROLLMENT":
		return "enrollments"
	case "DOCUMENT":
		return "documents"
	case "SESSION":
		return "turbo sessions"
	case "INVOICE":
		return "invoices"
	}
	return "database"
}
