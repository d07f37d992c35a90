package api

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/recipe-server/internal/errors"
	"github.com/listenupapp/recipe-server/internal/store"
)

// APIError implements huma.StatusError with the domain error shape.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Per-field messages for validation errors"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to render domain errors. Internal
// failures are logged to logger and reported with a generic message.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		apiErr := newAPIError(status, message, errs...)
		if apiErr.GetStatus() >= http.StatusInternalServerError {
			logger.Error("request failed", "status", status, "message", message, "error", errors.Join(errs...))
		}
		return apiErr
	}
}

func newAPIError(status int, message string, errs ...error) huma.StatusError {
	for _, err := range errs {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			if domainErr.Code == domainerrors.CodeInternal {
				return internalError()
			}
			return &APIError{
				status:  domainErr.HTTPStatus(),
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}
		}

		var storeErr *store.Error
		if errors.As(err, &storeErr) {
			return &APIError{
				status:  storeErr.HTTPCode(),
				Code:    string(domainerrors.CodeForStatus(storeErr.HTTPCode())),
				Message: storeErr.Message,
			}
		}
	}

	switch {
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return requestValidationError(message, errs)
	case status >= http.StatusInternalServerError:
		return internalError()
	}

	return &APIError{
		status:  status,
		Code:    string(domainerrors.CodeForStatus(status)),
		Message: message,
	}
}

// requestValidationError turns huma's schema failures into a 400 with
// per-field details. A malformed path id means the resource cannot exist,
// so it is a 404.
func requestValidationError(message string, errs []error) huma.StatusError {
	details := domainerrors.FieldErrors{}
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if !errors.As(err, &detail) {
			continue
		}
		if strings.HasPrefix(detail.Location, "path.") {
			return &APIError{
				status:  http.StatusNotFound,
				Code:    string(domainerrors.CodeNotFound),
				Message: "not found",
			}
		}
		details.Add(detailField(detail), detail.Message)
	}

	if message == "" || strings.HasPrefix(message, "validation failed") {
		message = "validation failed"
	}
	apiErr := &APIError{
		status:  http.StatusBadRequest,
		Code:    string(domainerrors.CodeValidation),
		Message: message,
	}
	if len(details) > 0 {
		apiErr.Details = details
	}
	return apiErr
}

var missingPropertyRe = regexp.MustCompile(`^expected required property (\S+) to be present`)

// detailField names the field a schema error belongs to. A missing required
// property is reported at its parent object, so the property name is
// appended to the location.
func detailField(detail *huma.ErrorDetail) string {
	m := missingPropertyRe.FindStringSubmatch(detail.Message)
	if m == nil {
		return fieldName(detail.Location)
	}
	if detail.Location == "body" || detail.Location == "" {
		return m[1]
	}
	return fieldName(detail.Location + "." + m[1])
}

// fieldName maps a huma location ("body.tags[0].name", "query.tags") to
// the client-facing field name.
func fieldName(location string) string {
	for _, prefix := range []string{"body.", "query.", "header."} {
		if rest, ok := strings.CutPrefix(location, prefix); ok {
			return rest
		}
	}
	if location == "body" || location == "" {
		return "non_field_errors"
	}
	return location
}

func internalError() *APIError {
	return &APIError{
		status:  http.StatusInternalServerError,
		Code:    string(domainerrors.CodeInternal),
		Message: "internal server error",
	}
}
