package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	"github.com/KaramelBytes/coexnet/internal/parser"
	"github.com/KaramelBytes/coexnet/internal/store"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// FieldError names one invalid request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func newAPIError(status int, code, msg string, details any) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: msg, Details: details}
}

// toAPIError maps domain errors to HTTP statuses.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		return newAPIError(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", fields)
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return newAPIError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Upload exceeds the size limit", map[string]int64{"limit": tooLarge.Limit})
	}
	var sample *analysis.SampleError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return newAPIError(http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, analysis.ErrLayoutInvalid):
		return newAPIError(http.StatusBadRequest, "LAYOUT_INVALID", err.Error(), nil)
	case errors.As(err, &sample):
		return newAPIError(http.StatusUnprocessableEntity, "BAD_SAMPLE", err.Error(), map[string]string{
			"entity": sample.Entity,
			"column": sample.Column,
			"value":  sample.Value,
		})
	case errors.Is(err, analysis.ErrBadSample):
		return newAPIError(http.StatusUnprocessableEntity, "BAD_SAMPLE", err.Error(), nil)
	case errors.Is(err, parser.ErrUnsupported):
		return newAPIError(http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", err.Error(), nil)
	default:
		return newAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", nil)
	}
}
