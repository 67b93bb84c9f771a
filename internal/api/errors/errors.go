package errors

import (
	"fmt"
	"net/http"

	apperrors "whisper-web/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
	KindTooLarge           ErrorKind = "too_large"
	KindUnprocessable      ErrorKind = "unprocessable"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	// Code is the job failure kind (staging, model_unavailable, ...) when the
	// error came from the transcription pipeline.
	Code string `json:"code,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Kind:    KindConflict,
		Message: message,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewTooLargeError creates a payload too large error
func NewTooLargeError(limitBytes int64) *APIError {
	return &APIError{
		Kind:    KindTooLarge,
		Message: fmt.Sprintf("upload exceeds the %s limit", formatLimit(limitBytes)),
	}
}

func formatLimit(limitBytes int64) string {
	if limitBytes < 1<<20 {
		return fmt.Sprintf("%d-byte", limitBytes)
	}
	return fmt.Sprintf("%d MB", limitBytes>>20)
}

// FromJobError maps a pipeline failure to an API error. The message is the
// user-facing text for the failure kind; Code carries the kind itself.
func FromJobError(err *apperrors.JobError) *APIError {
	apiErr := &APIError{
		Message: err.UserMessage(),
		Code:    string(err.Kind),
	}

	switch err.Kind {
	case apperrors.KindInvalidInput:
		apiErr.Kind = KindUnprocessable
		apiErr.Message = err.Message
	case apperrors.KindTranscription:
		apiErr.Kind = KindUnprocessable
	case apperrors.KindModelUnavailable:
		apiErr.Kind = KindServiceUnavailable
	case apperrors.KindConflict:
		apiErr.Kind = KindConflict
		apiErr.Message = err.Message
	case apperrors.KindNotFound:
		apiErr.Kind = KindNotFound
		apiErr.Message = err.Message
	default:
		apiErr.Kind = KindInternal
	}

	return apiErr
}
