// Package apperr provides unified error handling for the jobhunt service.
// It implements structured error types with error codes, pipeline stage
// tagging, HTTP status mapping, and retryable detection.
package apperr

import (
	"fmt"
	"net/http"
)

// Error is the unified application error type.
type Error struct {
	// Code is a machine-readable error code.
	Code Code `json:"code"`
	// Stage is the pipeline stage the error occurred in, if any.
	Stage Stage `json:"stage,omitempty"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if resubmitting the recording can succeed.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with automatic retryable detection.
func New(code Code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Constructors ---

// Configuration creates an error for missing or invalid configuration.
func Configuration(message string) *Error {
	return &Error{
		Code: CodeConfiguration, Message: message,
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
	}
}

// MissingEnv creates a configuration error naming an absent environment variable.
func MissingEnv(name string) *Error {
	return &Error{
		Code: CodeConfiguration, Message: fmt.Sprintf("Missing required environment variable: %s", name),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"variable": name},
	}
}

// Transcription creates an error for the transcribing stage.
func Transcription(reason string, cause error) *Error {
	return &Error{
		Code: CodeTranscription, Stage: StageTranscribing,
		Message:    fmt.Sprintf("Transcription failed: %s", reason),
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
	}
}

// EmptyTranscript creates the error for an empty or whitespace-only transcript.
// Silence carries no job-application content, so it is a failure, not a result.
func EmptyTranscript() *Error {
	return &Error{
		Code: CodeTranscription, Stage: StageTranscribing,
		Message:    "Transcription failed: transcript is empty",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
	}
}

// Extraction creates an error for the extracting stage.
func Extraction(reason string, cause error) *Error {
	return &Error{
		Code: CodeExtraction, Stage: StageExtracting,
		Message:    fmt.Sprintf("Extraction failed: %s", reason),
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
	}
}

// Sheet creates an error for the appending stage.
func Sheet(reason string, cause error) *Error {
	return &Error{
		Code: CodeSheet, Stage: StageAppending,
		Message:    fmt.Sprintf("Appending failed: %s", reason),
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
	}
}

// SheetConfiguration creates a configuration-coded error for the appending
// stage. Credential bundle problems are configuration faults, not upstream
// runtime faults, and must be distinguishable as such.
func SheetConfiguration(reason string, cause error) *Error {
	return &Error{
		Code: CodeConfiguration, Stage: StageAppending,
		Message:    fmt.Sprintf("Appending failed: %s", reason),
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// Validation creates an error for a rejected upload request.
func Validation(message string) *Error {
	return &Error{
		Code: CodeValidation, Stage: StageReceived, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates an error for a missing required request field.
func MissingField(field string) *Error {
	return &Error{
		Code: CodeValidation, Stage: StageReceived,
		Message:    fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// FileTooLarge creates an error for an upload exceeding the size limit.
func FileTooLarge(limit string) *Error {
	return &Error{
		Code: CodeValidation, Stage: StageReceived,
		Message:    fmt.Sprintf("File too large. Maximum size is %s.", limit),
		HTTPStatus: http.StatusRequestEntityTooLarge, Retryable: false,
		Details: map[string]any{"max_size": limit},
	}
}

// InvalidFormat creates an error for an unsupported upload format.
func InvalidFormat(field, expected string) *Error {
	return &Error{
		Code: CodeValidation, Stage: StageReceived,
		Message:    fmt.Sprintf("Invalid format for %s. Expected: %s", field, expected),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field, "expected_format": expected},
	}
}

// Internal creates an error for an unexpected internal failure.
func Internal(cause error) *Error {
	return &Error{
		Code: CodeInternal, Message: "An unexpected error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
