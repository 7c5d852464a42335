package apperr

import (
	stderrors "errors"
)

// Response is the JSON structure returned to clients.
type Response struct {
	Error Body `json:"error"`
}

// Body contains the error details sent to clients. The stage tells the
// browser whether to re-record, check connectivity, or check configuration.
type Body struct {
	Code      Code                   `json:"code"`
	Stage     Stage                  `json:"stage,omitempty"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// ToResponse converts an Error to a Response for JSON serialization.
// The Cause is never serialized; upstream credentials and internal detail
// stay out of client responses.
func (e *Error) ToResponse() Response {
	return Response{
		Error: Body{
			Code:      e.Code,
			Stage:     e.Stage,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// Is checks if an error is an *Error.
func Is(err error) bool {
	var appErr *Error
	return stderrors.As(err, &appErr)
}

// As converts an error to an *Error if possible.
func As(err error) (*Error, bool) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
