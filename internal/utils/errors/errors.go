package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeClientInput = "CLIENT_INPUT"
	CodeUpstream    = "UPSTREAM_ERROR"
	CodeTimeout     = "TIMEOUT"
	CodeInternal    = "INTERNAL_ERROR"
)

// Sentinel errors matched by errors.Is against any AppError of the same kind.
var (
	ErrClientInput = errors.New("client input error")
	ErrUpstream    = errors.New("upstream error")
	ErrTimeout     = errors.New("timeout")
	ErrInternal    = errors.New("internal error")
)

var sentinels = map[string]error{
	CodeClientInput: ErrClientInput,
	CodeUpstream:    ErrUpstream,
	CodeTimeout:     ErrTimeout,
	CodeInternal:    ErrInternal,
}

// AppError represents an application error with HTTP status and error code.
// Message is what the client sees; Err and Details are for logs.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"-"`
	Err        error          `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error's code or kind.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code == t.Code
	}
	s, ok := sentinels[e.Code]
	return ok && s == target
}

// ErrorResponse is the JSON error envelope returned to clients.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ToResponse converts an AppError to ErrorResponse.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Detail: e.Message}
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error.
func NewAppError(code string, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// ClientInput creates an error for a request the gateway refuses to forward.
func ClientInput(message string) *AppError {
	return &AppError{
		Code:       CodeClientInput,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// Upstream creates an error for a failed vendor call. The message is passed
// to the client as is.
func Upstream(message string, err error) *AppError {
	return &AppError{
		Code:       CodeUpstream,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// Timeout creates a timeout error.
func Timeout(message string) *AppError {
	if message == "" {
		message = "request timeout"
	}
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
	}
}

// Internal creates an internal error.
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// GetStatusCode returns the appropriate HTTP status code for an error.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrClientInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for err.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// IsTimeout checks if the error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
