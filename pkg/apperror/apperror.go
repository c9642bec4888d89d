package apperror

import (
	"fmt"
	"net/http"
)

// ServiceError is the single structured error type raised anywhere during
// request handling and rendered exactly once at the HTTP boundary.
type ServiceError struct {
	Code    int
	Title   string
	Message string
	Debug   error
	Headers map[string]string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Title, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Debug
}

// New creates a ServiceError with the given HTTP status, title and
// user-facing message.
func New(code int, title, message string) *ServiceError {
	return &ServiceError{Code: code, Title: title, Message: message}
}

// WithDebug returns a copy carrying a debug detail. Canned errors are shared
// across requests, so the receiver is never mutated.
func (e *ServiceError) WithDebug(err error) *ServiceError {
	clone := *e
	clone.Debug = err
	return &clone
}

// WithHeaders returns a copy carrying extra response headers.
func (e *ServiceError) WithHeaders(headers map[string]string) *ServiceError {
	clone := *e
	clone.Headers = headers
	return &clone
}

// Payload is the wire representation of a ServiceError.
type Payload struct {
	StatusCode int    `json:"status_code"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Debug      string `json:"debug,omitempty"`
}

// Response renders the wire payload. The debug detail is exposed only when
// the process runs in debug mode and a detail was attached.
func (e *ServiceError) Response(debug bool) Payload {
	p := Payload{
		StatusCode: e.Code,
		Title:      e.Title,
		Message:    e.Message,
	}
	if debug && e.Debug != nil {
		p.Debug = e.Debug.Error()
	}
	return p
}

// Unauthorized is raised for missing or invalid bearer credentials.
func Unauthorized(message string) *ServiceError {
	return New(http.StatusUnauthorized, "Invalid token", message)
}

// TokenExpired is raised when a token's expiry timestamp is in the past.
func TokenExpired() *ServiceError {
	return New(http.StatusUnauthorized, "Token expired", "Token has expired")
}

// InvalidTokenType is raised when a token decodes cleanly but carries the
// wrong kind discriminant.
func InvalidTokenType(expected, received string) *ServiceError {
	return New(
		http.StatusUnauthorized,
		"Invalid token type",
		fmt.Sprintf("Expected token type '%s', but received '%s'", expected, received),
	)
}

// NotFound is the canned 404 returned when a requested entity is absent.
func NotFound() *ServiceError {
	return New(http.StatusNotFound, "Item not found", "not_found")
}

// Internal wraps an unexpected failure. The detail stays server-side unless
// debug mode is active.
func Internal(debug error) *ServiceError {
	return New(http.StatusInternalServerError, "Unknown error", "Internal server error").WithDebug(debug)
}
