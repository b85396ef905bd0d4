package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
)

// Code is a stable numeric error identifier.
//
// Codes in [1000, 2000) are global and shared by every service; all other
// codes belong to a single service.
type Code int

// Global error codes.
const (
	// CodeInternal represents an unexpected server-side failure
	CodeInternal Code = 1000
	// CodeBadRequest represents a malformed or conflicting request
	CodeBadRequest Code = 1001
	// CodeNotFound represents a missing resource
	CodeNotFound Code = 1002
	// CodeUnauthorized represents missing or invalid credentials
	CodeUnauthorized Code = 1003
	// CodeValidation represents input that failed validation
	CodeValidation Code = 1004
	// CodeDatabase represents a storage failure
	CodeDatabase Code = 1005
)

const (
	globalCodeMin Code = 1000
	globalCodeMax Code = 2000
)

// DefaultStatus is the transport status used when none is given.
const DefaultStatus = http.StatusBadRequest

// IsGlobal reports whether c lies in the global range [1000, 2000).
func (c Code) IsGlobal() bool {
	return c >= globalCodeMin && c < globalCodeMax
}

// String returns the decimal form of the code, which is also its catalog key.
func (c Code) String() string {
	return strconv.Itoa(int(c))
}

// AppError is an immutable domain error carrying a code, a user-facing
// message and a transport status.
//
// Construct it through a Registry (or the package-level helpers that use the
// default registry); the zero value is not meaningful.
type AppError struct {
	code    Code
	message string
	status  int
	cause   error
}

// Payload is the response body for a failed request. The transport status is
// sent out-of-band and never appears here.
type Payload struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Code returns the error code.
func (e *AppError) Code() Code { return e.code }

// Message returns the user-facing message.
func (e *AppError) Message() string { return e.message }

// Status returns the transport status.
func (e *AppError) Status() int { return e.status }

// Error returns the message alone.
func (e *AppError) Error() string { return e.message }

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error { return e.cause }

// Payload returns the response body representation.
func (e *AppError) Payload() Payload {
	return Payload{Code: e.code, Message: e.message}
}

// MarshalJSON renders exactly the code and message.
func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Payload())
}

// LogValue implements slog.LogValuer.
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("code", int(e.code)),
		slog.Int("status", e.status),
		slog.String("message", e.message),
	}
	if e.cause != nil {
		attrs = append(attrs, slog.String("cause", e.cause.Error()))
	}
	return slog.GroupValue(attrs...)
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Option configures AppError construction.
type Option func(*buildOptions)

type buildOptions struct {
	message string
	status  int
	cause   error
}

// WithMessage sets an explicit message; the catalogs are not consulted.
// An empty message counts as no message.
func WithMessage(msg string) Option {
	return func(o *buildOptions) { o.message = msg }
}

// WithStatus sets the transport status. Named constructors ignore it, and a
// status that is not a client or server error is replaced by DefaultStatus.
func WithStatus(status int) Option {
	return func(o *buildOptions) { o.status = status }
}

// WithCause attaches the underlying error. It is reachable through errors.Is
// and errors.As but is never rendered to clients.
func WithCause(err error) Option {
	return func(o *buildOptions) { o.cause = err }
}

// isErrorStatus reports whether status is a 4xx or 5xx HTTP status.
func isErrorStatus(status int) bool {
	return status >= http.StatusBadRequest && status <= 599
}
