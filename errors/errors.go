package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"net/http"
	"runtime/debug"
)

// Kind identifies the variant of an AppError. The set is open: applications
// may declare their own kinds and still use every helper in this package.
type Kind string

const (
	KindUnknown    Kind = "unknown"
	KindNetwork    Kind = "network"
	KindValidation Kind = "validation"
	KindStorage    Kind = "storage"
)

// AppError is the unified application error type.
//
// Every kind shares Message, Code, Cause and Trace. StatusCode is meaningful
// for network errors and Field for validation errors.
type AppError struct {
	// Kind is the variant of the error.
	Kind Kind `json:"kind"`
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code,omitempty"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// StatusCode is the remote status of a network error (HTTP or protocol specific).
	StatusCode int `json:"status_code,omitempty"`
	// Field names the offending input of a validation error.
	Field string `json:"field,omitempty"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
	// Trace is the stack captured where the error originated, if any.
	Trace string `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	prefix := string(e.Kind)
	if e.Code != "" {
		prefix = string(e.Code)
	}
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", prefix, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError of the same kind and code.
// A target with an empty code matches on kind alone.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Override mutates a copy of an AppError. See With.
type Override func(*AppError)

// With returns a copy of e with the overrides applied. The receiver is left
// untouched, so shared sentinel-like values can be specialised safely.
func (e *AppError) With(overrides ...Override) *AppError {
	cp := *e
	if e.Details != nil {
		cp.Details = maps.Clone(e.Details)
	}
	for _, o := range overrides {
		o(&cp)
	}
	return &cp
}

// WithMessage overrides the message.
func WithMessage(msg string) Override {
	return func(e *AppError) { e.Message = msg }
}

// WithCode overrides the code and recomputes Retryable from it.
func WithCode(code ErrorCode) Override {
	return func(e *AppError) {
		e.Code = code
		e.Retryable = IsRetryableCode(code)
	}
}

// WithCause overrides the cause.
func WithCause(cause error) Override {
	return func(e *AppError) { e.Cause = cause }
}

// WithTrace overrides the originating trace.
func WithTrace(trace string) Override {
	return func(e *AppError) { e.Trace = trace }
}

// WithStatusCode overrides the status code.
func WithStatusCode(status int) Override {
	return func(e *AppError) { e.StatusCode = status }
}

// WithField overrides the field name.
func WithField(field string) Override {
	return func(e *AppError) { e.Field = field }
}

// WithDetail sets a single detail key-value pair.
func WithDetail(key string, value any) Override {
	return func(e *AppError) {
		if e.Details == nil {
			e.Details = make(map[string]any)
		}
		e.Details[key] = value
	}
}

// CaptureTrace returns a copy of e carrying the current goroutine stack.
func (e *AppError) CaptureTrace() *AppError {
	return e.With(WithTrace(string(debug.Stack())))
}

// New creates a new AppError with automatic retryable detection.
func New(kind Kind, code ErrorCode, message string) *AppError {
	return &AppError{
		Kind:      kind,
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Variant constructors ---

// Unknown creates an error of unknown origin.
func Unknown(message string) *AppError {
	return New(KindUnknown, ErrCodeInternal, message)
}

// Network creates an error for a failed remote call. status is the remote
// status code, 0 when no response was received.
func Network(message string, status int) *AppError {
	code := ErrCodeExternalService
	switch {
	case status == 0:
		code = ErrCodeConnectionFailed
	case status == http.StatusTooManyRequests:
		code = ErrCodeRateLimited
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		code = ErrCodeTimeout
	case status == http.StatusServiceUnavailable:
		code = ErrCodeServiceUnavailable
	case status == http.StatusNotFound:
		code = ErrCodeNotFound
	case status == http.StatusUnauthorized:
		code = ErrCodeUnauthorized
	case status == http.StatusForbidden:
		code = ErrCodeForbidden
	}
	e := New(KindNetwork, code, message)
	e.StatusCode = status
	return e
}

// Validation creates an error for invalid input on field.
func Validation(field, message string) *AppError {
	code := ErrCodeInvalidInput
	if field == "" {
		code = ErrCodeValidationFailed
	}
	e := New(KindValidation, code, message)
	e.Field = field
	return e
}

// MissingField creates a validation error for a missing required field.
func MissingField(field string) *AppError {
	e := New(KindValidation, ErrCodeMissingField, "is required")
	e.Field = field
	return e
}

// Storage creates an error for a failed persistence operation.
func Storage(message string) *AppError {
	return New(KindStorage, ErrCodeStorage, message)
}

// Wrap converts err to an AppError. AppErrors anywhere in the chain are
// returned as-is; anything else becomes an Unknown error caused by err.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Unknown(err.Error()).With(WithCause(err))
}

// IsKind reports whether err is, or wraps, an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}

// IsRetryable reports whether err is, or wraps, a retryable AppError.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
