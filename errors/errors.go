package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError by code, so sentinel-style comparisons work:
//
//	errors.Is(err, &AppError{Code: ErrCodeMissingSource})
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// --- Configuration errors ---

// InvalidSetting creates an error for a malformed request field.
func InvalidSetting(field, reason string) *AppError {
	return New(ErrCodeInvalidSetting, fmt.Sprintf("invalid %s: %s", field, reason)).
		WithDetail("field", field)
}

// MissingSource creates an error for a request with no input source.
func MissingSource() *AppError {
	return New(ErrCodeMissingSource, "one of text, data, path or url must be set")
}

// MissingFormat creates an error for a URL source without a usable format.
func MissingFormat(url, got string) *AppError {
	e := New(ErrCodeMissingFormat, "url sources need a csv, json or yaml format").
		WithDetail("url", url)
	if got != "" {
		e.WithDetail("format", got)
	}
	return e
}

// --- Runtime errors ---

// ReadFailed wraps a file boundary failure.
func ReadFailed(path string, cause error) *AppError {
	return New(ErrCodeReadFailed, fmt.Sprintf("cannot read %s", path)).
		WithDetail("path", path).WithCause(cause)
}

// FetchFailed wraps a remote download failure.
func FetchFailed(url string, cause error) *AppError {
	return New(ErrCodeFetchFailed, fmt.Sprintf("cannot fetch %s", url)).
		WithDetail("url", url).WithCause(cause)
}

// DecodeFailed wraps a byte-to-text decoding failure.
func DecodeFailed(encoding string, cause error) *AppError {
	return New(ErrCodeDecodeFailed, fmt.Sprintf("cannot decode %s text", encoding)).
		WithDetail("encoding", encoding).WithCause(cause)
}

// ParseFailed wraps a tokenizer or structured-parser failure.
func ParseFailed(format string, cause error) *AppError {
	return New(ErrCodeParseFailed, fmt.Sprintf("cannot parse %s input", format)).
		WithDetail("format", format).WithCause(cause)
}

// HookFailed wraps an error returned by a caller-supplied hook.
func HookFailed(hook string, cause error) *AppError {
	return New(ErrCodeHookFailed, fmt.Sprintf("%s hook failed", hook)).
		WithDetail("hook", hook).WithCause(cause)
}

// PublishFailed wraps a notification bus failure.
func PublishFailed(bus string, cause error) *AppError {
	return New(ErrCodePublishFailed, fmt.Sprintf("cannot publish to %s", bus)).
		WithDetail("bus", bus).WithCause(cause)
}

// Internal wraps an unexpected error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "unexpected error").WithCause(cause)
}

// --- Inspection ---

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

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && IsConfigCode(appErr.Code)
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// Wrap returns err as an AppError, wrapping unknown errors as internal.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
