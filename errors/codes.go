package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors. These are detected before any work starts and are
// reported synchronously to the caller.
const (
	// ErrCodeInvalidSetting indicates a request setting is malformed.
	ErrCodeInvalidSetting ErrorCode = "INVALID_SETTING"
	// ErrCodeMissingSource indicates a request names no input source.
	ErrCodeMissingSource ErrorCode = "MISSING_SOURCE"
	// ErrCodeMissingFormat indicates a URL source without a usable format.
	ErrCodeMissingFormat ErrorCode = "MISSING_FORMAT"
)

// Runtime errors. These reject the request's future.
const (
	// ErrCodeReadFailed indicates the file boundary failed.
	ErrCodeReadFailed ErrorCode = "READ_FAILED"
	// ErrCodeFetchFailed indicates a remote download failed.
	ErrCodeFetchFailed ErrorCode = "FETCH_FAILED"
	// ErrCodeDecodeFailed indicates bytes could not be decoded to text.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"
	// ErrCodeParseFailed indicates text could not be parsed into records.
	ErrCodeParseFailed ErrorCode = "PARSE_FAILED"
	// ErrCodeHookFailed indicates a caller-supplied hook returned an error.
	ErrCodeHookFailed ErrorCode = "HOOK_FAILED"
	// ErrCodePublishFailed indicates a notification could not be delivered.
	ErrCodePublishFailed ErrorCode = "PUBLISH_FAILED"
)

// Transport errors used by the network and storage boundaries.
const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeFetchFailed:        true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeConnectionFailed:   true,
	ErrCodeServiceUnavailable: true,
}

var configCodes = map[ErrorCode]bool{
	ErrCodeInvalidSetting: true,
	ErrCodeMissingSource:  true,
	ErrCodeMissingFormat:  true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// IsConfigCode reports whether code is raised before any work starts.
func IsConfigCode(code ErrorCode) bool {
	return configCodes[code]
}
