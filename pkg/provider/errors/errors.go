// Package errors defines the typed error family every provider transformer
// and the retry/classification layer return, grounded on the teacher's
// provider/errors package and extended with the kinds spec.md's error model
// names.
package errors

import "fmt"

// ProviderError wraps a vendor HTTP error that does not fit a more specific
// kind below.
type ProviderError struct {
	Provider   string
	StatusCode int
	ErrorCode  string
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("%s: %s (code %s, status %d)", e.Provider, e.Message, e.ErrorCode, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

func NewProviderError(provider string, statusCode int, errorCode, message string, cause error) error {
	return &ProviderError{Provider: provider, StatusCode: statusCode, ErrorCode: errorCode, Message: message, Cause: cause}
}

// ValidationError reports a malformed request caught before it reached the
// network.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

func NewValidationError(field, message string, cause error) error {
	return &ValidationError{Field: field, Message: message, Cause: cause}
}

// RateLimitError reports a provider-reported 429, optionally carrying a
// Retry-After hint in seconds.
type RateLimitError struct {
	Provider          string
	RetryAfterSeconds *int
	Message           string
	Cause             error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfterSeconds != nil {
		return fmt.Sprintf("%s: rate limited: %s (retry after %ds)", e.Provider, e.Message, *e.RetryAfterSeconds)
	}
	return fmt.Sprintf("%s: rate limited: %s", e.Provider, e.Message)
}

func (e *RateLimitError) Unwrap() error { return e.Cause }

func NewRateLimitError(provider, message string, retryAfterSeconds *int, cause error) error {
	return &RateLimitError{Provider: provider, Message: message, RetryAfterSeconds: retryAfterSeconds, Cause: cause}
}

// QuotaExceededError reports a provider-reported billing/quota exhaustion,
// distinct from a transient rate limit: it is never retried.
type QuotaExceededError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: quota exceeded: %s", e.Provider, e.Message)
}

func (e *QuotaExceededError) Unwrap() error { return e.Cause }

func NewQuotaExceededError(provider, message string, cause error) error {
	return &QuotaExceededError{Provider: provider, Message: message, Cause: cause}
}

// NotFoundError reports a 404 (unknown model, file, or resource id).
type NotFoundError struct {
	Provider string
	Resource string
	Message  string
	Cause    error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s not found: %s", e.Provider, e.Resource, e.Message)
}

func (e *NotFoundError) Unwrap() error { return e.Cause }

func NewNotFoundError(provider, resource, message string, cause error) error {
	return &NotFoundError{Provider: provider, Resource: resource, Message: message, Cause: cause}
}

// ConfigurationError reports a misconfigured client (missing API key, bad
// base URL) caught before any request is attempted.
type ConfigurationError struct {
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{Message: message, Cause: cause}
}

// TimeoutError reports a request that exceeded its deadline.
type TimeoutError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timeout: %s", e.Provider, e.Message)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

func NewTimeoutError(provider, message string, cause error) error {
	return &TimeoutError{Provider: provider, Message: message, Cause: cause}
}

// StreamError reports a failure while consuming a streaming response.
type StreamError struct {
	Message string
	Cause   error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error: %s", e.Message)
}

func (e *StreamError) Unwrap() error { return e.Cause }

func NewStreamError(message string, cause error) error {
	return &StreamError{Message: message, Cause: cause}
}

// ToolExecutionError reports a failure running a caller-supplied tool.
type ToolExecutionError struct {
	ToolName   string
	ToolCallID string
	Message    string
	Cause      error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q (call %s) failed: %s", e.ToolName, e.ToolCallID, e.Message)
}

func (e *ToolExecutionError) Unwrap() error { return e.Cause }

func NewToolExecutionError(toolName, toolCallID, message string, cause error) error {
	return &ToolExecutionError{ToolName: toolName, ToolCallID: toolCallID, Message: message, Cause: cause}
}

var (
	ErrInvalidInput        = NewValidationError("", "invalid input", nil)
	ErrModelNotFound       = NewNotFoundError("", "model", "model not found", nil)
	ErrProviderNotFound    = NewConfigurationError("provider not found", nil)
	ErrToolNotFound        = NewNotFoundError("", "tool", "tool not found", nil)
	ErrUnsupportedFeature  = NewConfigurationError("unsupported feature", nil)
)
