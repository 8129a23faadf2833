package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError_ErrorMessage_WithAndWithoutCode(t *testing.T) {
	withCode := &ProviderError{Provider: "openai", StatusCode: 400, ErrorCode: "invalid_request", Message: "bad field"}
	assert.Equal(t, "openai: bad field (code invalid_request, status 400)", withCode.Error())

	withoutCode := &ProviderError{Provider: "openai", StatusCode: 500, Message: "server error"}
	assert.Equal(t, "openai: server error (status 500)", withoutCode.Error())
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewProviderError("openai", 500, "", "wrapped", cause)
	assert.ErrorIs(t, err, cause)
}

func TestValidationError_ErrorMessage_WithAndWithoutField(t *testing.T) {
	withField := &ValidationError{Field: "model", Message: "is required"}
	assert.Equal(t, `validation error on "model": is required`, withField.Error())

	withoutField := &ValidationError{Message: "malformed body"}
	assert.Equal(t, "validation error: malformed body", withoutField.Error())
}

func TestRateLimitError_ErrorMessage_WithAndWithoutRetryAfter(t *testing.T) {
	retryAfter := 30
	withRetry := &RateLimitError{Provider: "anthropic", Message: "too many requests", RetryAfterSeconds: &retryAfter}
	assert.Equal(t, "anthropic: rate limited: too many requests (retry after 30s)", withRetry.Error())

	withoutRetry := &RateLimitError{Provider: "anthropic", Message: "too many requests"}
	assert.Equal(t, "anthropic: rate limited: too many requests", withoutRetry.Error())
}

func TestQuotaExceededError_ErrorMessage(t *testing.T) {
	err := NewQuotaExceededError("openai", "monthly quota exhausted", nil)
	assert.Equal(t, "openai: quota exceeded: monthly quota exhausted", err.Error())
}

func TestNotFoundError_ErrorMessage(t *testing.T) {
	err := NewNotFoundError("openai", "model", "gpt-unknown", nil)
	assert.Equal(t, "openai: model not found: gpt-unknown", err.Error())
}

func TestConfigurationError_ErrorMessage(t *testing.T) {
	err := NewConfigurationError("missing API key", nil)
	assert.Equal(t, "configuration error: missing API key", err.Error())
}

func TestTimeoutError_ErrorMessage(t *testing.T) {
	err := NewTimeoutError("groq", "request exceeded deadline", nil)
	assert.Equal(t, "groq: timeout: request exceeded deadline", err.Error())
}

func TestStreamError_ErrorMessage(t *testing.T) {
	err := NewStreamError("malformed SSE frame", nil)
	assert.Equal(t, "stream error: malformed SSE frame", err.Error())
}

func TestToolExecutionError_ErrorMessage(t *testing.T) {
	err := NewToolExecutionError("get_weather", "call-1", "network unreachable", nil)
	assert.Equal(t, `tool "get_weather" (call call-1) failed: network unreachable`, err.Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit is retryable", &RateLimitError{}, true},
		{"timeout is retryable", &TimeoutError{}, true},
		{"5xx provider error is retryable", &ProviderError{StatusCode: 503}, true},
		{"4xx provider error is not retryable", &ProviderError{StatusCode: 400}, false},
		{"validation error is not retryable", &ValidationError{}, false},
		{"plain error is not retryable", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
