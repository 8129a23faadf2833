package errors

import (
	"net/http"
	"strings"
)

var requestIDHeaders = []string{
	"x-request-id",
	"x-response-id",
	"x-openai-request-id",
	"x-trace-id",
	"traceparent",
	"x-correlation-id",
	"x-goog-request-id",
}

func idsSuffix(headers http.Header) string {
	var ids []string
	for _, k := range requestIDHeaders {
		if v := headers.Get(k); v != "" {
			ids = append(ids, k+"="+v)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	return " ids=[" + strings.Join(ids, ",") + "]"
}

func bodySample(body string) string {
	r := []rune(body)
	if len(r) > 200 {
		r = r[:200]
	}
	return string(r)
}

// ClassifyHTTPError inspects an HTTP failure's status, body, and headers and
// returns a typed error with a retry hint, grounded verbatim on the
// provider-agnostic decision table in the original siumai crate's
// classify_http_error (status/body/header heuristics, including the
// request-id-suffix debugging aid and 200-rune body sample).
func ClassifyHTTPError(providerID string, status int, bodyText string, headers http.Header, fallbackMessage string) error {
	lower := strings.ToLower(bodyText)
	suffix := idsSuffix(headers)
	sample := bodySample(bodyText)

	switch status {
	case 429:
		retryAfter := headers.Get("retry-after")
		var after *int
		if retryAfter != "" {
			if n, ok := parseRetryAfterSeconds(retryAfter); ok {
				after = &n
			}
		}
		return NewRateLimitError(providerID, "provider="+providerID+" http=429 retry_after="+retryAfter+suffix+" body_sample="+sample, after, nil)

	case 401:
		return NewProviderError(providerID, status, "unauthorized", "provider="+providerID+" unauthorized"+suffix+" body_sample="+sample, nil)

	case 404:
		return NewNotFoundError(providerID, "resource", "provider="+providerID+" http=404"+suffix+" body_sample="+sample, nil)

	case 413:
		return NewValidationError("", "provider="+providerID+" http=413 payload too large"+suffix+" body_sample="+sample, nil)

	case 415:
		return NewValidationError("", "provider="+providerID+" http=415 unsupported media type"+suffix+" body_sample="+sample, nil)
	}

	if status == 403 || status == 400 {
		quotaLike := strings.Contains(lower, "quota")
		rateLike := strings.Contains(lower, "rate limit") ||
			strings.Contains(lower, "ratelimit") ||
			strings.Contains(lower, "resource_exhausted") ||
			strings.Contains(lower, "rate_limit_exceeded") ||
			strings.Contains(lower, "ratelimitexceeded") ||
			strings.Contains(lower, "ratelimit exceeded")

		if quotaLike {
			return NewQuotaExceededError(providerID, "provider="+providerID+" quota exceeded", nil)
		}
		if rateLike {
			return NewRateLimitError(providerID, "provider="+providerID+" rate limited", nil, nil)
		}
	}

	switch status {
	case 403:
		return NewProviderError(providerID, status, "forbidden", "provider="+providerID+" forbidden"+suffix+" body_sample="+sample, nil)
	case 400:
		return NewValidationError("", "provider="+providerID+" bad request"+suffix+" body_sample="+sample, nil)
	}

	if status >= 500 && status <= 599 {
		msg := fallbackMessage
		if msg == "" {
			msg = "server error"
		}
		return NewProviderError(providerID, status, "server-error", msg, nil)
	}

	msg := fallbackMessage
	if msg == "" {
		if strings.TrimSpace(bodyText) == "" {
			msg = "api error"
		} else {
			msg = sample
		}
	}
	return NewProviderError(providerID, status, "", msg, nil)
}

func parseRetryAfterSeconds(value string) (int, bool) {
	n := 0
	if value == "" {
		return 0, false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// IsRetryable reports whether err represents a transient condition worth
// retrying: rate limits, timeouts, and 5xx provider errors.
func IsRetryable(err error) bool {
	switch e := err.(type) {
	case *RateLimitError:
		return true
	case *TimeoutError:
		return true
	case *ProviderError:
		return e.StatusCode >= 500 && e.StatusCode <= 599
	default:
		return false
	}
}
