package gemini

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"google.golang.org/genai"
)

const (
	baseBackoff   = 500 * time.Millisecond
	maxRetryDelay = 10 * time.Second
)

var retryAfterRe = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

// retryDelay reports whether err is worth another attempt and how long to wait.
// Quota errors asking for a delay longer than maxRetryDelay are not retried.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	if errors.Is(err, context.Canceled) {
		return 0, false
	}

	backoff := baseBackoff << attempt
	if errors.Is(err, context.DeadlineExceeded) {
		return backoff, true
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return 0, false
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		m := retryAfterRe.FindStringSubmatch(apiErr.Message)
		if m == nil {
			return backoff, true
		}
		seconds, parseErr := strconv.ParseFloat(m[1], 64)
		if parseErr != nil {
			return backoff, true
		}
		delay := time.Duration(seconds * float64(time.Second))
		if delay > maxRetryDelay {
			return 0, false
		}
		return delay, true
	case apiErr.Code >= http.StatusInternalServerError:
		return backoff, true
	default:
		return 0, false
	}
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}
