// errors.go - Provider error categorization

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// ProviderError is a categorized failure from a model call. Structural
// categories mean the next fallback candidate is pointless against the same
// cause (bad key, bad request); transient ones are worth trying elsewhere.
type ProviderError struct {
	OriginalError error
	Category      string
	StatusCode    int
	Message       string
	Transient     bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status: %d, transient: %v)", e.Category, e.Message, e.StatusCode, e.Transient)
}

func (e *ProviderError) Unwrap() error {
	return e.OriginalError
}

// CategorizeProviderError analyzes a model-call error for logging and
// fallback decisions. Unknown errors are treated as non-transient.
func CategorizeProviderError(err error) *ProviderError {
	if err == nil {
		return nil
	}

	provErr := &ProviderError{
		OriginalError: err,
		Category:      "unknown",
		Message:       err.Error(),
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		provErr.StatusCode = apiErr.Code

		switch apiErr.Code {
		case 400:
			provErr.Category = "bad_request"
			provErr.Message = "Invalid request format or parameters"
		case 401:
			provErr.Category = "unauthorized"
			provErr.Message = "Invalid API key or authentication failed"
		case 403:
			provErr.Category = "forbidden"
			provErr.Message = "API key lacks required permissions"
		case 404:
			provErr.Category = "model_not_found"
			provErr.Message = "Model not found or invalid endpoint"
		case 413:
			provErr.Category = "payload_too_large"
			provErr.Message = "Request size exceeds limit (reduce image size)"
		case 429:
			provErr.Category = "rate_limit"
			provErr.Message = "Rate limit exceeded - too many requests"
			provErr.Transient = true
		case 500, 502, 503, 504:
			provErr.Category = "server_error"
			provErr.Message = fmt.Sprintf("Provider server error (%d)", apiErr.Code)
			provErr.Transient = true
		default:
			provErr.Category = "unknown_api_error"
			provErr.Message = fmt.Sprintf("API error: %s", apiErr.Message)
			provErr.Transient = apiErr.Code >= 500
		}
		return provErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		provErr.Category = "timeout"
		provErr.Message = "Model call timed out"
		provErr.Transient = true
		return provErr
	}
	if errors.Is(err, context.Canceled) {
		provErr.Category = "canceled"
		provErr.Message = "Request was canceled"
		return provErr
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "resource exhausted"):
		provErr.Category = "quota_exceeded"
		provErr.Message = "Provider quota exceeded"
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline"):
		provErr.Category = "timeout"
		provErr.Message = "Model call timed out"
		provErr.Transient = true
	case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network"):
		provErr.Category = "network_error"
		provErr.Message = "Network connection error"
		provErr.Transient = true
	}

	return provErr
}
