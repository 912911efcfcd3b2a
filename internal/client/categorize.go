package client

import (
	"context"
	"errors"
	"strings"
)

type ctxKey int

const correlationIDKey ctxKey = iota

// WithCorrelationID returns a context carrying the per-query correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation ID, or "" when absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if v := ctx.Value(correlationIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// ErrorCategory is a stable label for error classification in metrics and
// user-facing messages.
type ErrorCategory string

const (
	ErrorCategoryTimeout          ErrorCategory = "timeout"
	ErrorCategoryNetwork          ErrorCategory = "network"
	ErrorCategoryInvalidAPIKey    ErrorCategory = "invalid_api_key"
	ErrorCategoryLocationNotFound ErrorCategory = "location_not_found"
	ErrorCategoryRateLimited      ErrorCategory = "rate_limited"
	ErrorCategoryUpstream         ErrorCategory = "upstream"
	ErrorCategoryParsing          ErrorCategory = "parsing"
	ErrorCategoryUnknown          ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}
	if errors.Is(err, ErrInvalidAPIKey) {
		return ErrorCategoryInvalidAPIKey
	}
	if errors.Is(err, ErrLocationNotFound) {
		return ErrorCategoryLocationNotFound
	}
	if errors.Is(err, ErrRateLimited) {
		return ErrorCategoryRateLimited
	}
	if errors.Is(err, ErrUpstream) {
		return ErrorCategoryUpstream
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "context deadline exceeded") {
		return ErrorCategoryTimeout
	}
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "no such host") {
		return ErrorCategoryNetwork
	}
	if strings.Contains(errStr, "parse") || strings.Contains(errStr, "unmarshal") {
		return ErrorCategoryParsing
	}

	return ErrorCategoryUnknown
}

// UserMessage renders an error as a line suitable for the interactive session.
func UserMessage(err error) string {
	switch CategorizeError(err) {
	case ErrorCategoryInvalidAPIKey:
		return "Invalid API key. Please check your OpenWeatherMap API key."
	case ErrorCategoryLocationNotFound:
		return "Location not found. Please check the city name or pincode."
	case ErrorCategoryRateLimited:
		return "Too many requests to the weather service. Please wait a moment and try again."
	case ErrorCategoryTimeout:
		return "Request timed out. Please check your internet connection."
	case ErrorCategoryNetwork:
		return "Connection error. Please check your internet connection."
	case ErrorCategoryParsing:
		return "Invalid response from the weather service."
	case ErrorCategoryUpstream:
		return "The weather service is having trouble. Please try again shortly."
	default:
		return "Unexpected error: " + err.Error()
	}
}

// categorizeStatus is the metric status label for a failed call.
func categorizeStatus(err error) string {
	cat := CategorizeError(err)
	if cat == "" {
		return "success"
	}
	return string(cat)
}
