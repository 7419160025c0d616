package models

import (
	"errors"
	"fmt"
)

// Error taxonomy for the aggregation pipeline. Fetch clients and the
// orchestrator wrap these sentinels so callers can branch with errors.Is
// while the wrapped message keeps the upstream detail.
var (
	// ErrValidation marks caller errors (bad duration/unit); never retried.
	ErrValidation = errors.New("invalid request")

	// ErrRateLimitExhausted marks a fetch that rotated through every key in
	// its pool and still hit the quota sentinel.
	ErrRateLimitExhausted = errors.New("api key pool exhausted")

	// ErrUpstreamData marks fatal upstream payload problems: unknown ticker,
	// missing field, empty object/array response. No retry, no rotation.
	ErrUpstreamData = errors.New("upstream data error")

	// ErrParse marks malformed payloads (non-JSON body, non-numeric fields).
	ErrParse = errors.New("parse error")

	// ErrInsufficientHistory is the hard floor: fewer than 2 price points
	// fails the whole analysis. Indicator-level shortfalls do not use this;
	// the indicator is simply omitted.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrPredictionService marks an unreachable predictor or a malformed
	// predictor response; the request fails with no partial score.
	ErrPredictionService = errors.New("prediction service error")
)

// ValidationErrorf wraps ErrValidation with a caller-facing message.
func ValidationErrorf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, a...)...)
}

// UpstreamErrorf wraps ErrUpstreamData with the upstream detail.
func UpstreamErrorf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUpstreamData}, a...)...)
}

// ParseErrorf wraps ErrParse with the offending field or payload detail.
func ParseErrorf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrParse}, a...)...)
}
