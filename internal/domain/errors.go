package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrLLMAPIFailure is returned when the LLM extraction API request fails
	ErrLLMAPIFailure = errors.New("LLM API request failed")

	// ErrMalformedResponse is returned when no structured content can be
	// salvaged from an LLM response
	ErrMalformedResponse = errors.New("could not extract structured content from response")

	// ErrStagesUnavailable is returned when both extraction stages degraded
	// to empty records and there is nothing to reconcile
	ErrStagesUnavailable = errors.New("both extraction stages returned no specifications")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
