package domain

import "errors"

var (
	// ErrInvalidConfig is returned when the matching configuration is malformed
	ErrInvalidConfig = errors.New("invalid matching configuration")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
