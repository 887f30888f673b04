package errors

import "errors"

var (
	ErrSessionNotFound     = errors.New("vote session not found")
	ErrInvalidSessionInput = errors.New("invalid vote session input")
	ErrInvalidThresholds   = errors.New("pass threshold must be positive and fail threshold negative")
	ErrTooManyMessages     = errors.New("too many messages linked to the vote session")
	ErrSessionClosed       = errors.New("vote session is closed")
	ErrInvalidWeight       = errors.New("invalid vote weight")
)
