package errors

import "errors"

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrInvalidEventFilter = errors.New("invalid event filter")
)
