package errors

import "errors"

var (
	ErrBuildNotFound     = errors.New("build not found")
	ErrInvalidBuildInput = errors.New("invalid build input")
	ErrInvalidChange     = errors.New("invalid build change")
	ErrBuildNotPending   = errors.New("build is not pending")
	ErrBuildLocked       = errors.New("build is locked by another editor")
)
