package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrLockTimeout is returned when a row lock could not be acquired
	// within the configured bound. The transaction rolled back cleanly,
	// so the caller may safely retry the identical request.
	ErrLockTimeout = errors.New("lock timeout")
)
