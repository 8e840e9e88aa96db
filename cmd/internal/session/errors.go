package session

import "errors"

var (
	// ErrValidation is returned when user_id or device_id is missing or empty.
	// Validation failures are rejected before touching the store.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when a record does not exist for the
	// (user, device) pair.
	ErrNotFound = errors.New("session not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
