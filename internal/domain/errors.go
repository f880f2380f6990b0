package domain

import "errors"

var (
	// ErrValidation marks a missing or malformed field; nothing is persisted
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned by repositories when a record does not exist
	ErrNotFound = errors.New("not found")
)
