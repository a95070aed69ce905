package common

import "errors"

// Match with errors.Is.
var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors.
	ErrorIncorrectMetadata = errors.New("setting must be name=value")
)
