package service

import "errors"

var (
	// ErrNotFound is returned when a referenced entity id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStatus is returned for caller-supplied status values outside
	// the recognized enums, and for transitions off a terminal run.
	ErrInvalidStatus = errors.New("invalid status")
)
