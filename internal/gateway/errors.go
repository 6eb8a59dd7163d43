package gateway

import "errors"

var (
	// ErrNotFound is returned when a requested document doesn't exist
	ErrNotFound = errors.New("document not found")

	// ErrPermissionDenied is returned when the caller may not touch the document
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnavailable is returned when the backend can't be reached
	ErrUnavailable = errors.New("backend unavailable")

	// ErrInvalidArgument is returned when a request is malformed
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed is returned when calling into a subscription or store that was closed
	ErrClosed = errors.New("gateway closed")
)
