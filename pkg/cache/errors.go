package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")

	// ErrMissingDir is returned when the file backend has no directory.
	ErrMissingDir = errors.New("cache directory not set")
)
