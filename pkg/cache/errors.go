package cache

import "errors"

var (
	// ErrBackendUnavailable wraps backend failures. Read paths never surface
	// it; they fall back to the producer instead.
	ErrBackendUnavailable = errors.New("cache backend unavailable")

	// ErrClosed is returned by backend operations after Close.
	ErrClosed = errors.New("cache backend closed")
)
