package cache

import "errors"

var (
	// ErrCacheMiss is returned when no record exists for a namespace
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidNamespace is returned when a namespace is empty or would
	// escape the store directory
	ErrInvalidNamespace = errors.New("invalid cache namespace")
)
