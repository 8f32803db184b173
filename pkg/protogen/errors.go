package protogen

import "errors"

var (
	// ErrMissingPluginName is returned when a plugin has no name
	ErrMissingPluginName = errors.New("plugin name is required")

	// ErrMissingOutputDir is returned when a plugin has no output directory
	ErrMissingOutputDir = errors.New("plugin output directory is required")

	// ErrMissingFilter is returned when a plugin filter was left unconfigured
	ErrMissingFilter = errors.New("plugin filter is required")

	// ErrInvalidFilter is returned when a filter configuration is unusable
	ErrInvalidFilter = errors.New("invalid filter")
)
