package unpack

import "errors"

var (
	// ErrArchiveUnreadable is returned when a dependency archive cannot
	// be opened or decoded
	ErrArchiveUnreadable = errors.New("archive unreadable")

	// ErrUnsafeEntryPath is returned when an archive entry would escape
	// the extraction directory
	ErrUnsafeEntryPath = errors.New("unsafe archive entry path")
)
