package compiler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCompilerStart is returned when the compiler executable could not
	// be started (missing binary, permission error)
	ErrCompilerStart = errors.New("failed to start schema compiler")

	// ErrNoPlugins is returned when a request carries no output plugins
	ErrNoPlugins = errors.New("no output plugins configured")
)

// ExitError reports a compiler run that completed with a nonzero exit
// status. The message always carries the literal exit code.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("schema compiler exited with code %d", e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}
