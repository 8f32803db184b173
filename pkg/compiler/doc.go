// Package compiler constructs the protoc command line and executes the
// schema compiler as a child process.
//
// The argument sequence is deterministic: one -I flag per include path
// in the order given (local sources first so they shadow vendored
// schemas), then per output plugin a --<name>_out flag followed by its
// --plugin flag when an external executable is configured, then every
// schema file path. A nonzero compiler exit is surfaced as an ExitError
// carrying the literal exit code; a compiler that could not be started
// at all is wrapped with ErrCompilerStart. Neither is retried.
package compiler
