package pve

import (
	"fmt"
	"strings"
)

// CommandError reports a platform command that exited non-zero. It
// carries the exact invocation line so the operator can re-run it by
// hand, and the exit status for the process exit code.
type CommandError struct {
	Line     string // full command line as invoked
	ExitCode int
	Stderr   string
	Err      error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("platform command failed (exit %d): %s", e.ExitCode, e.Line)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}
