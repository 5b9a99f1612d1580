package clicommand

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitError is used to signal that the command should exit with the exit code
// in `code`. It also wraps an error, which can be used to provide more context.
type ExitError struct {
	code  int
	inner error
}

func NewExitError(code int, err error) *ExitError {
	return &ExitError{code: code, inner: err}
}

func (e *ExitError) Code() int {
	return e.code
}

// Error prints the message of the wrapped error. It ignores the exit code.
func (e *ExitError) Error() string {
	return e.inner.Error()
}

func (e *ExitError) Unwrap() error {
	return e.inner
}

// Is will return true if the target is an ExitError with the same code.
func (e *ExitError) Is(target error) bool {
	terr, ok := target.(*ExitError)
	return ok && e.code == terr.code
}

// SilentExitError exits with status `code` without printing anything. It's
// used once the problem has already been reported in the build output.
type SilentExitError struct {
	code int
}

func NewSilentExitError(code int) *SilentExitError {
	return &SilentExitError{code: code}
}

func (e *SilentExitError) Error() string {
	return fmt.Sprintf("silently exited status %d", e.code)
}

func (e *SilentExitError) Code() int {
	return e.code
}

// Is will return true if the target is a SilentExitError with the same code.
func (e *SilentExitError) Is(target error) bool {
	terr, ok := target.(*SilentExitError)
	return ok && e.code == terr.code
}

// FatalWriter is where PrintMessageAndReturnExitCode reports errors.
var FatalWriter io.Writer = os.Stderr

// PrintMessageAndReturnExitCode prints "recipe: fatal: <err>" and returns the
// status the process should exit with: 0 for nil, the code of a
// SilentExitError (printing nothing) or ExitError, and 1 otherwise.
func PrintMessageAndReturnExitCode(err error) int {
	if err == nil {
		return 0
	}

	if serr := new(SilentExitError); errors.As(err, &serr) {
		return serr.Code()
	}

	fmt.Fprintf(FatalWriter, "recipe: fatal: %s\n", err) //nolint:errcheck // nothing more can be done

	if eerr := new(ExitError); errors.As(err, &eerr) {
		return eerr.Code()
	}

	return 1
}
