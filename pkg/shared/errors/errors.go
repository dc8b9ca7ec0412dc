package errors

import (
	"fmt"
)

// CommandError carries an exit code from a command boundary up to main.
type CommandError struct {
	ExitCode    int
	CommonError string
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// NewCommandError creates a new CommandError wrapping err with the given exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
	}
}

// NewCommandErrorf formats a message and wraps it into a CommandError.
func NewCommandErrorf(code int, format string, args ...interface{}) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: fmt.Sprintf(format, args...),
	}
}
