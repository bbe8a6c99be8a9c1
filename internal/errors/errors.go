package errors

import (
	"errors"
	"fmt"
)

// Exit codes for warden-ctl
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitConfigError      = 2
	ExitInvalidArgument  = 3
	ExitConnectionFailed = 4
	ExitDaemonError      = 5
	ExitExecutionFailed  = 6
	ExitPartialCreate    = 7
)

// WardenError is the base error type for warden-ctl
type WardenError struct {
	Code    int
	Message string
	Cause   error
}

func (e *WardenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *WardenError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *WardenError) ExitCode() int {
	return e.Code
}

// New creates a new WardenError
func New(code int, message string) *WardenError {
	return &WardenError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a WardenError
func Wrap(code int, message string, cause error) *WardenError {
	return &WardenError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ExecutionError reports a script that ran but exited with a nonzero status.
// The round-trip to the daemon itself succeeded.
type ExecutionError struct {
	ExitStatus int
	Stdout     string
	Stderr     string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("script exited with status %d", e.ExitStatus)
}

// ExitCode returns the exit code for this error
func (e *ExecutionError) ExitCode() int {
	return ExitExecutionFailed
}

// Common error constructors

// InvalidArgument returns an error for a precondition violated by the caller
func InvalidArgument(message string) *WardenError {
	return New(ExitInvalidArgument, message)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *WardenError {
	return Wrap(ExitConfigError, message, cause)
}

// ConnectionFailed returns an error for a daemon that stayed unreachable
func ConnectionFailed(message string, cause error) *WardenError {
	return Wrap(ExitConnectionFailed, message, cause)
}

// DaemonError returns an error for a daemon reply that cannot be used
func DaemonError(message string) *WardenError {
	return New(ExitDaemonError, message)
}

// exitCoder is implemented by every error in this package and by errors in
// other packages that want to pick their own exit code.
type exitCoder interface {
	ExitCode() int
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
