// Package errors provides typed errors with exit codes for warden-ctl.
//
// # Error Types
//
// WardenError is the base error type that wraps an error with an exit code:
//
//	type WardenError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// ExecutionError is returned when the daemon ran a script successfully but
// the script itself exited with a nonzero status. It carries the status and
// the captured output.
//
// # Exit Codes
//
//	ExitSuccess          = 0  // Success
//	ExitGeneralError     = 1  // General/unknown errors
//	ExitConfigError      = 2  // Client config could not be loaded
//	ExitInvalidArgument  = 3  // Bad flags, payload or missing handle
//	ExitConnectionFailed = 4  // Daemon unreachable after retries
//	ExitDaemonError      = 5  // Daemon reply unusable
//	ExitExecutionFailed  = 6  // Script exited nonzero
//	ExitPartialCreate    = 7  // Container created but not fully configured
//
// # Extracting Exit Codes
//
// GetExitCode walks the error chain for anything with an ExitCode method:
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
