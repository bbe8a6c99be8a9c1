package logging

import (
	"fmt"
	"io"
	"os"
)

// UserOut is where user-facing status lines are written. Tests swap it out.
var UserOut io.Writer = os.Stderr

// UserInfo prints an info message.
func UserInfo(format string, args ...interface{}) {
	fmt.Fprintf(UserOut, "ℹ "+format+"\n", args...)
}

// UserSuccess prints a success message.
func UserSuccess(format string, args ...interface{}) {
	fmt.Fprintf(UserOut, "✓ "+format+"\n", args...)
}

// UserWarning prints a warning message.
func UserWarning(format string, args ...interface{}) {
	fmt.Fprintf(UserOut, "⚠ "+format+"\n", args...)
}

// UserError prints an error message.
func UserError(format string, args ...interface{}) {
	fmt.Fprintf(UserOut, "✗ "+format+"\n", args...)
}
