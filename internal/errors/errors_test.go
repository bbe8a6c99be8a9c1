package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWardenError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *WardenError
		wantMsg string
	}{
		{
			name:    "without cause",
			err:     New(ExitGeneralError, "something went wrong"),
			wantMsg: "something went wrong",
		},
		{
			name:    "with cause",
			err:     Wrap(ExitGeneralError, "operation failed", fmt.Errorf("underlying error")),
			wantMsg: "operation failed: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestWardenError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ExitGeneralError, "wrapped", cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := New(ExitGeneralError, "no cause")
	if unwrapped := errNoCause.Unwrap(); unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("boom")
	tests := []struct {
		name     string
		err      *WardenError
		wantCode int
	}{
		{"invalid argument", InvalidArgument("container handle must not be empty"), ExitInvalidArgument},
		{"config", ConfigError("bad config", cause), ExitConfigError},
		{"connection", ConnectionFailed("daemon unreachable", cause), ExitConnectionFailed},
		{"daemon", DaemonError("container path is not available"), ExitDaemonError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.ExitCode() != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d", tt.err.ExitCode(), tt.wantCode)
			}
		})
	}
}

func TestExecutionError(t *testing.T) {
	err := &ExecutionError{ExitStatus: 1, Stdout: "HI", Stderr: "its broken"}

	if !strings.Contains(err.Error(), "exited with status 1") {
		t.Errorf("Error() = %q, want it to mention the exit status", err.Error())
	}
	if err.ExitCode() != ExitExecutionFailed {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitExecutionFailed)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("plain"), ExitGeneralError},
		{"warden error", InvalidArgument("x"), ExitInvalidArgument},
		{"wrapped warden error", fmt.Errorf("outer: %w", ConfigError("x", nil)), ExitConfigError},
		{"execution error", fmt.Errorf("run: %w", &ExecutionError{ExitStatus: 3}), ExitExecutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsAndAs(t *testing.T) {
	base := New(ExitDaemonError, "base")
	wrapped := fmt.Errorf("context: %w", base)

	if !Is(wrapped, base) {
		t.Error("Is() should find the wrapped error")
	}

	var target *WardenError
	if !As(wrapped, &target) {
		t.Fatal("As() should find a *WardenError")
	}
	if target.Code != ExitDaemonError {
		t.Errorf("Code = %d, want %d", target.Code, ExitDaemonError)
	}
}
