package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetup_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup(false, false, &buf)

	Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected 'test message' in output, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Expected 'key=value' in text output, got: %s", output)
	}
}

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Setup(false, true, &buf)

	Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, `"msg":"test message"`) {
		t.Errorf("Expected JSON msg field, got: %s", output)
	}
}

func TestSetup_Verbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"verbose", true, true},
		{"quiet", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Setup(tt.verbose, false, &buf)

			if Verbose != tt.verbose {
				t.Errorf("Verbose = %v, want %v", Verbose, tt.verbose)
			}

			Debug("debug message")
			got := strings.Contains(buf.String(), "debug message")
			if got != tt.wantDebug {
				t.Errorf("debug message present = %v, want %v (output: %s)", got, tt.wantDebug, buf.String())
			}
		})
	}
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	Setup(false, false, &buf)

	Warn("warn test")
	Error("error test")

	output := buf.String()
	for _, want := range []string{"level=WARN", "warn test", "level=ERROR", "error test"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %s", want, output)
		}
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	Setup(false, false, &buf)

	logger := With("handle", "abc123")
	logger.Info("with test")

	output := buf.String()
	if !strings.Contains(output, "handle=abc123") {
		t.Errorf("Expected 'handle=abc123' in output, got: %s", output)
	}
}

func TestSetup_NilWriter(t *testing.T) {
	if Setup(false, false, nil) == nil {
		t.Error("Setup should return a logger even with a nil writer")
	}
}

func TestUserOutput(t *testing.T) {
	var buf bytes.Buffer
	orig := UserOut
	UserOut = &buf
	defer func() { UserOut = orig }()

	UserInfo("info %d", 1)
	UserSuccess("done %s", "abc")
	UserWarning("careful")
	UserError("failed: %v", "boom")

	output := buf.String()
	for _, want := range []string{"ℹ info 1", "✓ done abc", "⚠ careful", "✗ failed: boom"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %s", want, output)
		}
	}
}
