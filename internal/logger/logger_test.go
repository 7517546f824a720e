package logger

import (
	"bytes"
	"os"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	if buf.String() != "[DEBUG] test message arg\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info message")

	if buf.Len() > 0 {
		t.Error("expected no output when verbose is disabled")
	}
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Test Section")

	if buf.String() != "\n=== Test Section ===\n" {
		t.Errorf("unexpected section output: %q", buf.String())
	}
}

func TestInfo(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("info message %d", 42)

	if buf.String() != "[INFO] info message 42\n" {
		t.Errorf("unexpected info output: %q", buf.String())
	}
}

func TestWarn_DefaultLevel(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("warning message")

	if buf.String() != "[WARN] warning message\n" {
		t.Errorf("unexpected warn output: %q", buf.String())
	}
}

func TestError(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelError)

	Warn("hidden")
	Error("failed: %v", "boom")

	if buf.String() != "[ERROR] failed: boom\n" {
		t.Errorf("unexpected error output: %q", buf.String())
	}
}

func TestSetLevelFromString(t *testing.T) {
	defer reset()

	tests := []struct {
		in      string
		ok      bool
		verbose bool
	}{
		{"debug", true, true},
		{"INFO", true, false},
		{" warning ", true, false},
		{"error", true, false},
		{"loud", false, false},
	}

	for _, tt := range tests {
		SetVerbose(false)
		if got := SetLevelFromString(tt.in); got != tt.ok {
			t.Errorf("SetLevelFromString(%q) = %v, want %v", tt.in, got, tt.ok)
		}
		if IsVerbose() != tt.verbose {
			t.Errorf("SetLevelFromString(%q): verbose = %v, want %v", tt.in, IsVerbose(), tt.verbose)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
