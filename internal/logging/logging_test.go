package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelInfo, "text", &buf)

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected 'test message' in output, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected 'key=value' in output, got: %s", output)
	}
}

func TestNewLoggerWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelInfo, "json", &buf)

	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, `"msg":"test message"`) {
		t.Errorf("expected JSON msg field in output, got: %s", output)
	}
	if !strings.Contains(output, `"key":"value"`) {
		t.Errorf("expected JSON key field in output, got: %s", output)
	}
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelWarn, "text", &buf)

	logger.Info("should not appear")
	logger.Warn("should appear")

	output := buf.String()
	if strings.Contains(output, "should not appear") {
		t.Errorf("INFO message should be filtered at WARN level, got: %s", output)
	}
	if !strings.Contains(output, "should appear") {
		t.Errorf("WARN message should appear at WARN level, got: %s", output)
	}
}

func TestNewLoggerWithWriter_ChildLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelDebug, "text", &buf)
	child := logger.With("component", "rowaction")

	child.Debug("row action", "collection", "schedules")

	output := buf.String()
	if !strings.Contains(output, "component=rowaction") {
		t.Errorf("expected component in output, got: %s", output)
	}
	if !strings.Contains(output, "collection=schedules") {
		t.Errorf("expected collection in output, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerWithWriter_TintFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelInfo, "tint", &buf)

	logger.Info("owner toggled", "id", "own_1")

	output := buf.String()
	if !strings.Contains(output, "owner toggled") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "id=own_1") {
		t.Errorf("expected attribute in output, got: %s", output)
	}
	if strings.Contains(output, "\x1b[") {
		t.Errorf("expected no color codes for non-terminal writer, got: %q", output)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Discard logger should not enable debug")
	}
}

func TestTintWithoutTerminalHasNoColor(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	defer f.Close()

	if isTerminal(f) {
		t.Fatal("regular file reported as terminal")
	}
	if isTerminal(&bytes.Buffer{}) {
		t.Fatal("buffer reported as terminal")
	}

	NewLoggerWithWriter(slog.LevelInfo, "tint", f).Info("plain message")
	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "plain message") {
		t.Errorf("expected message in output, got: %s", data)
	}
	if strings.Contains(string(data), "\x1b[") {
		t.Errorf("expected no ANSI escapes in file output, got: %q", data)
	}
}
