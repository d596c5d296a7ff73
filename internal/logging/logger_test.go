package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", &buf)
	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message emitted at info level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("info message missing")
	}
}

func TestNewLoggerTraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(t.Context(), LevelTrace, "tick detail")
	if !strings.Contains(buf.String(), "TRACE") {
		t.Errorf("trace level not labeled: %q", buf.String())
	}
}

func TestNewTickLoggerInfoLevelIsNil(t *testing.T) {
	if tl := NewTickLogger(t.TempDir(), "info"); tl != nil {
		t.Error("NewTickLogger at info level should return nil")
	}
}

func TestNilTickLoggerIsSafe(t *testing.T) {
	var tl *TickLogger
	tl.Log(map[string]any{"tick": 1})
	tl.Close()
}

func TestTickLoggerWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	tl := NewTickLogger(dir, "debug")
	if tl == nil {
		t.Fatal("NewTickLogger returned nil at debug level")
	}
	defer tl.Close()

	tl.Log(map[string]any{"tick": 3, "mean_belief": 0.25})
	tl.Log(map[string]any{"tick": 4, "mean_belief": 0.31})
	tl.Close()

	f, err := os.Open(filepath.Join(dir, "ticks.jsonl"))
	if err != nil {
		t.Fatalf("open ticks.jsonl: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		var event map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("line %d not valid JSON: %v", lines, err)
		}
		if _, ok := event["time"]; !ok {
			t.Errorf("line %d missing time field", lines)
		}
		if _, ok := event["tick"]; !ok {
			t.Errorf("line %d missing tick field", lines)
		}
	}
	if lines != 2 {
		t.Errorf("got %d lines, want 2", lines)
	}
}
