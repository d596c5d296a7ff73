// Package logging provides the two log surfaces of a simulation run: a
// leveled slog.Logger for operational messages, and a TickLogger that
// appends one JSONL event per tick when full tracing is requested.
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace sits below Debug and enables the per-tick event stream. Runs
// of hundreds of ticks produce one event each, so the level is opt-in.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps "info", "debug", or "trace" (case-insensitive) to its
// slog.Level. Anything else is treated as info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// slog has no name for levels below Debug; print ours.
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// TickLogger appends per-tick events to a JSONL file. The simulation calls
// it unconditionally from its stats pass, so a nil TickLogger must be valid:
// every method no-ops on a nil receiver, and nothing touches the filesystem
// unless tracing is on.
type TickLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewTickLogger opens dir/ticks.jsonl for append when the level is debug or
// trace. At info (the default) it returns nil, as it does when the file
// cannot be opened: tracing is best-effort and never fails a run.
func NewTickLogger(dir string, level string) *TickLogger {
	lvl := ParseLevel(level)
	if lvl == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, "ticks.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &TickLogger{file: f}
}

// Log appends one event as a JSONL line, stamping a "time" field. The
// event map is copied, not mutated.
func (tl *TickLogger) Log(event map[string]any) {
	if tl == nil || tl.file == nil {
		return
	}

	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	tl.mu.Lock()
	defer tl.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = tl.file.Write(data)
}

// Close closes the underlying file.
func (tl *TickLogger) Close() {
	if tl == nil || tl.file == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	tl.file.Close()
	tl.file = nil
}
