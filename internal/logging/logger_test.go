package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewForDirWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewForDir(dir, "info", "json")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("download complete", String("tile", "ST68NW"))

	data, err := os.ReadFile(filepath.Join(dir, "tilefetch.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, data)
	}
	if entry["msg"] != "download complete" {
		t.Fatalf("unexpected message: %v", entry)
	}
	if entry["tile"] != "ST68NW" {
		t.Fatalf("tile attr missing: %v", entry)
	}
}

func TestConsoleHandlerFormatsComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	NewComponentLogger(logger, "portal-driver").Info("tile listings matched", Int("links", 2))

	line := buf.String()
	if !strings.Contains(line, "portal-driver:") {
		t.Fatalf("console line missing component prefix: %q", line)
	}
	if !strings.Contains(line, "tile listings matched") {
		t.Fatalf("console line missing message: %q", line)
	}
	if !strings.Contains(line, "links=2") {
		t.Fatalf("console line missing attrs: %q", line)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("nop logger should be disabled at every level")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
