package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production", slog.LevelInfo)

	WithSession(log, "abc").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["session_id"] != "abc" {
		t.Errorf("expected session_id abc, got %v", entry["session_id"])
	}
}

func TestNew_DevelopmentWritesTextAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "development", slog.LevelWarn)

	log.Info("dropped")
	WithError(log, errors.New("boom")).Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "error=boom") {
		t.Errorf("expected warn line with error attr, got %q", out)
	}
}
