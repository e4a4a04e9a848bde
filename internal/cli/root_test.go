package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestInstallLogger_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	installLogger(&buf, slog.LevelInfo, "json")

	slog.Debug("hidden")
	slog.Info("Refresh cycle complete", "cycle", "abc")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "Refresh cycle complete" || line["cycle"] != "abc" {
		t.Errorf("Unexpected log line: %v", line)
	}
}

func TestInstallLogger_TextKeepsTint(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	installLogger(&bytes.Buffer{}, slog.LevelInfo, "text")

	if _, ok := slog.Default().Handler().(*slog.JSONHandler); ok {
		t.Error("text format must not install the JSON handler")
	}
}
