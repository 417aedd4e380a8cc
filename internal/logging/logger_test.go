package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/qrscan/internal/config"
	"github.com/five82/qrscan/internal/logging"
)

func TestNewFromConfigWritesJSONToStateDir(t *testing.T) {
	cfg := config.Default()
	cfg.StateDir = filepath.Join(t.TempDir(), "state")
	cfg.LogLevel = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "scan").Debug("frame skipped", logging.Int("width", 0))

	content, err := os.ReadFile(cfg.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var line map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, content)
	}
	if line["msg"] != "frame skipped" {
		t.Fatalf("msg = %v, want %q", line["msg"], "frame skipped")
	}
	if line["level"] != "debug" {
		t.Fatalf("level = %v, want debug", line["level"])
	}
	if line[logging.FieldComponent] != "scan" {
		t.Fatalf("component = %v, want scan", line[logging.FieldComponent])
	}
	if _, ok := line["ts"]; !ok {
		t.Fatalf("expected ts key in %v", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "hidden") {
		t.Fatalf("info line leaked through warn level: %q", content)
	}
	if !strings.Contains(string(content), "shown") {
		t.Fatalf("warn line missing: %q", content)
	}
}

func TestConsoleFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("camera acquired", logging.String("source", "webcam"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "source=webcam") {
		t.Fatalf("console output = %q, want key=value pairs", content)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "test")
	if logger.Enabled(t.Context(), 0) {
		t.Fatal("no-op logger should not be enabled")
	}
	logger.Error("ignored", logging.Error(nil))
}
