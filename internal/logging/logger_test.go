package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "storyreel.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerPrefixesComponent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "render").Info("job submitted", logging.String("render_id", "abc 123"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO render: job submitted") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, `render_id="abc 123"`) {
		t.Fatalf("expected quoted attribute, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", line)
	}
}

func TestJSONLoggerRenamesKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("poll timed out", logging.Int("attempt", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(content, &payload); err != nil {
		t.Fatalf("decode json log line: %v (%q)", err, content)
	}
	if payload["msg"] != "poll timed out" || payload["level"] != "warn" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestContextFields(t *testing.T) {
	ctx := services.WithJobID(context.Background(), 42)
	ctx = services.WithRenderID(ctx, "r-1")
	ctx = services.WithRequestID(ctx, "req-1")

	fields := logging.ContextFields(ctx)
	got := map[string]string{}
	for _, f := range fields {
		got[f.Key] = f.Value.String()
	}
	if got[logging.FieldJobID] != "42" || got[logging.FieldRenderID] != "r-1" || got[logging.FieldCorrelationID] != "req-1" {
		t.Fatalf("unexpected context fields: %#v", got)
	}
}

func TestConsoleLoggerGroupsAndInnermostComponent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Level: "WARNING", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	daemonLogger := logging.NewComponentLogger(logger, "daemon")
	renderLogger := logging.NewComponentLogger(daemonLogger, "render").WithGroup("poll").With(logging.Int("attempt", 2))
	renderLogger.Info("below threshold")
	renderLogger.Warn("poll timed out", logging.Duration("interval", 3*time.Second), logging.Error(errors.New("still rendering")))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := strings.TrimSpace(string(content))
	if strings.Contains(line, "below threshold") {
		t.Fatalf("info line written at warn level: %q", line)
	}
	want := `WARN render: poll timed out poll.attempt=2 poll.interval=3s poll.error="still rendering"`
	if !strings.HasSuffix(line, want) {
		t.Fatalf("got %q, want suffix %q", line, want)
	}
	if strings.Contains(line, "daemon") {
		t.Fatalf("outer component leaked into line: %q", line)
	}
}
