package logging_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"talentd/internal/config"
	"talentd/internal/logging"
)

func TestConsoleOutputFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	scoped := logging.WithComponent(logger, "server")
	scoped.Info("request handled",
		logging.String("route", "/api/jobs"),
		logging.Int("status", 200),
	)
	scoped.Debug("suppressed at info level")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := strings.TrimSpace(string(content))
	if strings.Contains(line, "\n") {
		t.Fatalf("expected a single line, got %q", line)
	}
	if !strings.Contains(line, "INFO server: request handled") {
		t.Fatalf("component not promoted to prefix: %q", line)
	}
	if !strings.Contains(line, "route=/api/jobs") || !strings.Contains(line, "status=200") {
		t.Fatalf("missing attributes: %q", line)
	}
	if strings.Contains(line, "suppressed") {
		t.Fatalf("debug record leaked at info level: %q", line)
	}
}

func TestConsoleQuotesAwkwardValues(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("delivery failed", logging.Error(errors.New("gateway returned 502: bad gateway")))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `error="gateway returned 502: bad gateway"`) {
		t.Fatalf("error value not quoted: %q", content)
	}
}

func TestJSONOutputFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "log.json")
	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("stage updated", logging.Int64("application_id", 7))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, content)
	}
	if record["msg"] != "stage updated" || record["level"] != "info" {
		t.Fatalf("unexpected record %v", record)
	}
	if record["ts"] == nil {
		t.Fatal("expected ts field")
	}
	if record["application_id"] != float64(7) {
		t.Fatalf("unexpected application_id %v", record["application_id"])
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("daemon started")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "talentd.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "daemon started") {
		t.Fatalf("log file missing record: %q", content)
	}
}
