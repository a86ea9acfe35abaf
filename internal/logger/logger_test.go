package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// productionToFile builds the production logger writing to a temp file
func productionToFile(t *testing.T, level string) (*zap.Logger, string) {
	t.Helper()
	config, err := newConfig("production", level)
	if err != nil {
		t.Fatalf("Failed to build config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "app.log")
	config.OutputPaths = []string{path}

	logger, err := build(config)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return logger, path
}

func readEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var entry map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Log line is not JSON: %q", scanner.Text())
		}
		entries = append(entries, entry)
	}
	return entries
}

// Feature: shoe-store, Property: production logs are structured JSON
func TestProperty_ProductionLogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every entry carries level, timestamp, message and service", prop.ForAll(
		func(message, orderID string) bool {
			logger, path := productionToFile(t, "debug")
			logger.Info(message, zap.String("order_id", orderID))
			logger.Sync()

			entries := readEntries(t, path)
			if len(entries) != 1 {
				return false
			}
			entry := entries[0]
			if entry["level"] != "info" || entry["msg"] != message {
				return false
			}
			if _, ok := entry["timestamp"]; !ok {
				return false
			}
			return entry["service"] == ServiceName && entry["order_id"] == orderID
		},
		gen.AlphaString(),
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductionErrorsIncludeStacktrace(t *testing.T) {
	logger, path := productionToFile(t, "")
	logger.Warn("low stock", zap.Int("stock", 2))
	logger.Error("failed to place order", zap.String("error", "tx aborted"))
	logger.Sync()

	entries := readEntries(t, path)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if _, ok := entries[0]["stacktrace"]; ok {
		t.Error("warn entries should not carry a stacktrace")
	}
	if _, ok := entries[1]["stacktrace"]; !ok {
		t.Error("error entries should carry a stacktrace")
	}
	if entries[1]["error"] != "tx aborted" {
		t.Errorf("error field lost: %v", entries[1]["error"])
	}
}

func TestNew_Levels(t *testing.T) {
	logger, err := New("production", "warn")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled at warn level")
	}

	dev, err := New("development", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if !dev.Core().Enabled(zapcore.DebugLevel) {
		t.Error("development logger should default to debug")
	}

	prod, err := New("production", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if prod.Core().Enabled(zapcore.DebugLevel) {
		t.Error("production logger should default to info")
	}

	if _, err := New("production", "loud"); err == nil {
		t.Error("unknown level should be rejected")
	}
}

func TestNewConfig_Encoding(t *testing.T) {
	prod, _ := newConfig("production", "")
	if prod.Encoding != "json" {
		t.Errorf("production encoding = %q, want json", prod.Encoding)
	}
	dev, _ := newConfig("staging", "")
	if dev.Encoding != "console" {
		t.Errorf("non-production encoding = %q, want console", dev.Encoding)
	}
	if len(dev.OutputPaths) != 1 || dev.OutputPaths[0] != "stdout" {
		t.Errorf("output paths = %v, want stdout", dev.OutputPaths)
	}
}

func TestNewWithDefaults_FallsBackOnBadLevel(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("LOG_LEVEL", "loud")

	if NewWithDefaults() == nil {
		t.Fatal("Logger should not be nil")
	}
}
