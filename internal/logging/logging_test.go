package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/hwprobe/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("collector", "battery"))
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "battery") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestNew_FileIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hwprobe.log")
	logger := New(config.LoggingConfig{Level: "debug", File: path}, nil)

	logger.Debug("probe", zap.Int("fields", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, data)
	}
	if entry["msg"] != "probe" {
		t.Errorf("msg = %v, want probe", entry["msg"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry has no time key")
	}
}

func TestNew_NoSinksIsNop(t *testing.T) {
	logger := New(config.LoggingConfig{Level: "info"}, nil)
	if logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected a no-op logger without sinks")
	}
}
