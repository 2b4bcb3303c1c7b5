package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Guliveer/hwprobe/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(embeddedConfig)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hwprobe.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigShow_LayersFileOverEmbedded(t *testing.T) {
	path := writeConfig(t, "serve:\n  addr: \"127.0.0.1:9100\"\n")
	out, err := execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "127.0.0.1:9100") {
		t.Errorf("config show missing file override:\n%s", out)
	}
	if !strings.Contains(out, "archive_max_mb: 50") {
		t.Errorf("config show missing embedded value:\n%s", out)
	}
}

func TestConfigInit_WritesLoadableFile(t *testing.T) {
	src := writeConfig(t, "watch:\n  interval: 30s\n")
	dst := filepath.Join(t.TempDir(), "out", "config.yaml")

	if _, err := execute(t, "--config", src, "config", "init", dst); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(dst)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Watch.Interval.Seconds() != 30 {
		t.Errorf("written interval = %v, want 30s", cfg.Watch.Interval.Duration)
	}
}

func TestRoot_RejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "collection:\n  top_processes: -3\n")
	_, err := execute(t, "--config", path, "config", "show")
	if err == nil || !strings.Contains(err.Error(), "top_processes") {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestUsage_ValidatesMetric(t *testing.T) {
	path := writeConfig(t, "")
	if _, err := execute(t, "--config", path, "usage", "ram"); err == nil {
		t.Error("usage ram succeeded, want an argument error")
	}
	if _, err := execute(t, "--config", path, "usage"); err == nil {
		t.Error("usage without a metric succeeded")
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	a := &app{}
	if err := a.print(&buf, "ram", `{"totalPhysical":1024}`); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"totalPhysical\":1024}\n" {
		t.Errorf("plain print = %q", buf.String())
	}

	buf.Reset()
	a.pretty = true
	if err := a.print(&buf, "ram", `{"totalPhysical":1024}`); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "totalPhysical") || !strings.Contains(buf.String(), "1024") {
		t.Errorf("pretty print = %q", buf.String())
	}
}

func TestFormatScalar(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{37.5, "37.5"},
		{0, "0"},
		{-1, "-1"},
	}
	for _, tt := range tests {
		if got := formatScalar(tt.in); got != tt.want {
			t.Errorf("formatScalar(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
