package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	embedded := []byte("logging:\n  level: \"warn\"\nserve:\n  addr: \"127.0.0.1:9000\"")
	t.Setenv("HWPROBE_LOG_LEVEL", "error")
	cli := CLIOverrides{LogLevel: "debug", ServeAddr: "127.0.0.1:9999"}

	cfg, err := LoadLayered(cli, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want CLI override", cfg.Logging.Level)
	}
	if cfg.Serve.Addr != "127.0.0.1:9999" {
		t.Errorf("Addr = %q, want CLI override", cfg.Serve.Addr)
	}
}

func TestLoadLayered_EnvOverridesEmbed(t *testing.T) {
	embedded := []byte("logging:\n  level: \"warn\"\ncollection:\n  top_processes: 5")
	t.Setenv("HWPROBE_LOG_LEVEL", "error")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Level = %q, want env override", cfg.Logging.Level)
	}
	if cfg.Collection.TopProcesses != 5 {
		t.Errorf("TopProcesses = %d, want embedded value", cfg.Collection.TopProcesses)
	}
}

func TestLoadLayered_FileOverridesEmbed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("sampling:\n  cpu_warmup: 2s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	embedded := []byte("sampling:\n  cpu_warmup: 100ms\n  gpu_warmup: 3s\n")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sampling.CPUWarmup.Duration != 2*time.Second {
		t.Errorf("CPUWarmup = %v, want file value 2s", cfg.Sampling.CPUWarmup.Duration)
	}
	if cfg.Sampling.GPUWarmup.Duration != 3*time.Second {
		t.Errorf("GPUWarmup = %v, want embedded value 3s", cfg.Sampling.GPUWarmup.Duration)
	}
}

func TestLoadLayered_DefaultsWhenEmpty(t *testing.T) {
	cfg, err := LoadLayered(CLIOverrides{}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Collection.Timeout.Duration.Seconds() != 10 {
		t.Errorf("Timeout = %v, want 10s default", cfg.Collection.Timeout.Duration)
	}
	if cfg.Battery.LowThreshold != 20 {
		t.Errorf("LowThreshold = %v, want 20", cfg.Battery.LowThreshold)
	}
	if cfg.Battery.Health.CycleScale != 500 {
		t.Errorf("Health.CycleScale = %v, want 500", cfg.Battery.Health.CycleScale)
	}
	if cfg.Collection.DiskPath != DefaultDiskPath() {
		t.Errorf("DiskPath = %q, want %q", cfg.Collection.DiskPath, DefaultDiskPath())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromBytes_HealthModel(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("battery:\n  health:\n    floor: 60\n    calibration: 1.0\n"))
	if err != nil {
		t.Fatal(err)
	}
	h := cfg.Battery.Health
	if h.Floor != 60 || h.Calibration != 1.0 {
		t.Errorf("health = %+v, want floor 60 calibration 1.0", h)
	}
	if h.CycleWeight != 0.12 {
		t.Errorf("CycleWeight = %v, want default 0.12 kept", h.CycleWeight)
	}
}

func TestLoadFromBytes_InvalidDuration(t *testing.T) {
	_, err := LoadFromBytes([]byte("watch:\n  interval: soon\n"))
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %v, want invalid duration", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("HWPROBE_LOG_FILE", "/tmp/hwprobe.log")
	t.Setenv("HWPROBE_SERVE_ADDR", "0.0.0.0:8080")
	t.Setenv("HWPROBE_TOP_PROCESSES", "25")

	cfg, err := LoadFromBytes(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.File != "/tmp/hwprobe.log" {
		t.Errorf("File = %q", cfg.Logging.File)
	}
	if cfg.Serve.Addr != "0.0.0.0:8080" {
		t.Errorf("Addr = %q", cfg.Serve.Addr)
	}
	if cfg.Collection.TopProcesses != 25 {
		t.Errorf("TopProcesses = %d, want 25", cfg.Collection.TopProcesses)
	}
}

func TestApplyEnvOverrides_IgnoresBadTopProcesses(t *testing.T) {
	t.Setenv("HWPROBE_TOP_PROCESSES", "lots")
	cfg, err := LoadFromBytes([]byte("collection:\n  top_processes: 7\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Collection.TopProcesses != 7 {
		t.Errorf("TopProcesses = %d, want file value 7", cfg.Collection.TopProcesses)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Serve.Addr != "127.0.0.1:8087" {
		t.Errorf("Addr = %q, want default", cfg.Serve.Addr)
	}
}

func TestLocate_EnvWins(t *testing.T) {
	t.Setenv("HWPROBE_CONFIG", "/custom/hwprobe.yaml")
	if got := Locate(); got != "/custom/hwprobe.yaml" {
		t.Errorf("Locate = %q, want env path", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
		{"zero timeout", func(c *Config) { c.Collection.Timeout = Duration{} }, "collection timeout"},
		{"negative top", func(c *Config) { c.Collection.TopProcesses = -1 }, "top_processes"},
		{"threshold", func(c *Config) { c.Battery.LowThreshold = 150 }, "low_threshold"},
		{"floor above ceiling", func(c *Config) { c.Battery.Health.Floor = 101 }, "health model"},
		{"block too big", func(c *Config) { c.DiskSpeed.SizeMB = 1; c.DiskSpeed.BlockKB = 4096 }, "block_kb"},
		{"fast watch", func(c *Config) { c.Watch.Interval = Duration{100 * time.Millisecond} }, "watch interval"},
		{"no addr", func(c *Config) { c.Serve.Addr = "" }, "serve address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestWriteConfig_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Serve.Addr = "127.0.0.1:7000"

	if err := WriteConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Serve.Addr != "127.0.0.1:7000" {
		t.Errorf("round-tripped Addr = %q", loaded.Serve.Addr)
	}
	if loaded.Watch.Interval.Duration != 15*time.Second {
		t.Errorf("round-tripped Interval = %v", loaded.Watch.Interval.Duration)
	}
}
