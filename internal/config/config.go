// Package config loads hwprobe settings from YAML, HWPROBE_* environment
// variables and command-line overrides.
// Configuration precedence: CLI flags > environment variables > config file > embedded > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Guliveer/hwprobe/internal/health"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "500ms", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all hwprobe configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Collection CollectionConfig `yaml:"collection"`
	Sampling   SamplingConfig   `yaml:"sampling"`
	Battery    BatteryConfig    `yaml:"battery"`
	DiskSpeed  DiskSpeedConfig  `yaml:"disk_speed"`
	Watch      WatchConfig      `yaml:"watch"`
	Serve      ServeConfig      `yaml:"serve"`
}

// LoggingConfig holds logging settings. An empty File disables the file core.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// CollectionConfig bounds each report.
type CollectionConfig struct {
	// Timeout applies to a whole report call.
	Timeout Duration `yaml:"timeout"`
	// CommandTimeout applies to each spawned OS utility.
	CommandTimeout Duration `yaml:"command_timeout"`
	// TopProcesses limits the process list; 0 returns every process.
	TopProcesses int `yaml:"top_processes"`
	// DiskPath is used when a disk report is called with an empty path.
	DiskPath string `yaml:"disk_path"`
}

// SamplingConfig holds the intervals of delta-based readings.
type SamplingConfig struct {
	CPUWarmup      Duration `yaml:"cpu_warmup"`
	GPUWarmup      Duration `yaml:"gpu_warmup"`
	DiskIOInterval Duration `yaml:"disk_io_interval"`
}

// BatteryConfig holds the low-battery threshold and the health curve.
type BatteryConfig struct {
	LowThreshold float64      `yaml:"low_threshold"`
	Health       health.Model `yaml:"health"`
}

// DiskSpeedConfig sizes the sequential benchmark.
type DiskSpeedConfig struct {
	SizeMB  int    `yaml:"size_mb"`
	BlockKB int    `yaml:"block_kb"`
	Dir     string `yaml:"dir"`
}

// WatchConfig holds the periodic snapshot settings.
type WatchConfig struct {
	Interval     Duration `yaml:"interval"`
	ArchiveDir   string   `yaml:"archive_dir"`
	ArchiveMaxMB int      `yaml:"archive_max_mb"`
}

// ServeConfig holds the local HTTP API settings.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultDiskPath is the root volume of the running OS.
func DefaultDiskPath() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Collection: CollectionConfig{
			Timeout:        Duration{10 * time.Second},
			CommandTimeout: Duration{5 * time.Second},
			TopProcesses:   0,
			DiskPath:       DefaultDiskPath(),
		},
		Sampling: SamplingConfig{
			CPUWarmup:      Duration{500 * time.Millisecond},
			GPUWarmup:      Duration{1 * time.Second},
			DiskIOInterval: Duration{500 * time.Millisecond},
		},
		Battery: BatteryConfig{
			LowThreshold: 20,
			Health:       health.DefaultModel(),
		},
		DiskSpeed: DiskSpeedConfig{
			SizeMB:  64,
			BlockKB: 1024,
		},
		Watch: WatchConfig{
			Interval:     Duration{15 * time.Second},
			ArchiveDir:   "./snapshots",
			ArchiveMaxMB: 50,
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8087",
		},
	}
}

// LoadFromBytes overlays data on the defaults, then applies HWPROBE_*
// environment overrides.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load is LoadFromBytes on the contents of path. A missing file or an empty
// path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// CLIOverrides carries flag values that win over every other layer.
// Zero values are ignored.
type CLIOverrides struct {
	LogLevel  string
	ServeAddr string
}

// Locate returns the config file named by HWPROBE_CONFIG, or the first
// existing file on the standard search paths. Returns empty string if none
// exists.
func Locate() string {
	if p := os.Getenv("HWPROBE_CONFIG"); p != "" {
		return p
	}
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.ServeAddr != "" {
		cfg.Serve.Addr = cli.ServeAddr
	}

	return cfg, nil
}

// WriteConfig writes cfg as YAML, creating parent directories.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides reads the HWPROBE_* variables.
// A malformed HWPROBE_TOP_PROCESSES is ignored.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("HWPROBE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if file := os.Getenv("HWPROBE_LOG_FILE"); file != "" {
		cfg.Logging.File = file
	}
	if addr := os.Getenv("HWPROBE_SERVE_ADDR"); addr != "" {
		cfg.Serve.Addr = addr
	}
	if top := os.Getenv("HWPROBE_TOP_PROCESSES"); top != "" {
		if n, err := strconv.Atoi(top); err == nil && n >= 0 {
			cfg.Collection.TopProcesses = n
		}
	}
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	if c.Collection.Timeout.Duration <= 0 {
		return fmt.Errorf("collection timeout must be positive")
	}
	if c.Collection.CommandTimeout.Duration <= 0 {
		return fmt.Errorf("command timeout must be positive")
	}
	if c.Collection.TopProcesses < 0 {
		return fmt.Errorf("top_processes must not be negative (got %d)", c.Collection.TopProcesses)
	}
	if c.Sampling.CPUWarmup.Duration < 0 || c.Sampling.GPUWarmup.Duration < 0 || c.Sampling.DiskIOInterval.Duration < 0 {
		return fmt.Errorf("sampling intervals must not be negative")
	}
	if c.Battery.LowThreshold < 0 || c.Battery.LowThreshold > 100 {
		return fmt.Errorf("battery low_threshold must be within 0-100 (got %v)", c.Battery.LowThreshold)
	}
	if h := c.Battery.Health; h.Floor > h.Ceiling || h.CycleScale <= 0 {
		return fmt.Errorf("battery health model is inconsistent (floor %v, ceiling %v, cycle_scale %v)",
			h.Floor, h.Ceiling, h.CycleScale)
	}
	if c.DiskSpeed.SizeMB <= 0 || c.DiskSpeed.BlockKB <= 0 {
		return fmt.Errorf("disk_speed size_mb and block_kb must be positive")
	}
	if c.DiskSpeed.BlockKB > c.DiskSpeed.SizeMB*1024 {
		return fmt.Errorf("disk_speed block_kb exceeds size_mb")
	}
	if c.Watch.Interval.Duration < time.Second {
		return fmt.Errorf("watch interval must be at least 1s (got %s)", c.Watch.Interval.Duration)
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve address is required")
	}
	return nil
}
