// Package report turns collector results into JSON documents. Every document
// parses as JSON: a failed marshal or an unknown report name yields an
// {"error": "..."} object instead.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/collector"
	"github.com/Guliveer/hwprobe/internal/config"
	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
	"github.com/Guliveer/hwprobe/internal/shell"
)

// snapshotReports are the collectors that make up a Snapshot. The disk
// benchmark, app inventory and per-path reports are left out because they
// are slow or need an argument.
var snapshotReports = []string{
	"battery", "cpu", "gpu", "disks", "ram", "os",
	"processes", "fans", "network", "temperature",
}

// Service owns one instance of every collector so delta-based readings keep
// their baseline between calls.
type Service struct {
	reports  *collector.Registry
	snapshot *collector.Registry
	timeout  time.Duration
	logger   *zap.Logger

	cpuUsage  *collector.CPUUsageCollector
	gpuUsage  *collector.GPUUsageCollector
	fans      *collector.FanCollector
	diskUsage *collector.DiskUsageCollector
	volume    *collector.VolumeCollector
	diskSpeed *collector.DiskSpeedCollector
}

// New creates a Service reading the running system.
func New(cfg *config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	run := shell.New(cfg.Collection.CommandTimeout.Duration, logger.Named("shell"))
	return NewWithSources(cfg, platform.NewHost(), platform.New(run, logger.Named("platform")), logger)
}

// NewWithSources creates a Service on top of the given sources.
func NewWithSources(cfg *config.Config, h platform.Host, p platform.Platform, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	clog := logger.Named("collector")

	s := &Service{
		reports:  collector.NewRegistry(clog),
		snapshot: collector.NewRegistry(clog),
		timeout:  cfg.Collection.Timeout.Duration,
		logger:   logger,
	}

	temps := collector.NewTemperatureCollector(h, p, clog)
	s.cpuUsage = collector.NewCPUUsageCollector(h, cfg.Sampling.CPUWarmup.Duration, clog)
	s.gpuUsage = collector.NewGPUUsageCollector(p, cfg.Sampling.GPUWarmup.Duration, clog)
	s.fans = collector.NewFanCollector(p, clog)
	s.diskUsage = collector.NewDiskUsageCollector(h, cfg.Collection.DiskPath, clog)
	s.volume = collector.NewVolumeCollector(p, cfg.Collection.DiskPath, clog)
	s.diskSpeed = collector.NewDiskSpeedCollector(cfg.DiskSpeed.Dir, cfg.DiskSpeed.SizeMB, cfg.DiskSpeed.BlockKB, clog)

	all := []collector.Collector{
		collector.NewBatteryCollector(p, cfg.Battery.Health, cfg.Battery.LowThreshold, clog),
		collector.NewCPUCollector(h, p, s.cpuUsage, temps, clog),
		s.cpuUsage,
		collector.NewGPUCollector(p, s.gpuUsage, temps, clog),
		s.gpuUsage,
		s.diskUsage,
		collector.NewDiskCollector(h, p, cfg.Sampling.DiskIOInterval.Duration, cfg.Collection.DiskPath, clog),
		s.volume,
		s.diskSpeed,
		collector.NewMemoryCollector(h, p, clog),
		collector.NewOSInfoCollector(h, p, clog),
		collector.NewProcessCollector(h, p, cfg.Collection.TopProcesses, clog),
		collector.NewAppsCollector(p, clog),
		s.fans,
		collector.NewNetworkCollector(h, clog),
		temps,
	}
	for _, c := range all {
		s.reports.Register(c)
	}
	for _, name := range snapshotReports {
		if c, ok := s.reports.Get(name); ok {
			s.snapshot.Register(c)
		}
	}
	return s
}

// Names returns every report name in sorted order.
func (s *Service) Names() []string {
	return s.reports.Names()
}

// Has reports whether name is a known report.
func (s *Service) Has(name string) bool {
	_, ok := s.reports.Get(name)
	return ok
}

// JSON runs the named report and returns its document.
func (s *Service) JSON(ctx context.Context, name string) string {
	c, ok := s.reports.Get(name)
	if !ok {
		return ErrorJSON(fmt.Sprintf("unknown report %q", name))
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, err := c.Collect(ctx)
	if err != nil {
		s.logger.Warn("Report failed", zap.String("report", name), zap.Error(err))
		return ErrorJSON(err.Error())
	}
	return s.marshal(name, data)
}

// DiskUsage reports capacity of the volume holding path. An empty path
// selects the configured default.
func (s *Service) DiskUsage(ctx context.Context, path string) string {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.marshal("disk", s.diskUsage.Usage(ctx, path))
}

// Volume reports the file system inventory of the volume holding path.
func (s *Service) Volume(ctx context.Context, path string) string {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.marshal("volume", s.volume.Details(ctx, path))
}

// DiskSpeed benchmarks sequential throughput in path.
func (s *Service) DiskSpeed(ctx context.Context, path string) string {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.marshal("disk-speed", s.diskSpeed.Measure(ctx, path))
}

// CPUUsage returns overall CPU utilization in [0, 100].
func (s *Service) CPUUsage(ctx context.Context) float64 {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.cpuUsage.Usage(ctx)
}

// GPUUsage returns primary GPU utilization in [0, 100].
func (s *Service) GPUUsage(ctx context.Context) float64 {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.gpuUsage.Usage(ctx)
}

// FanSpeed returns the first fan's RPM, or -1.
func (s *Service) FanSpeed(ctx context.Context) float64 {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.fans.Speed(ctx)
}

// Snapshot collects the snapshot reports concurrently and assembles them.
func (s *Service) Snapshot(ctx context.Context) models.Snapshot {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	results := s.snapshot.CollectAll(ctx)
	snap := Assemble(results)
	snap.Timestamp = time.Now().UTC()
	return snap
}

// SnapshotJSON returns Snapshot as a document.
func (s *Service) SnapshotJSON(ctx context.Context) string {
	return s.marshal("snapshot", s.Snapshot(ctx))
}

// Assemble maps collector results into a Snapshot. Missing or mistyped
// entries leave the zero value; slices are never nil.
func Assemble(results map[string]interface{}) models.Snapshot {
	snap := models.Snapshot{
		GPUs:      []models.GPUInfo{},
		Disks:     []models.PhysicalDisk{},
		Processes: []models.ProcessInfo{},
		Fans:      []models.FanInfo{},
	}

	if b, ok := results["battery"].(models.BatteryInfo); ok {
		snap.Battery = &b
	}
	if c, ok := results["cpu"].(models.CPUInfo); ok {
		snap.CPU = &c
		snap.CPUUsage = c.UsagePercentage
	}
	if gpus, ok := results["gpu"].([]models.GPUInfo); ok {
		snap.GPUs = gpus
		if len(gpus) > 0 {
			snap.GPUUsage = gpus[0].UsagePercentage
		}
	}
	if disks, ok := results["disks"].([]models.PhysicalDisk); ok {
		snap.Disks = disks
	}
	if r, ok := results["ram"].(models.RAMInfo); ok {
		snap.RAM = &r
	}
	if o, ok := results["os"].(models.OSInfo); ok {
		snap.OS = &o
	}
	if procs, ok := results["processes"].([]models.ProcessInfo); ok {
		snap.Processes = procs
	}
	if fans, ok := results["fans"].([]models.FanInfo); ok {
		snap.Fans = fans
	}
	if n, ok := results["network"].(models.NetworkInfo); ok {
		snap.Network = &n
	}
	if t, ok := results["temperature"].(models.Temperature); ok {
		snap.Temperature = &t
	}
	return snap
}

// ErrorJSON returns {"error": msg}.
func ErrorJSON(msg string) string {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return string(data)
}

func (s *Service) marshal(name string, v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode report", zap.String("report", name), zap.Error(err))
		return ErrorJSON(fmt.Sprintf("encoding %s: %v", name, err))
	}
	return string(data)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
