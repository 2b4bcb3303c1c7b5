// CPU collectors: the static processor description and the delta-based
// utilization reading. Uses gopsutil for the cross-platform facts and the
// platform layer for cache sizes, core topology and clocks.
package collector

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
	"github.com/Guliveer/hwprobe/internal/sampler"
)

// CPUUsageCollector reports overall CPU utilization from successive
// cpu.Times snapshots.
type CPUUsageCollector struct {
	host   platform.Host
	delta  *sampler.Delta
	warmup time.Duration
	logger *zap.Logger
}

// NewCPUUsageCollector creates a CPU usage collector. On the first call it
// waits warmup and samples again; a zero warmup returns 0 on the first call.
func NewCPUUsageCollector(host platform.Host, warmup time.Duration, logger *zap.Logger) *CPUUsageCollector {
	return &CPUUsageCollector{
		host:   host,
		delta:  sampler.New(),
		warmup: warmup,
		logger: nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *CPUUsageCollector) Name() string { return "cpu-usage" }

// Collect returns the utilization percentage as a float64.
func (c *CPUUsageCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.Usage(ctx), nil
}

// IsAvailable returns true; CPU times are available on all platforms.
func (c *CPUUsageCollector) IsAvailable() bool { return true }

// Usage returns the busy percentage since the previous call, in [0, 100].
func (c *CPUUsageCollector) Usage(ctx context.Context) float64 {
	return observeWithWarmup(ctx, c.delta, c.warmup, func() (sampler.Ticks, bool) {
		t, err := c.host.CPUTimes(ctx)
		if err != nil {
			sourceFailed(c.logger, "cpu times", err)
			return sampler.Ticks{}, false
		}
		return cpuTicks(t), true
	})
}

// cpuTicks folds cpu.Times into busy and total. Guest time is already part
// of user on Linux and is not added again.
func cpuTicks(t cpu.TimesStat) sampler.Ticks {
	busy := t.User + t.System + t.Nice + t.Irq + t.Softirq + t.Steal
	return sampler.Ticks{Busy: busy, Total: busy + t.Idle + t.Iowait}
}

// observeWithWarmup feeds read into d. When the sampler has no baseline the
// first reading only establishes one; then it waits warmup and reads again.
func observeWithWarmup(ctx context.Context, d *sampler.Delta, warmup time.Duration, read func() (sampler.Ticks, bool)) float64 {
	ticks, ok := read()
	if !ok {
		return 0
	}
	pct, sampled := d.Observe(ticks)
	if sampled || warmup <= 0 {
		return pct
	}

	timer := time.NewTimer(warmup)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0
	case <-timer.C:
	}

	ticks, ok = read()
	if !ok {
		return 0
	}
	pct, _ = d.Observe(ticks)
	return pct
}

// CPUCollector reports the processor description together with its current
// temperature and utilization.
type CPUCollector struct {
	host     platform.Host
	platform platform.Platform
	usage    *CPUUsageCollector
	temps    *TemperatureCollector
	logger   *zap.Logger
}

// NewCPUCollector creates a CPU collector. usage and temps may be nil, in
// which case the corresponding fields carry sentinels.
func NewCPUCollector(host platform.Host, p platform.Platform, usage *CPUUsageCollector, temps *TemperatureCollector, logger *zap.Logger) *CPUCollector {
	return &CPUCollector{
		host:     host,
		platform: p,
		usage:    usage,
		temps:    temps,
		logger:   nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return "cpu" }

// IsAvailable returns true; CPU metrics are available on all platforms.
func (c *CPUCollector) IsAvailable() bool { return true }

// Collect merges gopsutil's cpu.Info with the platform details.
func (c *CPUCollector) Collect(ctx context.Context) (interface{}, error) {
	infos, err := c.host.CPUInfo(ctx)
	if err != nil {
		sourceFailed(c.logger, "cpu info", err)
	}
	details, err := c.platform.CPUDetails(ctx)
	if err != nil {
		sourceFailed(c.logger, "cpu details", err)
	}

	info := cpuInfo(infos, details)

	if info.PhysicalCores < 0 {
		if n, err := c.host.CPUCounts(ctx, false); err == nil && n > 0 {
			info.PhysicalCores = n
		}
	}
	if info.LogicalCores < 0 {
		if n, err := c.host.CPUCounts(ctx, true); err == nil && n > 0 {
			info.LogicalCores = n
		}
	}
	info.HyperThreading = info.PhysicalCores > 0 && info.LogicalCores > info.PhysicalCores

	if c.temps != nil {
		if t := c.temps.Read(ctx); t.CPUTemp != nil {
			info.Temperature = *t.CPUTemp
		}
	}
	if c.usage != nil {
		info.UsagePercentage = c.usage.Usage(ctx)
	}
	return info, nil
}

// cpuInfo merges both sources. Platform details win where set; gopsutil
// fills the rest.
func cpuInfo(infos []cpu.InfoStat, d platform.CPUDetails) models.CPUInfo {
	info := models.CPUInfo{
		Name:              models.OrUnknown(d.Name),
		Vendor:            models.OrUnknown(d.Vendor),
		Architecture:      models.OrUnknown(d.Architecture),
		Socket:            models.OrUnknown(d.Socket),
		PhysicalCores:     d.PhysicalCores,
		LogicalCores:      d.LogicalCores,
		PerformanceCores:  d.PerformanceCores,
		EfficiencyCores:   d.EfficiencyCores,
		BaseClockSpeed:    d.BaseClockMHz,
		MaxClockSpeed:     d.MaxClockMHz,
		CurrentClockSpeed: d.CurrentClockMHz,
		L1CacheSize:       d.L1Cache,
		L2CacheSize:       d.L2Cache,
		L3CacheSize:       d.L3Cache,
		Features:          []string{},
		Temperature:       models.NotAvailable,
	}
	if info.Architecture == models.Unknown {
		info.Architecture = goarchName(runtime.GOARCH)
	}

	if len(infos) > 0 {
		first := infos[0]
		if info.Name == models.Unknown {
			info.Name = models.OrUnknown(first.ModelName)
		}
		if info.Vendor == models.Unknown {
			info.Vendor = models.OrUnknown(vendorFromCPUID(first.VendorID))
		}
		if info.BaseClockSpeed <= 0 && first.Mhz > 0 {
			info.BaseClockSpeed = first.Mhz
		}
		if info.L2CacheSize == 0 && first.CacheSize > 0 {
			// gopsutil reports the cache size in KiB.
			info.L2CacheSize = uint64(first.CacheSize) * 1024
		}
		if len(first.Flags) > 0 {
			info.Features = append(info.Features, first.Flags...)
		}
	}
	if info.MaxClockSpeed <= 0 {
		info.MaxClockSpeed = info.BaseClockSpeed
	}
	if info.CurrentClockSpeed <= 0 {
		info.CurrentClockSpeed = info.BaseClockSpeed
	}
	return info
}

var cpuidVendors = map[string]string{
	"GenuineIntel": "Intel",
	"AuthenticAMD": "AMD",
	"Apple":        "Apple",
}

func vendorFromCPUID(id string) string {
	if v, ok := cpuidVendors[strings.TrimSpace(id)]; ok {
		return v
	}
	return id
}

func goarchName(arch string) string {
	switch arch {
	case "amd64":
		return "x86_64"
	case "386":
		return "x86"
	default:
		return arch
	}
}
