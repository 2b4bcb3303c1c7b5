// GPU collectors: display adapter inventory and utilization.
package collector

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
	"github.com/Guliveer/hwprobe/internal/sampler"
)

// busyTick is the period one fBusyCount unit corresponds to.
const busyTick = 100 * time.Millisecond

// GPUUsageCollector reports utilization of the primary GPU. Platforms that
// compute a percentage are passed through; cumulative busy counters are
// differenced against elapsed wall time.
type GPUUsageCollector struct {
	platform platform.Platform
	delta    *sampler.Delta
	warmup   time.Duration
	start    time.Time
	now      func() time.Time
	logger   *zap.Logger
}

// NewGPUUsageCollector creates a GPU usage collector.
func NewGPUUsageCollector(p platform.Platform, warmup time.Duration, logger *zap.Logger) *GPUUsageCollector {
	return &GPUUsageCollector{
		platform: p,
		delta:    sampler.New(),
		warmup:   warmup,
		start:    time.Now(),
		now:      time.Now,
		logger:   nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *GPUUsageCollector) Name() string { return "gpu-usage" }

// Collect returns the utilization percentage as a float64.
func (c *GPUUsageCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.Usage(ctx), nil
}

// IsAvailable returns true; platforms without a source report 0.
func (c *GPUUsageCollector) IsAvailable() bool { return true }

// Usage returns the GPU busy percentage in [0, 100].
func (c *GPUUsageCollector) Usage(ctx context.Context) float64 {
	var direct *float64
	pct := observeWithWarmup(ctx, c.delta, c.warmup, func() (sampler.Ticks, bool) {
		a, err := c.platform.GPUActivity(ctx)
		if err != nil {
			sourceFailed(c.logger, "gpu activity", err)
			return sampler.Ticks{}, false
		}
		if a.Direct {
			v := sampler.Clamp(a.Percent)
			direct = &v
			return sampler.Ticks{}, false
		}
		elapsed := c.now().Sub(c.start)
		return sampler.Ticks{
			Busy:  float64(a.BusyCount),
			Total: float64(elapsed) / float64(busyTick),
		}, true
	})
	if direct != nil {
		return *direct
	}
	return pct
}

// GPUCollector reports every display adapter.
type GPUCollector struct {
	platform platform.Platform
	usage    *GPUUsageCollector
	temps    *TemperatureCollector
	logger   *zap.Logger
}

// NewGPUCollector creates a GPU collector. usage and temps may be nil.
func NewGPUCollector(p platform.Platform, usage *GPUUsageCollector, temps *TemperatureCollector, logger *zap.Logger) *GPUCollector {
	return &GPUCollector{
		platform: p,
		usage:    usage,
		temps:    temps,
		logger:   nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *GPUCollector) Name() string { return "gpu" }

// IsAvailable returns true; an empty list is reported when no adapter is found.
func (c *GPUCollector) IsAvailable() bool { return true }

// Collect lists adapters. Temperature and usage describe the primary GPU
// and are attached to the first adapter only.
func (c *GPUCollector) Collect(ctx context.Context) (interface{}, error) {
	adapters, err := c.platform.GPUs(ctx)
	if err != nil {
		sourceFailed(c.logger, "gpus", err)
	}

	gpus := make([]models.GPUInfo, 0, len(adapters))
	for _, a := range adapters {
		gpus = append(gpus, gpuInfo(a))
	}
	if len(gpus) == 0 {
		return gpus, nil
	}

	if c.temps != nil {
		if t := c.temps.Read(ctx); t.GPUTemp != nil {
			gpus[0].Temperature = *t.GPUTemp
		}
	}
	if c.usage != nil {
		gpus[0].UsagePercentage = c.usage.Usage(ctx)
	}
	return gpus, nil
}

func gpuInfo(a platform.GPUAdapter) models.GPUInfo {
	vendor := a.Vendor
	if vendor == "" {
		vendor = platform.VendorName(a.VendorID)
	}
	g := models.GPUInfo{
		Name:              models.OrUnknown(a.Name),
		Vendor:            models.OrUnknown(vendor),
		VendorID:          a.VendorID,
		DeviceID:          a.DeviceID,
		VRAM:              a.VRAMBytes,
		VRAMFormatted:     models.FormatBytes(a.VRAMBytes),
		DriverVersion:     models.OrUnknown(a.DriverVersion),
		DriverDate:        models.OrUnknown(a.DriverDate),
		Bus:               models.OrUnknown(a.Bus),
		MetalSupport:      models.OrUnknown(a.Metal),
		Cores:             a.Cores,
		RefreshRate:       a.RefreshRate,
		CurrentResolution: models.OrUnknown(a.Resolution),
		Processor:         models.OrUnknown(a.Processor),
		Temperature:       models.NotAvailable,
	}
	g.IsIntegrated = isIntegrated(g)
	return g
}

// isIntegrated treats Apple and Intel adapters, and adapters on the
// built-in bus, as integrated.
func isIntegrated(g models.GPUInfo) bool {
	vendor := strings.ToLower(g.Vendor)
	bus := strings.ToLower(g.Bus)
	name := strings.ToLower(g.Name)
	switch {
	case strings.Contains(vendor, "apple"), strings.Contains(vendor, "intel"):
		return !strings.Contains(name, "arc")
	case strings.Contains(bus, "built-in"):
		return true
	case strings.Contains(name, "integrated"), strings.Contains(name, "radeon(tm) graphics"):
		return true
	default:
		return false
	}
}
