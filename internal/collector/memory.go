// RAM collector: physical and swap usage plus the module inventory.
// Uses gopsutil for usage and the platform layer for slot details.
package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

// MemoryCollector collects RAM metrics.
type MemoryCollector struct {
	host     platform.Host
	platform platform.Platform
	logger   *zap.Logger
}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector(h platform.Host, p platform.Platform, logger *zap.Logger) *MemoryCollector {
	return &MemoryCollector{host: h, platform: p, logger: nopIfNil(logger)}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return "ram" }

// IsAvailable returns true; memory metrics are available on all platforms.
func (c *MemoryCollector) IsAvailable() bool { return true }

// Collect gathers usage and slot inventory.
func (c *MemoryCollector) Collect(ctx context.Context) (interface{}, error) {
	info := models.RAMInfo{
		TotalPhysicalFormatted: models.FormatBytes(0),
		UsedPhysicalFormatted:  models.FormatBytes(0),
		MemoryType:             models.Unknown,
		MemorySpeed:            models.NotAvailable,
		TotalSlots:             models.NotAvailable,
		CASLatency:             models.NotAvailable,
		Modules:                []models.MemoryModule{},
	}

	if v, err := c.host.VirtualMemory(ctx); err == nil && v != nil {
		info.TotalPhysical = v.Total
		info.AvailablePhysical = v.Available
		info.FreePhysical = v.Free
		if v.Total > v.Available {
			info.UsedPhysical = v.Total - v.Available
		}
		info.Cached = v.Cached
		info.TotalPhysicalFormatted = models.FormatBytes(info.TotalPhysical)
		info.UsedPhysicalFormatted = models.FormatBytes(info.UsedPhysical)
		info.UsagePercentage = models.Percent(float64(info.UsedPhysical), float64(info.TotalPhysical))
	} else {
		sourceFailed(c.logger, "virtual memory", err)
	}

	if s, err := c.host.SwapMemory(ctx); err == nil && s != nil {
		info.SwapTotal = s.Total
		info.SwapUsed = s.Used
		info.SwapFree = s.Free
	} else {
		sourceFailed(c.logger, "swap memory", err)
	}

	layout, err := c.platform.MemoryLayout(ctx)
	if err != nil {
		sourceFailed(c.logger, "memory layout", err)
		return info, nil
	}
	applyLayout(&info, layout)
	return info, nil
}

// applyLayout copies the slot inventory. Type and speed describe the first
// populated module.
func applyLayout(info *models.RAMInfo, layout platform.MemoryLayout) {
	if layout.TotalSlots > 0 {
		info.TotalSlots = layout.TotalSlots
	}
	for _, m := range layout.Modules {
		info.Modules = append(info.Modules, models.MemoryModule{
			Slot:         models.OrUnknown(m.Slot),
			Manufacturer: models.OrUnknown(m.Manufacturer),
			PartNumber:   models.OrUnknown(m.PartNumber),
			SerialNumber: models.OrUnknown(m.SerialNumber),
			Capacity:     m.CapacityBytes,
			Speed:        speedOrUnknown(m.SpeedMHz),
			Type:         models.OrUnknown(m.Type),
			FormFactor:   models.OrUnknown(m.FormFactor),
		})
	}
	info.UsedSlots = len(info.Modules)
	if info.TotalSlots < 0 && info.UsedSlots > 0 {
		info.TotalSlots = info.UsedSlots
	}
	if len(info.Modules) > 0 {
		first := info.Modules[0]
		info.MemoryType = first.Type
		info.MemorySpeed = first.Speed
	}
}

func speedOrUnknown(mhz int) int {
	if mhz <= 0 {
		return models.NotAvailable
	}
	return mhz
}
