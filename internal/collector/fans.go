// Fan collector: cooling fan inventory and the primary fan speed.
package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

// placeholderFan is reported when the platform lists no fans.
var placeholderFan = models.FanInfo{
	Name:     "System Fan",
	MaxSpeed: 100,
	Location: "System",
}

// FanCollector collects fan readings from the platform.
type FanCollector struct {
	platform platform.Platform
	logger   *zap.Logger
}

// NewFanCollector creates a fan collector.
func NewFanCollector(p platform.Platform, logger *zap.Logger) *FanCollector {
	return &FanCollector{platform: p, logger: nopIfNil(logger)}
}

// Name returns the collector identifier.
func (c *FanCollector) Name() string { return "fans" }

// IsAvailable returns true; the placeholder is reported without sensors.
func (c *FanCollector) IsAvailable() bool { return true }

// Collect returns at least one fan.
func (c *FanCollector) Collect(ctx context.Context) (interface{}, error) {
	fans := c.read(ctx)
	if len(fans) == 0 {
		return []models.FanInfo{placeholderFan}, nil
	}
	return fans, nil
}

// Speed returns the RPM of the first reported fan, or -1 when none is
// reported. The placeholder does not count.
func (c *FanCollector) Speed(ctx context.Context) float64 {
	fans := c.read(ctx)
	if len(fans) == 0 || fans[0].CurrentSpeed < 0 {
		return models.NotAvailable
	}
	return float64(fans[0].CurrentSpeed)
}

func (c *FanCollector) read(ctx context.Context) []models.FanInfo {
	raw, err := c.platform.Fans(ctx)
	if err != nil {
		sourceFailed(c.logger, "fans", err)
		return nil
	}
	fans := make([]models.FanInfo, 0, len(raw))
	for _, f := range raw {
		fans = append(fans, fanInfo(f))
	}
	return fans
}

func fanInfo(f platform.Fan) models.FanInfo {
	info := models.FanInfo{
		Name:               models.OrUnknown(f.Name),
		CurrentSpeed:       f.RPM,
		MaxSpeed:           f.MaxRPM,
		Location:           models.OrUnknown(f.Location),
		IsControlAvailable: f.Controllable,
	}
	if f.RPM >= 0 && f.MaxRPM > 0 {
		info.Percentage = models.Percent(float64(f.RPM), float64(f.MaxRPM))
		if info.Percentage > 100 {
			info.Percentage = 100
		}
	}
	return info
}
