// Battery collector: reports charge state, capacities and estimated health
// of the primary battery.
package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/health"
	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

// Battery status values.
const (
	StatusCharging    = "Charging"
	StatusFull        = "Fully Charged"
	StatusDischarging = "Discharging"
	StatusNoBattery   = "No Battery"
	StatusUnknown     = models.Unknown
)

const defaultLowBattery = 20.0

// BatteryCollector collects battery state from the platform.
type BatteryCollector struct {
	platform     platform.Platform
	model        health.Model
	lowThreshold float64
	logger       *zap.Logger
}

// NewBatteryCollector creates a battery collector. lowThreshold is the
// percentage under which isLowBattery is set; a non-positive value uses 20.
func NewBatteryCollector(p platform.Platform, model health.Model, lowThreshold float64, logger *zap.Logger) *BatteryCollector {
	if lowThreshold <= 0 {
		lowThreshold = defaultLowBattery
	}
	return &BatteryCollector{
		platform:     p,
		model:        model,
		lowThreshold: lowThreshold,
		logger:       nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *BatteryCollector) Name() string { return "battery" }

// Collect reads the battery and derives status and health.
func (c *BatteryCollector) Collect(ctx context.Context) (interface{}, error) {
	r, err := c.platform.Battery(ctx)
	if err != nil {
		sourceFailed(c.logger, "battery", err)
	}
	return batteryInfo(r, c.model, c.lowThreshold), nil
}

// IsAvailable returns true; desktops report isPresent false.
func (c *BatteryCollector) IsAvailable() bool { return true }

// batteryInfo maps a raw reading to the public record.
func batteryInfo(r platform.BatteryReading, model health.Model, lowThreshold float64) models.BatteryInfo {
	info := models.BatteryInfo{
		IsPresent:          r.Present,
		Name:               models.OrUnknown(r.Name),
		Manufacturer:       models.OrUnknown(r.Manufacturer),
		SerialNumber:       models.OrUnknown(r.SerialNumber),
		Chemistry:          models.OrUnknown(r.Chemistry),
		Status:             batteryStatus(r),
		IsCharging:         r.Present && r.Charging,
		IsACConnected:      r.ExternalConnected,
		Percentage:         -1,
		DesignCapacity:     r.DesignCapacity,
		MaxCapacity:        r.MaxCapacity,
		CurrentCapacity:    r.CurrentCapacity,
		CapacityUnit:       models.OrUnknown(r.CapacityUnit),
		CycleCount:         r.CycleCount,
		Voltage:            r.VoltageMV,
		Temperature:        r.TemperatureC,
		ChargeRate:         r.ChargeRateMW,
		DischargeRate:      r.DischargeRateMW,
		HealthPercentage:   -1,
		Health:             health.Unknown,
		TimeRemaining:      r.TimeRemaining,
		TimeToFullCharge:   r.TimeToFull,
		AdapterWatts:       r.AdapterWatts,
		LastFullChargeTime: models.OrUnknown(r.LastFullCharge),
	}
	if !r.Present {
		return info
	}

	switch {
	case r.Percent >= 0:
		info.Percentage = health.Round1(r.Percent)
	case r.CurrentCapacity >= 0 && r.MaxCapacity > 0:
		info.Percentage = health.Round1(float64(r.CurrentCapacity) / float64(r.MaxCapacity) * 100)
	}
	if info.Percentage > 100 {
		info.Percentage = 100
	}
	info.IsLowBattery = info.Percentage >= 0 && info.Percentage < lowThreshold

	full := health.PreferredCapacity(r.NominalCapacity, r.RawMaxCapacity, r.MaxCapacity)
	if pct, ok := model.Estimate(r.DesignCapacity, full, r.CycleCount); ok {
		info.HealthPercentage = health.Round1(pct)
		info.Health = health.Category(info.HealthPercentage)
	}
	return info
}

func batteryStatus(r platform.BatteryReading) string {
	switch {
	case !r.Present:
		return StatusNoBattery
	case !r.StatusKnown:
		return StatusUnknown
	case r.ExternalConnected && r.Charging:
		return StatusCharging
	case r.ExternalConnected:
		return StatusFull
	case r.Charging:
		return StatusCharging
	default:
		return StatusDischarging
	}
}
