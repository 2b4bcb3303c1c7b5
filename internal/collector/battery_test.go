package collector

import (
	"context"
	"testing"

	"github.com/Guliveer/hwprobe/internal/health"
	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

func laptopBattery() platform.BatteryReading {
	r := platform.NewBatteryReading()
	r.Present = true
	r.StatusKnown = true
	r.Name = "bq40z651"
	r.CapacityUnit = "mAh"
	r.Percent = 64
	r.DesignCapacity = 5000
	r.MaxCapacity = 4100
	r.NominalCapacity = 4200
	r.CurrentCapacity = 2700
	r.CycleCount = 300
	r.TimeToFull = -1
	return r
}

func TestBatteryCollector_Health(t *testing.T) {
	r := laptopBattery()
	c := NewBatteryCollector(&fakePlatform{battery: &r}, health.DefaultModel(), 20, nil)

	got, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	info := got.(models.BatteryInfo)
	if info.HealthPercentage != 86.9 {
		t.Errorf("HealthPercentage = %v, want 86.9", info.HealthPercentage)
	}
	if info.Health != health.Normal {
		t.Errorf("Health = %q, want Normal", info.Health)
	}
	if info.Status != StatusDischarging || info.IsCharging {
		t.Errorf("status = %q charging=%v", info.Status, info.IsCharging)
	}
	if info.Percentage != 64 || info.IsLowBattery {
		t.Errorf("percentage = %v low=%v", info.Percentage, info.IsLowBattery)
	}
	if info.Manufacturer != models.Unknown || info.TimeToFullCharge != -1 {
		t.Errorf("sentinels = %q / %d", info.Manufacturer, info.TimeToFullCharge)
	}
}

func TestBatteryInfo_Status(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*platform.BatteryReading)
		want     string
		charging bool
	}{
		{"charging", func(r *platform.BatteryReading) { r.ExternalConnected, r.Charging = true, true }, StatusCharging, true},
		{"plugged and full", func(r *platform.BatteryReading) { r.ExternalConnected = true }, StatusFull, false},
		{"on battery", func(r *platform.BatteryReading) {}, StatusDischarging, false},
		{"status unknown", func(r *platform.BatteryReading) { r.StatusKnown = false }, StatusUnknown, false},
		{"absent", func(r *platform.BatteryReading) { r.Present = false }, StatusNoBattery, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := laptopBattery()
			tt.mutate(&r)
			info := batteryInfo(r, health.DefaultModel(), 20)
			if info.Status != tt.want {
				t.Errorf("Status = %q, want %q", info.Status, tt.want)
			}
			if info.IsCharging != tt.charging {
				t.Errorf("IsCharging = %v, want %v", info.IsCharging, tt.charging)
			}
		})
	}
}

func TestBatteryInfo_PercentFromCapacity(t *testing.T) {
	r := laptopBattery()
	r.Percent = -1
	r.CurrentCapacity = 410
	info := batteryInfo(r, health.DefaultModel(), 20)
	if info.Percentage != 10 {
		t.Errorf("Percentage = %v, want 10", info.Percentage)
	}
	if !info.IsLowBattery {
		t.Error("IsLowBattery = false at 10%")
	}
}

func TestBatteryInfo_UnknownHealth(t *testing.T) {
	r := laptopBattery()
	r.DesignCapacity = -1
	info := batteryInfo(r, health.DefaultModel(), 20)
	if info.HealthPercentage != -1 || info.Health != health.Unknown {
		t.Errorf("health = %v %q, want -1 Unknown", info.HealthPercentage, info.Health)
	}
}

func TestBatteryCollector_NoBattery(t *testing.T) {
	c := NewBatteryCollector(&fakePlatform{}, health.DefaultModel(), 0, nil)
	got, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	info := got.(models.BatteryInfo)
	if info.IsPresent || info.Status != StatusNoBattery {
		t.Errorf("present=%v status=%q", info.IsPresent, info.Status)
	}
	if info.Percentage != -1 || info.CycleCount != -1 || info.Name != models.Unknown {
		t.Errorf("sentinels = %v %d %q", info.Percentage, info.CycleCount, info.Name)
	}
	if info.IsLowBattery {
		t.Error("IsLowBattery set without a battery")
	}
}
