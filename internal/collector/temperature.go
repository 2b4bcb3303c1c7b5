// CPU/GPU temperature collector: gathers thermal sensor readings.
// Uses gopsutil host sensors with the platform GPU reading as a fallback.
// The hottest matching sensor represents each category.
package collector

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

// Sensor name substrings used to identify CPU temperature sensors across platforms.
// Linux:  coretemp_core_0_input, k10temp_tctl_input, acpitz_temp1_input
// macOS:  TC0P (CPU proximity), TC0D (CPU die), TCXC (CPU core), pACC/eACC MTR
// Windows: CPU Package, CPU Core #0, etc.
var cpuSensorKeys = []string{
	"cpu", "core", "package",
	"tctl", "tdie", "k10temp", "coretemp",
	"tc0p", "tc0d", "tcxc", "pacc", "eacc",
	"acpitz", "zenpower",
}

// Sensor name substrings used to identify GPU temperature sensors across platforms.
// Linux:  amdgpu_edge_input, nouveau_temp1_input
// macOS:  TG0P (GPU proximity), TG0D (GPU die), GPU MTR
var gpuSensorKeys = []string{
	"gpu", "nvidia", "amd", "radeon",
	"tg0p", "tg0d",
	"amdgpu", "nouveau",
}

const (
	minValidTemp = 0.0
	// Readings above maxValidTemp are sensor errors.
	maxValidTemp = 150.0
)

// TemperatureCollector collects CPU and GPU temperature readings.
type TemperatureCollector struct {
	host     platform.Host
	platform platform.Platform
	logger   *zap.Logger
}

// NewTemperatureCollector creates a temperature collector. The platform
// provides a GPU fallback (nvidia-smi); pass nil to disable it.
func NewTemperatureCollector(h platform.Host, p platform.Platform, logger *zap.Logger) *TemperatureCollector {
	return &TemperatureCollector{
		host:     h,
		platform: p,
		logger:   nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *TemperatureCollector) Name() string { return "temperature" }

// IsAvailable returns true. Missing sensors leave the readings nil.
func (c *TemperatureCollector) IsAvailable() bool { return true }

// Collect returns a models.Temperature.
func (c *TemperatureCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.Read(ctx), nil
}

// Read finds the maximum temperature across all matching sensors for each
// category. A missing GPU sensor falls back to the platform reading.
func (c *TemperatureCollector) Read(ctx context.Context) models.Temperature {
	temps, err := c.host.Temperatures(ctx)
	if err != nil {
		// gopsutil returns partial readings together with a warning error.
		c.logger.Debug("Temperature sensors not fully available", zap.Error(err))
	}

	result := maxSensorTemps(temps)
	if result.CPUTemp == nil {
		c.logger.Debug("No CPU temperature sensor found")
	}
	if result.GPUTemp == nil {
		result.GPUTemp = c.platformGPUFallback(ctx)
	}
	return result
}

type sensorKind int

const (
	otherSensor sensorKind = iota
	cpuSensor
	gpuSensor
)

// classifySensor maps a gopsutil sensor key to a category. GPU keys are
// checked first so "gpu core" never counts as a CPU reading.
func classifySensor(key string) sensorKind {
	name := strings.ToLower(key)
	switch {
	case matchesSensor(name, gpuSensorKeys):
		return gpuSensor
	case matchesSensor(name, cpuSensorKeys):
		return cpuSensor
	default:
		return otherSensor
	}
}

// hottest keeps the maximum of the readings it is offered.
type hottest struct {
	value float64
	seen  bool
}

func (h *hottest) offer(v float64) {
	if !h.seen || v > h.value {
		h.value, h.seen = v, true
	}
}

func (h hottest) ptr() *float64 {
	if !h.seen {
		return nil
	}
	v := h.value
	return &v
}

func maxSensorTemps(temps []host.TemperatureStat) models.Temperature {
	var cpu, gpu hottest
	for _, t := range temps {
		if !isValidTemperature(t.Temperature) {
			continue
		}
		switch classifySensor(t.SensorKey) {
		case gpuSensor:
			gpu.offer(t.Temperature)
		case cpuSensor:
			cpu.offer(t.Temperature)
		}
	}
	return models.Temperature{CPUTemp: cpu.ptr(), GPUTemp: gpu.ptr()}
}

// platformGPUFallback returns nil if the platform is not set or the
// temperature is unavailable or out of range.
func (c *TemperatureCollector) platformGPUFallback(ctx context.Context) *float64 {
	if c.platform == nil {
		return nil
	}

	temp, err := c.platform.GPUTemperature(ctx)
	if err != nil {
		sourceFailed(c.logger, "gpu temperature", err)
		return nil
	}
	if temp == nil {
		return nil
	}
	if !isValidTemperature(*temp) {
		c.logger.Debug("Platform GPU temperature out of valid range",
			zap.Float64("temp_c", *temp))
		return nil
	}
	return temp
}

func matchesSensor(name string, keys []string) bool {
	for _, key := range keys {
		if strings.Contains(name, key) {
			return true
		}
	}
	return false
}

func isValidTemperature(temp float64) bool {
	return temp > minValidTemp && temp <= maxValidTemp
}
