//go:build !windows && !darwin && !linux

// Stub Platform for operating systems without a dedicated implementation.
// Every method reports ErrUnsupported; gopsutil still answers the
// cross-platform queries.
package platform

import (
	"context"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/shell"
)

// StubPlatform is a no-op Platform.
type StubPlatform struct{}

// New creates a stub platform instance.
func New(run shell.Runner, logger *zap.Logger) Platform {
	return &StubPlatform{}
}

// Name returns the platform identifier.
func (p *StubPlatform) Name() string { return "stub" }

func (p *StubPlatform) Battery(ctx context.Context) (BatteryReading, error) {
	return NewBatteryReading(), ErrUnsupported
}

func (p *StubPlatform) CPUDetails(ctx context.Context) (CPUDetails, error) {
	return CPUDetails{PhysicalCores: -1, LogicalCores: -1, PerformanceCores: -1, EfficiencyCores: -1}, ErrUnsupported
}

func (p *StubPlatform) GPUs(ctx context.Context) ([]GPUAdapter, error) { return nil, ErrUnsupported }

func (p *StubPlatform) GPUActivity(ctx context.Context) (GPUActivity, error) {
	return GPUActivity{}, ErrUnsupported
}

// GPUTemperature returns nil on unsupported platforms.
func (p *StubPlatform) GPUTemperature(ctx context.Context) (*float64, error) {
	return nil, nil
}

func (p *StubPlatform) PhysicalDisks(ctx context.Context) ([]PhysicalDisk, error) {
	return nil, ErrUnsupported
}

func (p *StubPlatform) VolumeDetails(ctx context.Context, path string) ([]KeyValue, error) {
	return nil, ErrUnsupported
}

func (p *StubPlatform) MemoryLayout(ctx context.Context) (MemoryLayout, error) {
	return MemoryLayout{TotalSlots: -1}, ErrUnsupported
}

func (p *StubPlatform) OSDetails(ctx context.Context) (OSDetails, error) {
	return OSDetails{}, ErrUnsupported
}

func (p *StubPlatform) InstalledApps(ctx context.Context) ([]App, error) { return nil, ErrUnsupported }

func (p *StubPlatform) WindowTitles(ctx context.Context) (map[int32]string, error) {
	return nil, ErrUnsupported
}

func (p *StubPlatform) Fans(ctx context.Context) ([]Fan, error) { return nil, ErrUnsupported }
