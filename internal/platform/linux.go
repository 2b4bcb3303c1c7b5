//go:build linux

// Linux Platform implementation backed by sysfs.
package platform

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/shell"
)

const sysRoot = "/sys"

// LinuxPlatform implements Platform for Linux systems.
type LinuxPlatform struct {
	run    shell.Runner
	logger *zap.Logger
}

// New creates the Linux platform.
func New(run shell.Runner, logger *zap.Logger) Platform {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinuxPlatform{run: run, logger: logger}
}

// Name returns the platform identifier.
func (p *LinuxPlatform) Name() string { return "linux" }

func (p *LinuxPlatform) Battery(ctx context.Context) (BatteryReading, error) {
	return readPowerSupply(sysRoot), nil
}

// CPUDetails leaves everything to gopsutil's /proc/cpuinfo parsing.
func (p *LinuxPlatform) CPUDetails(ctx context.Context) (CPUDetails, error) {
	return CPUDetails{PhysicalCores: -1, LogicalCores: -1, PerformanceCores: -1, EfficiencyCores: -1}, nil
}

func (p *LinuxPlatform) GPUs(ctx context.Context) ([]GPUAdapter, error) {
	return readDRMAdapters(sysRoot), nil
}

func (p *LinuxPlatform) GPUActivity(ctx context.Context) (GPUActivity, error) {
	if busy, ok := readDRMBusy(sysRoot); ok {
		return GPUActivity{Direct: true, Percent: busy}, nil
	}
	return GPUActivity{}, ErrUnsupported
}

// GPUTemperature tries nvidia-smi; other vendors report through hwmon,
// which gopsutil's sensor list already covers.
func (p *LinuxPlatform) GPUTemperature(ctx context.Context) (*float64, error) {
	out, err := p.run.Output(ctx, "nvidia-smi",
		"--query-gpu=temperature.gpu", "--format=csv,noheader,nounits")
	if err != nil {
		return nil, nil
	}
	first, _, _ := strings.Cut(out, "\n")
	v := leadingInt(strings.TrimSpace(first))
	if v < 0 {
		return nil, nil
	}
	temp := float64(v)
	return &temp, nil
}

func (p *LinuxPlatform) PhysicalDisks(ctx context.Context) ([]PhysicalDisk, error) {
	return readBlockDevices(sysRoot), nil
}

func (p *LinuxPlatform) VolumeDetails(ctx context.Context, path string) ([]KeyValue, error) {
	return nil, ErrUnsupported
}

// MemoryLayout needs dmidecode and root; not attempted.
func (p *LinuxPlatform) MemoryLayout(ctx context.Context) (MemoryLayout, error) {
	return MemoryLayout{TotalSlots: -1}, ErrUnsupported
}

func (p *LinuxPlatform) OSDetails(ctx context.Context) (OSDetails, error) {
	d := OSDetails{Model: readDMIModel(sysRoot), IsAdmin: os.Geteuid() == 0}
	for _, env := range []string{"LC_ALL", "LANG"} {
		if v := os.Getenv(env); v != "" {
			d.Locale, _, _ = strings.Cut(v, ".")
			break
		}
	}
	return d, nil
}

func (p *LinuxPlatform) InstalledApps(ctx context.Context) ([]App, error) {
	return nil, ErrUnsupported
}

func (p *LinuxPlatform) WindowTitles(ctx context.Context) (map[int32]string, error) {
	return nil, ErrUnsupported
}

func (p *LinuxPlatform) Fans(ctx context.Context) ([]Fan, error) {
	return readHwmonFans(sysRoot), nil
}
