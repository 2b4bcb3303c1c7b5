//go:build darwin

// macOS Platform implementation.
// Uses sysctl through x/sys/unix and the stock command-line tools
// (ioreg, system_profiler, diskutil, mdfind, sw_vers, defaults).
package platform

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/shoenig/go-m1cpu"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/Guliveer/hwprobe/internal/shell"
)

// DarwinPlatform implements Platform for macOS.
type DarwinPlatform struct {
	run    shell.Runner
	logger *zap.Logger
}

// New creates the macOS platform.
func New(run shell.Runner, logger *zap.Logger) Platform {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DarwinPlatform{run: run, logger: logger}
}

// Name returns the platform identifier.
func (p *DarwinPlatform) Name() string { return "darwin" }

// Battery reads AppleSmartBattery from the IO registry.
func (p *DarwinPlatform) Battery(ctx context.Context) (BatteryReading, error) {
	out, err := p.run.Output(ctx, "ioreg", "-rn", "AppleSmartBattery")
	if err != nil {
		return NewBatteryReading(), fmt.Errorf("ioreg battery: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		return NewBatteryReading(), nil
	}
	power, err := p.run.Output(ctx, "system_profiler", "SPPowerDataType")
	if err != nil {
		p.logger.Debug("system_profiler power data unavailable", zap.Error(err))
	}
	return parseSmartBattery(out, power), nil
}

// CPUDetails reads sysctl values. Apple Silicon clocks come from go-m1cpu
// since hw.cpufrequency is not published there.
func (p *DarwinPlatform) CPUDetails(ctx context.Context) (CPUDetails, error) {
	d := CPUDetails{}
	if name, err := unix.Sysctl("machdep.cpu.brand_string"); err == nil {
		d.Name = strings.TrimSpace(name)
	}
	if vendor, err := unix.Sysctl("machdep.cpu.vendor"); err == nil {
		d.Vendor = strings.TrimSpace(vendor)
	}

	arm, err := unix.SysctlUint32("hw.optional.arm64")
	if err == nil && arm == 1 {
		d.Architecture = "ARM64 (Apple Silicon)"
		if d.Vendor == "" {
			d.Vendor = "Apple"
		}
	} else {
		d.Architecture = "x86_64 (Intel)"
	}

	d.L1Cache = sysctlBytes("hw.l1dcachesize")
	d.L2Cache = sysctlBytes("hw.l2cachesize")
	d.L3Cache = sysctlBytes("hw.l3cachesize")

	d.PhysicalCores = sysctlCount("hw.physicalcpu")
	d.LogicalCores = sysctlCount("hw.logicalcpu")
	d.PerformanceCores = sysctlCount("hw.perflevel0.physicalcpu")
	d.EfficiencyCores = sysctlCount("hw.perflevel1.physicalcpu")

	if hz, err := unix.SysctlUint64("hw.cpufrequency"); err == nil {
		d.BaseClockMHz = float64(hz) / 1e6
	}
	if hz, err := unix.SysctlUint64("hw.cpufrequency_max"); err == nil {
		d.MaxClockMHz = float64(hz) / 1e6
	}

	if m1cpu.IsAppleSilicon() {
		d.MaxClockMHz = float64(m1cpu.PCoreHz()) / 1e6
		d.BaseClockMHz = float64(m1cpu.ECoreHz()) / 1e6
		if d.PerformanceCores <= 0 {
			d.PerformanceCores = m1cpu.PCoreCount()
		}
		if d.EfficiencyCores <= 0 {
			d.EfficiencyCores = m1cpu.ECoreCount()
		}
	}
	return d, nil
}

func sysctlBytes(name string) uint64 {
	v, err := unix.SysctlUint64(name)
	if err != nil {
		return 0
	}
	return v
}

func sysctlCount(name string) int {
	v, err := unix.SysctlUint32(name)
	if err != nil {
		return -1
	}
	return int(v)
}

// GPUs parses system_profiler's display report.
func (p *DarwinPlatform) GPUs(ctx context.Context) ([]GPUAdapter, error) {
	out, err := p.run.Output(ctx, "system_profiler", "SPDisplaysDataType")
	if err != nil {
		return nil, fmt.Errorf("system_profiler displays: %w", err)
	}
	return parseDisplays(out), nil
}

// GPUActivity reads the accelerator's performance statistics.
func (p *DarwinPlatform) GPUActivity(ctx context.Context) (GPUActivity, error) {
	out, err := p.run.Output(ctx, "ioreg", "-r", "-d", "1", "-c", "IOAccelerator")
	if err != nil {
		return GPUActivity{}, fmt.Errorf("ioreg accelerator: %w", err)
	}
	act, ok := parseAccelerator(out)
	if !ok {
		return GPUActivity{}, fmt.Errorf("ioreg accelerator: no utilization counters")
	}
	return act, nil
}

// GPUTemperature is not exposed without SMC access.
func (p *DarwinPlatform) GPUTemperature(ctx context.Context) (*float64, error) {
	return nil, ErrUnsupported
}

// PhysicalDisks lists physical disks from `diskutil list` and describes each
// with `diskutil info`. APFS containers are attributed to the disk holding
// their physical store.
func (p *DarwinPlatform) PhysicalDisks(ctx context.Context) ([]PhysicalDisk, error) {
	out, err := p.run.Output(ctx, "diskutil", "list")
	if err != nil {
		return nil, fmt.Errorf("diskutil list: %w", err)
	}
	physical, containers := parseDiskutilList(out)

	disks := make([]PhysicalDisk, 0, len(physical))
	for i, ident := range physical {
		info, err := p.run.Output(ctx, "diskutil", "info", ident)
		if err != nil {
			p.logger.Debug("diskutil info failed", zap.String("disk", ident), zap.Error(err))
			info = ""
		}
		d := physicalDiskFromDiskutil(i, ident, info)
		d.Devices = []string{ident}
		for container, store := range containers {
			if store == ident {
				d.Devices = append(d.Devices, container)
			}
		}
		disks = append(disks, d)
	}
	return disks, nil
}

// VolumeDetails returns the interesting `diskutil info` lines for path.
func (p *DarwinPlatform) VolumeDetails(ctx context.Context, path string) ([]KeyValue, error) {
	out, err := p.run.Output(ctx, "diskutil", "info", path)
	if err != nil {
		return nil, fmt.Errorf("diskutil info %s: %w", path, err)
	}
	return parseDiskutilInfo(out), nil
}

// MemoryLayout parses system_profiler's memory report.
func (p *DarwinPlatform) MemoryLayout(ctx context.Context) (MemoryLayout, error) {
	out, err := p.run.Output(ctx, "system_profiler", "SPMemoryDataType")
	if err != nil {
		return MemoryLayout{TotalSlots: -1}, fmt.Errorf("system_profiler memory: %w", err)
	}
	return parseMemoryProfile(out), nil
}

// OSDetails combines sw_vers, the hardware profile and the language list.
func (p *DarwinPlatform) OSDetails(ctx context.Context) (OSDetails, error) {
	d := OSDetails{Name: "macOS"}

	if out, err := p.run.Output(ctx, "sw_vers", "-productName"); err == nil && out != "" {
		d.Name = out
	}
	if out, err := p.run.Output(ctx, "sw_vers", "-productVersion"); err == nil {
		d.Version = out
	}
	if out, err := p.run.Output(ctx, "sw_vers", "-buildVersion"); err == nil {
		d.Build = out
	}
	if out, err := p.run.Output(ctx, "system_profiler", "SPHardwareDataType"); err == nil {
		d.Model = parseHardwareModel(out)
	} else {
		p.logger.Debug("system_profiler hardware data unavailable", zap.Error(err))
	}
	if out, err := p.run.Output(ctx, "defaults", "read", "-g", "AppleLanguages"); err == nil {
		d.Locale = parseAppleLanguages(out)
	}
	d.IsAdmin = os.Geteuid() == 0 || inAdminGroup()
	return d, nil
}

func inAdminGroup() bool {
	u, err := user.Current()
	if err != nil {
		return false
	}
	admin, err := user.LookupGroup("admin")
	if err != nil {
		return false
	}
	gids, err := u.GroupIds()
	if err != nil {
		return false
	}
	for _, gid := range gids {
		if gid == admin.Gid {
			return true
		}
	}
	return false
}

// InstalledApps asks Spotlight for application bundles.
func (p *DarwinPlatform) InstalledApps(ctx context.Context) ([]App, error) {
	out, err := p.run.Output(ctx, "mdfind", `kMDItemContentType == "com.apple.application-bundle"`)
	if err != nil {
		return nil, fmt.Errorf("mdfind: %w", err)
	}
	return parseMdfind(out), nil
}

// WindowTitles is Windows-only.
func (p *DarwinPlatform) WindowTitles(ctx context.Context) (map[int32]string, error) {
	return nil, ErrUnsupported
}

// Fans would need SMC access through IOKit.
func (p *DarwinPlatform) Fans(ctx context.Context) ([]Fan, error) {
	return nil, ErrUnsupported
}
