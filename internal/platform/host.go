package platform

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// Host exposes the gopsutil queries the collectors need, in a form that can
// be replaced by fixed data in tests.
type Host interface {
	CPUTimes(ctx context.Context) (cpu.TimesStat, error)
	CPUInfo(ctx context.Context) ([]cpu.InfoStat, error)
	CPUCounts(ctx context.Context, logical bool) (int, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error)
	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error)
	DiskIOCounters(ctx context.Context) (map[string]disk.IOCountersStat, error)
	HostInfo(ctx context.Context) (*host.InfoStat, error)
	Temperatures(ctx context.Context) ([]host.TemperatureStat, error)
	Processes(ctx context.Context) ([]ProcessSnapshot, error)
	Interfaces(ctx context.Context) (net.InterfaceStatList, error)
	NetIOCounters(ctx context.Context) ([]net.IOCountersStat, error)
}

// ProcessSnapshot is the per-process data read in one pass.
type ProcessSnapshot struct {
	PID           int32
	PPID          int32
	Name          string
	Exe           string
	Username      string
	Status        string
	CPUPercent    float64
	MemoryPercent float32
	RSS           uint64
	Threads       int32
	CreateTime    int64 // milliseconds since epoch
}

// GopsutilHost implements Host on top of gopsutil.
type GopsutilHost struct{}

// NewHost returns the gopsutil-backed Host.
func NewHost() *GopsutilHost {
	return &GopsutilHost{}
}

// CPUTimes returns the aggregate CPU times across all cores.
func (GopsutilHost) CPUTimes(ctx context.Context) (cpu.TimesStat, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return cpu.TimesStat{}, err
	}
	if len(times) == 0 {
		return cpu.TimesStat{}, fmt.Errorf("cpu times: no data")
	}
	return times[0], nil
}

func (GopsutilHost) CPUInfo(ctx context.Context) ([]cpu.InfoStat, error) {
	return cpu.InfoWithContext(ctx)
}

func (GopsutilHost) CPUCounts(ctx context.Context, logical bool) (int, error) {
	return cpu.CountsWithContext(ctx, logical)
}

func (GopsutilHost) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (GopsutilHost) SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error) {
	return mem.SwapMemoryWithContext(ctx)
}

func (GopsutilHost) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

func (GopsutilHost) DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

func (GopsutilHost) DiskIOCounters(ctx context.Context) (map[string]disk.IOCountersStat, error) {
	return disk.IOCountersWithContext(ctx)
}

func (GopsutilHost) HostInfo(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

func (GopsutilHost) Temperatures(ctx context.Context) ([]host.TemperatureStat, error) {
	return host.SensorsTemperaturesWithContext(ctx)
}

// Processes reads every process in one pass. Individual attribute errors are
// ignored so a single inaccessible process cannot fail the listing; the
// affected fields stay at their zero value.
func (GopsutilHost) Processes(ctx context.Context) ([]ProcessSnapshot, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ProcessSnapshot, 0, len(procs))
	for _, p := range procs {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		snap := ProcessSnapshot{PID: p.Pid}
		snap.Name, _ = p.NameWithContext(ctx)
		snap.PPID, _ = p.PpidWithContext(ctx)
		snap.Exe, _ = p.ExeWithContext(ctx)
		snap.Username, _ = p.UsernameWithContext(ctx)
		snap.CPUPercent, _ = p.CPUPercentWithContext(ctx)
		snap.MemoryPercent, _ = p.MemoryPercentWithContext(ctx)
		snap.Threads, _ = p.NumThreadsWithContext(ctx)
		snap.CreateTime, _ = p.CreateTimeWithContext(ctx)
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			snap.RSS = mi.RSS
		}
		if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
			snap.Status = status[0]
		}
		out = append(out, snap)
	}
	return out, nil
}

func (GopsutilHost) Interfaces(ctx context.Context) (net.InterfaceStatList, error) {
	return net.InterfacesWithContext(ctx)
}

func (GopsutilHost) NetIOCounters(ctx context.Context) ([]net.IOCountersStat, error) {
	return net.IOCountersWithContext(ctx, true)
}
