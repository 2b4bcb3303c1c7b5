package report

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/Guliveer/hwprobe/internal/config"
	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

var errDead = errors.New("source unavailable")

// deadHost fails every query.
type deadHost struct{}

func (deadHost) CPUTimes(context.Context) (cpu.TimesStat, error) { return cpu.TimesStat{}, errDead }
func (deadHost) CPUInfo(context.Context) ([]cpu.InfoStat, error) { return nil, errDead }
func (deadHost) CPUCounts(context.Context, bool) (int, error)    { return 0, errDead }
func (deadHost) VirtualMemory(context.Context) (*mem.VirtualMemoryStat, error) {
	return nil, errDead
}
func (deadHost) SwapMemory(context.Context) (*mem.SwapMemoryStat, error) { return nil, errDead }
func (deadHost) Partitions(context.Context) ([]disk.PartitionStat, error) {
	return nil, errDead
}
func (deadHost) DiskUsage(context.Context, string) (*disk.UsageStat, error) {
	return nil, errDead
}
func (deadHost) DiskIOCounters(context.Context) (map[string]disk.IOCountersStat, error) {
	return nil, errDead
}
func (deadHost) HostInfo(context.Context) (*host.InfoStat, error) { return nil, errDead }
func (deadHost) Temperatures(context.Context) ([]host.TemperatureStat, error) {
	return nil, errDead
}
func (deadHost) Processes(context.Context) ([]platform.ProcessSnapshot, error) {
	return nil, errDead
}
func (deadHost) Interfaces(context.Context) (net.InterfaceStatList, error) { return nil, errDead }
func (deadHost) NetIOCounters(context.Context) ([]net.IOCountersStat, error) {
	return nil, errDead
}

// usageHost answers DiskUsage only.
type usageHost struct {
	deadHost
	usage *disk.UsageStat
}

func (h usageHost) DiskUsage(context.Context, string) (*disk.UsageStat, error) {
	return h.usage, nil
}

// deadPlatform reports every method as unsupported.
type deadPlatform struct{}

func (deadPlatform) Name() string { return "dead" }
func (deadPlatform) Battery(context.Context) (platform.BatteryReading, error) {
	return platform.NewBatteryReading(), platform.ErrUnsupported
}
func (deadPlatform) CPUDetails(context.Context) (platform.CPUDetails, error) {
	return platform.CPUDetails{PhysicalCores: -1, LogicalCores: -1, PerformanceCores: -1, EfficiencyCores: -1}, platform.ErrUnsupported
}
func (deadPlatform) GPUs(context.Context) ([]platform.GPUAdapter, error) {
	return nil, platform.ErrUnsupported
}
func (deadPlatform) GPUActivity(context.Context) (platform.GPUActivity, error) {
	return platform.GPUActivity{}, platform.ErrUnsupported
}
func (deadPlatform) GPUTemperature(context.Context) (*float64, error) { return nil, nil }
func (deadPlatform) PhysicalDisks(context.Context) ([]platform.PhysicalDisk, error) {
	return nil, platform.ErrUnsupported
}
func (deadPlatform) VolumeDetails(context.Context, string) ([]platform.KeyValue, error) {
	return nil, platform.ErrUnsupported
}
func (deadPlatform) MemoryLayout(context.Context) (platform.MemoryLayout, error) {
	return platform.MemoryLayout{TotalSlots: -1}, platform.ErrUnsupported
}
func (deadPlatform) OSDetails(context.Context) (platform.OSDetails, error) {
	return platform.OSDetails{}, platform.ErrUnsupported
}
func (deadPlatform) InstalledApps(context.Context) ([]platform.App, error) {
	return nil, platform.ErrUnsupported
}
func (deadPlatform) WindowTitles(context.Context) (map[int32]string, error) {
	return nil, platform.ErrUnsupported
}
func (deadPlatform) Fans(context.Context) ([]platform.Fan, error) {
	return nil, platform.ErrUnsupported
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Sampling.CPUWarmup = config.Duration{}
	cfg.Sampling.GPUWarmup = config.Duration{}
	cfg.Sampling.DiskIOInterval = config.Duration{}
	cfg.DiskSpeed.Dir = t.TempDir()
	cfg.DiskSpeed.SizeMB = 1
	cfg.DiskSpeed.BlockKB = 64
	return cfg
}

func assertJSONObject(t *testing.T, name, doc string) map[string]interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("%s: not JSON: %v\n%s", name, err, doc)
	}
	obj, _ := v.(map[string]interface{})
	return obj
}

func TestJSON_EveryReportParsesWhenSourcesFail(t *testing.T) {
	svc := NewWithSources(testConfig(t), deadHost{}, deadPlatform{}, nil)
	ctx := context.Background()

	names := svc.Names()
	if len(names) != 16 {
		t.Errorf("Names() = %v, want 16 reports", names)
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			doc := svc.JSON(ctx, name)
			var v interface{}
			if err := json.Unmarshal([]byte(doc), &v); err != nil {
				t.Fatalf("not JSON: %v\n%s", err, doc)
			}
			if obj, ok := v.(map[string]interface{}); ok {
				if _, isErr := obj["error"]; isErr {
					t.Errorf("report returned an error document: %s", doc)
				}
			}
		})
	}

	for name, doc := range map[string]string{
		"disk usage": svc.DiskUsage(ctx, "/nowhere"),
		"volume":     svc.Volume(ctx, ""),
		"snapshot":   svc.SnapshotJSON(ctx),
	} {
		assertJSONObject(t, name, doc)
	}
}

func TestJSON_UnknownReport(t *testing.T) {
	svc := NewWithSources(testConfig(t), deadHost{}, deadPlatform{}, nil)
	obj := assertJSONObject(t, "unknown", svc.JSON(context.Background(), "toaster"))
	msg, _ := obj["error"].(string)
	if !strings.Contains(msg, "toaster") {
		t.Errorf("error = %q, want it to name the report", msg)
	}
	if svc.Has("toaster") || !svc.Has("battery") {
		t.Error("Has() disagrees with the registered reports")
	}
}

func TestDiskUsage_ComputesUsedFromFree(t *testing.T) {
	const gb = 1000 * 1000 * 1000
	h := usageHost{usage: &disk.UsageStat{Path: "/data", Fstype: "ext4", Total: 100 * gb, Free: 40 * gb}}
	svc := NewWithSources(testConfig(t), h, deadPlatform{}, nil)

	var u models.DiskUsage
	if err := json.Unmarshal([]byte(svc.DiskUsage(context.Background(), "/data")), &u); err != nil {
		t.Fatal(err)
	}
	if u.UsedBytes != 60*gb {
		t.Errorf("UsedBytes = %d, want 60 GB", u.UsedBytes)
	}
	if u.UsedPercentage != 60.0 {
		t.Errorf("UsedPercentage = %v, want 60.0", u.UsedPercentage)
	}
}

func TestScalars_FailingSources(t *testing.T) {
	svc := NewWithSources(testConfig(t), deadHost{}, deadPlatform{}, nil)
	ctx := context.Background()

	if got := svc.CPUUsage(ctx); got != 0 {
		t.Errorf("CPUUsage = %v, want 0", got)
	}
	if got := svc.GPUUsage(ctx); got != 0 {
		t.Errorf("GPUUsage = %v, want 0", got)
	}
	if got := svc.FanSpeed(ctx); got != -1 {
		t.Errorf("FanSpeed = %v, want -1", got)
	}
}

func TestDiskSpeed_WritesToDirectory(t *testing.T) {
	cfg := testConfig(t)
	svc := NewWithSources(cfg, deadHost{}, deadPlatform{}, nil)

	var s models.DiskSpeed
	if err := json.Unmarshal([]byte(svc.DiskSpeed(context.Background(), "")), &s); err != nil {
		t.Fatal(err)
	}
	if s.Path != cfg.DiskSpeed.Dir {
		t.Errorf("Path = %q, want configured dir", s.Path)
	}
	if s.TestSize != 1<<20 {
		t.Errorf("TestSize = %d, want 1 MiB", s.TestSize)
	}
	if s.WriteDuration == models.Unknown {
		t.Error("write phase did not complete")
	}
}

func TestAssemble(t *testing.T) {
	results := map[string]interface{}{
		"cpu":       models.CPUInfo{Name: "Test CPU", UsagePercentage: 12.5},
		"gpu":       []models.GPUInfo{{Name: "dGPU", UsagePercentage: 40}, {Name: "iGPU"}},
		"fans":      []models.FanInfo{{Name: "fan1", CurrentSpeed: 1200}},
		"processes": "not a process list",
	}
	snap := Assemble(results)

	if snap.CPU == nil || snap.CPU.Name != "Test CPU" || snap.CPUUsage != 12.5 {
		t.Errorf("cpu = %+v usage %v", snap.CPU, snap.CPUUsage)
	}
	if len(snap.GPUs) != 2 || snap.GPUUsage != 40 {
		t.Errorf("gpus = %d usage %v", len(snap.GPUs), snap.GPUUsage)
	}
	if snap.Battery != nil || snap.RAM != nil {
		t.Error("missing reports should stay nil")
	}
	if snap.Processes == nil || len(snap.Processes) != 0 {
		t.Errorf("Processes = %v, want empty non-nil", snap.Processes)
	}
	if snap.Disks == nil {
		t.Error("Disks is nil")
	}
}
