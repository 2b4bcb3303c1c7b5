package collector

import (
	"context"
	"errors"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/Guliveer/hwprobe/internal/platform"
)

var errFake = errors.New("fake source failure")

// fakeHost serves fixed gopsutil data. Sequence fields are consumed one
// entry per call; the last entry repeats.
type fakeHost struct {
	mu sync.Mutex

	times      []cpu.TimesStat
	timesCalls int
	timesErr   error

	cpuInfo []cpu.InfoStat
	counts  map[bool]int

	vmem *mem.VirtualMemoryStat
	swap *mem.SwapMemoryStat

	partitions []disk.PartitionStat
	usage      map[string]*disk.UsageStat
	io         []map[string]disk.IOCountersStat
	ioCalls    int

	hostInfo *host.InfoStat
	temps    []host.TemperatureStat
	tempsErr error

	procs []platform.ProcessSnapshot

	ifaces  net.InterfaceStatList
	netIO   [][]net.IOCountersStat
	netCall int
}

func (h *fakeHost) CPUTimes(ctx context.Context) (cpu.TimesStat, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timesErr != nil || len(h.times) == 0 {
		return cpu.TimesStat{}, errFake
	}
	i := h.timesCalls
	if i >= len(h.times) {
		i = len(h.times) - 1
	}
	h.timesCalls++
	return h.times[i], nil
}

func (h *fakeHost) CPUInfo(ctx context.Context) ([]cpu.InfoStat, error) {
	if h.cpuInfo == nil {
		return nil, errFake
	}
	return h.cpuInfo, nil
}

func (h *fakeHost) CPUCounts(ctx context.Context, logical bool) (int, error) {
	n, ok := h.counts[logical]
	if !ok {
		return 0, errFake
	}
	return n, nil
}

func (h *fakeHost) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	if h.vmem == nil {
		return nil, errFake
	}
	return h.vmem, nil
}

func (h *fakeHost) SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error) {
	if h.swap == nil {
		return nil, errFake
	}
	return h.swap, nil
}

func (h *fakeHost) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	if h.partitions == nil {
		return nil, errFake
	}
	return h.partitions, nil
}

func (h *fakeHost) DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	u, ok := h.usage[path]
	if !ok {
		return nil, errFake
	}
	return u, nil
}

func (h *fakeHost) DiskIOCounters(ctx context.Context) (map[string]disk.IOCountersStat, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.io) == 0 {
		return nil, errFake
	}
	i := h.ioCalls
	if i >= len(h.io) {
		i = len(h.io) - 1
	}
	h.ioCalls++
	return h.io[i], nil
}

func (h *fakeHost) HostInfo(ctx context.Context) (*host.InfoStat, error) {
	if h.hostInfo == nil {
		return nil, errFake
	}
	return h.hostInfo, nil
}

func (h *fakeHost) Temperatures(ctx context.Context) ([]host.TemperatureStat, error) {
	return h.temps, h.tempsErr
}

func (h *fakeHost) Processes(ctx context.Context) ([]platform.ProcessSnapshot, error) {
	if h.procs == nil {
		return nil, errFake
	}
	return h.procs, nil
}

func (h *fakeHost) Interfaces(ctx context.Context) (net.InterfaceStatList, error) {
	if h.ifaces == nil {
		return nil, errFake
	}
	return h.ifaces, nil
}

func (h *fakeHost) NetIOCounters(ctx context.Context) ([]net.IOCountersStat, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.netIO) == 0 {
		return nil, errFake
	}
	i := h.netCall
	if i >= len(h.netIO) {
		i = len(h.netIO) - 1
	}
	h.netCall++
	return h.netIO[i], nil
}

// fakePlatform returns the configured values; zero values report
// ErrUnsupported.
type fakePlatform struct {
	mu sync.Mutex

	battery   *platform.BatteryReading
	cpu       *platform.CPUDetails
	gpus      []platform.GPUAdapter
	activity  []platform.GPUActivity
	actCalls  int
	gpuTemp   *float64
	disks     []platform.PhysicalDisk
	volume    []platform.KeyValue
	memory    *platform.MemoryLayout
	osDetails *platform.OSDetails
	osCalls   int
	apps      []platform.App
	titles    map[int32]string
	fans      []platform.Fan
	failAll   bool
}

func (p *fakePlatform) err() error {
	if p.failAll {
		return errFake
	}
	return platform.ErrUnsupported
}

func (p *fakePlatform) Name() string { return "fake" }

func (p *fakePlatform) Battery(ctx context.Context) (platform.BatteryReading, error) {
	if p.battery == nil {
		return platform.NewBatteryReading(), p.err()
	}
	return *p.battery, nil
}

func (p *fakePlatform) CPUDetails(ctx context.Context) (platform.CPUDetails, error) {
	if p.cpu == nil {
		return platform.CPUDetails{PhysicalCores: -1, LogicalCores: -1, PerformanceCores: -1, EfficiencyCores: -1}, p.err()
	}
	return *p.cpu, nil
}

func (p *fakePlatform) GPUs(ctx context.Context) ([]platform.GPUAdapter, error) {
	if p.gpus == nil {
		return nil, p.err()
	}
	return p.gpus, nil
}

func (p *fakePlatform) GPUActivity(ctx context.Context) (platform.GPUActivity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.activity) == 0 {
		return platform.GPUActivity{}, p.err()
	}
	i := p.actCalls
	if i >= len(p.activity) {
		i = len(p.activity) - 1
	}
	p.actCalls++
	return p.activity[i], nil
}

func (p *fakePlatform) GPUTemperature(ctx context.Context) (*float64, error) {
	return p.gpuTemp, nil
}

func (p *fakePlatform) PhysicalDisks(ctx context.Context) ([]platform.PhysicalDisk, error) {
	if p.disks == nil {
		return nil, p.err()
	}
	return p.disks, nil
}

func (p *fakePlatform) VolumeDetails(ctx context.Context, path string) ([]platform.KeyValue, error) {
	if p.volume == nil {
		return nil, p.err()
	}
	return p.volume, nil
}

func (p *fakePlatform) MemoryLayout(ctx context.Context) (platform.MemoryLayout, error) {
	if p.memory == nil {
		return platform.MemoryLayout{TotalSlots: -1}, p.err()
	}
	return *p.memory, nil
}

func (p *fakePlatform) OSDetails(ctx context.Context) (platform.OSDetails, error) {
	p.mu.Lock()
	p.osCalls++
	p.mu.Unlock()
	if p.osDetails == nil {
		return platform.OSDetails{}, p.err()
	}
	return *p.osDetails, nil
}

func (p *fakePlatform) InstalledApps(ctx context.Context) ([]platform.App, error) {
	if p.apps == nil {
		return nil, p.err()
	}
	return p.apps, nil
}

func (p *fakePlatform) WindowTitles(ctx context.Context) (map[int32]string, error) {
	if p.titles == nil {
		return nil, p.err()
	}
	return p.titles, nil
}

func (p *fakePlatform) Fans(ctx context.Context) ([]platform.Fan, error) {
	if p.fans == nil {
		return nil, p.err()
	}
	return p.fans, nil
}

func float64Ptr(v float64) *float64 { return &v }
