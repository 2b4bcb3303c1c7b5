//go:build windows

// Windows-specific Platform implementation.
// Uses WMI for hardware inventory, the registry for installed software and
// processor naming, and a few kernel32/user32 calls.
package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"unsafe"

	"github.com/yusufpapurcu/wmi"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/Guliveer/hwprobe/internal/shell"
)

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")
	moduser32   = windows.NewLazySystemDLL("user32.dll")

	procGetSystemPowerStatus = modkernel32.NewProc("GetSystemPowerStatus")
	procGetWindowTextW       = moduser32.NewProc("GetWindowTextW")
)

// systemPowerStatus mirrors SYSTEM_POWER_STATUS.
type systemPowerStatus struct {
	ACLineStatus        byte
	BatteryFlag         byte
	BatteryLifePercent  byte
	SystemStatusFlag    byte
	BatteryLifeTime     uint32
	BatteryFullLifeTime uint32
}

const (
	batteryFlagCharging  = 0x08
	batteryFlagNoBattery = 0x80
	batteryFlagUnknown   = 0xFF
	unknownLifePercent   = 255
	unknownLifeTime      = 0xFFFFFFFF
)

// WindowsPlatform implements Platform for Windows systems.
type WindowsPlatform struct {
	run    shell.Runner
	logger *zap.Logger
	client *wmi.Client
}

// New creates a new Windows platform instance.
func New(run shell.Runner, logger *zap.Logger) Platform {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WindowsPlatform{
		run:    run,
		logger: logger,
		client: &wmi.Client{NonePtrZero: true, AllowMissingFields: true},
	}
}

// Name returns the platform identifier.
func (p *WindowsPlatform) Name() string { return "windows" }

// query runs a WMI query bounded by ctx. dst must not be read when an error
// is returned.
func (p *WindowsPlatform) query(ctx context.Context, q string, dst interface{}, connectServerArgs ...interface{}) error {
	return bounded(ctx, "wmi query", func() error {
		return p.client.Query(q, dst, connectServerArgs...)
	})
}

type win32Battery struct {
	Name                     string
	DeviceID                 string
	Chemistry                uint16
	DesignCapacity           uint32
	FullChargeCapacity       uint32
	DesignVoltage            uint64
	EstimatedChargeRemaining uint16
	EstimatedRunTime         uint32
	BatteryStatus            uint16
}

type batteryCycleCount struct {
	CycleCount uint32
}

// Battery combines GetSystemPowerStatus with Win32_Battery. The kernel call
// is authoritative for presence and charge state.
func (p *WindowsPlatform) Battery(ctx context.Context) (BatteryReading, error) {
	r := NewBatteryReading()

	var sps systemPowerStatus
	ret, _, callErr := procGetSystemPowerStatus.Call(uintptr(unsafe.Pointer(&sps)))
	if ret == 0 {
		return r, fmt.Errorf("GetSystemPowerStatus: %w", callErr)
	}
	if sps.BatteryFlag == batteryFlagUnknown || sps.BatteryFlag&batteryFlagNoBattery != 0 {
		return r, nil
	}

	r.Present = true
	r.StatusKnown = sps.ACLineStatus != 255
	r.ExternalConnected = sps.ACLineStatus == 1
	r.Charging = sps.BatteryFlag&batteryFlagCharging != 0
	if sps.BatteryLifePercent != unknownLifePercent {
		r.Percent = float64(sps.BatteryLifePercent)
	}
	if sps.BatteryLifeTime != unknownLifeTime && !r.ExternalConnected {
		r.TimeRemaining = int(sps.BatteryLifeTime / 60)
	}
	r.FullyCharged = r.ExternalConnected && !r.Charging && r.Percent >= 100
	r.CapacityUnit = "mWh"

	var batteries []win32Battery
	err := p.query(ctx, "SELECT Name, DeviceID, Chemistry, DesignCapacity, FullChargeCapacity, "+
		"DesignVoltage, EstimatedChargeRemaining, EstimatedRunTime, BatteryStatus FROM Win32_Battery", &batteries)
	if err != nil {
		p.logger.Debug("Win32_Battery query failed", zap.Error(err))
		return r, nil
	}
	if len(batteries) == 0 {
		return r, nil
	}
	b := batteries[0]
	r.Name = strings.TrimSpace(b.Name)
	r.SerialNumber = strings.TrimSpace(b.DeviceID)
	r.Chemistry = chemistryName(b.Chemistry)
	if b.DesignCapacity > 0 {
		r.DesignCapacity = int(b.DesignCapacity)
	}
	if b.FullChargeCapacity > 0 {
		r.MaxCapacity = int(b.FullChargeCapacity)
	}
	if b.DesignVoltage > 0 {
		r.VoltageMV = int(b.DesignVoltage)
	}
	if r.Percent < 0 && b.EstimatedChargeRemaining <= 100 {
		r.Percent = float64(b.EstimatedChargeRemaining)
	}
	if r.MaxCapacity > 0 && r.Percent >= 0 {
		r.CurrentCapacity = int(float64(r.MaxCapacity) * r.Percent / 100)
	}
	if !r.StatusKnown {
		r.Charging, r.ExternalConnected, r.FullyCharged = batteryFlags(b.BatteryStatus)
		r.StatusKnown = b.BatteryStatus != 0
	}

	var cycles []batteryCycleCount
	if err := p.query(ctx, "SELECT CycleCount FROM BatteryCycleCount", &cycles, nil, `root\WMI`); err == nil && len(cycles) > 0 {
		r.CycleCount = int(cycles[0].CycleCount)
	} else if err != nil {
		p.logger.Debug("BatteryCycleCount query failed", zap.Error(err))
	}
	return r, nil
}

type win32Processor struct {
	Name                      string
	Manufacturer              string
	SocketDesignation         string
	Architecture              uint16
	MaxClockSpeed             uint32
	CurrentClockSpeed         uint32
	L2CacheSize               uint32
	L3CacheSize               uint32
	NumberOfCores             uint32
	NumberOfLogicalProcessors uint32
}

type win32CacheMemory struct {
	InstalledSize uint32
}

var processorArchitectures = map[uint16]string{
	0:  "x86",
	5:  "ARM",
	6:  "ia64",
	9:  "x64",
	12: "ARM64",
}

// CPUDetails reads Win32_Processor, falling back to the registry for the
// processor name.
func (p *WindowsPlatform) CPUDetails(ctx context.Context) (CPUDetails, error) {
	d := CPUDetails{PhysicalCores: -1, LogicalCores: -1, PerformanceCores: -1, EfficiencyCores: -1}

	var procs []win32Processor
	err := p.query(ctx, "SELECT Name, Manufacturer, SocketDesignation, Architecture, MaxClockSpeed, "+
		"CurrentClockSpeed, L2CacheSize, L3CacheSize, NumberOfCores, NumberOfLogicalProcessors FROM Win32_Processor", &procs)
	if err != nil {
		p.logger.Debug("Win32_Processor query failed", zap.Error(err))
	}
	if len(procs) > 0 {
		cpu := procs[0]
		d.Name = strings.TrimSpace(cpu.Name)
		d.Vendor = cpu.Manufacturer
		d.Socket = cpu.SocketDesignation
		d.Architecture = processorArchitectures[cpu.Architecture]
		d.BaseClockMHz = float64(cpu.MaxClockSpeed)
		d.MaxClockMHz = float64(cpu.MaxClockSpeed)
		d.CurrentClockMHz = float64(cpu.CurrentClockSpeed)
		d.L2Cache = uint64(cpu.L2CacheSize) * 1024
		d.L3Cache = uint64(cpu.L3CacheSize) * 1024
		var cores, threads uint32
		for _, c := range procs {
			cores += c.NumberOfCores
			threads += c.NumberOfLogicalProcessors
		}
		d.PhysicalCores = int(cores)
		d.LogicalCores = int(threads)
	}

	// CIM cache level 3 is the primary (L1) cache.
	var l1 []win32CacheMemory
	if err := p.query(ctx, "SELECT InstalledSize FROM Win32_CacheMemory WHERE Level = 3", &l1); err == nil {
		var total uint64
		for _, c := range l1 {
			total += uint64(c.InstalledSize) * 1024
		}
		d.L1Cache = total
	}

	if d.Name == "" {
		d.Name = getRegistryString(registry.LOCAL_MACHINE, `HARDWARE\DESCRIPTION\System\CentralProcessor\0`, "ProcessorNameString")
	}
	if d.Vendor == "" {
		d.Vendor = getRegistryString(registry.LOCAL_MACHINE, `HARDWARE\DESCRIPTION\System\CentralProcessor\0`, "VendorIdentifier")
	}
	if d.BaseClockMHz == 0 {
		if mhz := getRegistryInt(registry.LOCAL_MACHINE, `HARDWARE\DESCRIPTION\System\CentralProcessor\0`, "~MHz"); mhz > 0 {
			d.BaseClockMHz = float64(mhz)
		}
	}
	return d, nil
}

type win32VideoController struct {
	Name                        string
	AdapterCompatibility        string
	AdapterRAM                  uint32
	DriverVersion               string
	DriverDate                  string
	PNPDeviceID                 string
	VideoProcessor              string
	CurrentHorizontalResolution uint32
	CurrentVerticalResolution   uint32
	CurrentRefreshRate          uint32
}

// displayClassKey is the device class for display adapters.
const displayClassKey = `SYSTEM\CurrentControlSet\Control\Class\{4d36e968-e325-11ce-bfc1-08002be10318}`

// GPUs reads Win32_VideoController. AdapterRAM is a 32-bit field, so VRAM is
// taken from the driver's qwMemorySize registry value when present.
func (p *WindowsPlatform) GPUs(ctx context.Context) ([]GPUAdapter, error) {
	var ctrls []win32VideoController
	err := p.query(ctx, "SELECT Name, AdapterCompatibility, AdapterRAM, DriverVersion, DriverDate, PNPDeviceID, "+
		"VideoProcessor, CurrentHorizontalResolution, CurrentVerticalResolution, CurrentRefreshRate "+
		"FROM Win32_VideoController", &ctrls)
	if err != nil {
		return nil, fmt.Errorf("Win32_VideoController: %w", err)
	}

	vram := adapterMemorySizes()
	gpus := make([]GPUAdapter, 0, len(ctrls))
	for _, c := range ctrls {
		g := GPUAdapter{
			Name:          strings.TrimSpace(c.Name),
			Vendor:        c.AdapterCompatibility,
			VRAMBytes:     uint64(c.AdapterRAM),
			DriverVersion: c.DriverVersion,
			DriverDate:    wmiTime(c.DriverDate),
			Processor:     c.VideoProcessor,
			Cores:         -1,
			RefreshRate:   -1,
		}
		g.VendorID, g.DeviceID = parsePNPDeviceID(c.PNPDeviceID)
		if name := VendorName(g.VendorID); name != "" {
			g.Vendor = name
		}
		if size, ok := vram[g.Name]; ok && size > g.VRAMBytes {
			g.VRAMBytes = size
		}
		if c.CurrentHorizontalResolution > 0 && c.CurrentVerticalResolution > 0 {
			g.Resolution = fmt.Sprintf("%d x %d", c.CurrentHorizontalResolution, c.CurrentVerticalResolution)
		}
		if c.CurrentRefreshRate > 0 {
			g.RefreshRate = int(c.CurrentRefreshRate)
		}
		if strings.HasPrefix(strings.ToUpper(c.PNPDeviceID), "PCI\\") {
			g.Bus = "PCIe"
		}
		gpus = append(gpus, g)
	}
	return gpus, nil
}

// adapterMemorySizes maps driver descriptions to their 64-bit memory size.
func adapterMemorySizes() map[string]uint64 {
	sizes := make(map[string]uint64)
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, displayClassKey, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return sizes
	}
	names, err := k.ReadSubKeyNames(-1)
	_ = k.Close()
	if err != nil {
		return sizes
	}
	for _, name := range names {
		sub, err := registry.OpenKey(registry.LOCAL_MACHINE, displayClassKey+`\`+name, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		desc, _, errDesc := sub.GetStringValue("DriverDesc")
		size, _, errSize := sub.GetIntegerValue("HardwareInformation.qwMemorySize")
		_ = sub.Close()
		if errDesc == nil && errSize == nil && size > 0 {
			sizes[strings.TrimSpace(desc)] = size
		}
	}
	return sizes
}

type gpuEngine struct {
	Name                  string
	UtilizationPercentage uint64
}

// GPUActivity sums 3D engine utilization from the GPU performance counters.
// The counters come from WMI; PowerShell's Get-Counter is used when the
// performance class is not registered.
func (p *WindowsPlatform) GPUActivity(ctx context.Context) (GPUActivity, error) {
	var engines []gpuEngine
	err := p.query(ctx, "SELECT Name, UtilizationPercentage FROM Win32_PerfFormattedData_GPUPerformanceCounters_GPUEngine", &engines)
	if err == nil && len(engines) > 0 {
		var total float64
		for _, e := range engines {
			if strings.Contains(e.Name, "engtype_3D") {
				total += float64(e.UtilizationPercentage)
			}
		}
		return GPUActivity{Direct: true, Percent: total}, nil
	}
	if err != nil {
		p.logger.Debug("GPU engine counters unavailable via WMI", zap.Error(err))
	}

	out, err := shell.PowerShell(ctx, p.run,
		`((Get-Counter '\GPU Engine(*engtype_3D)\Utilization Percentage' -ErrorAction SilentlyContinue).CounterSamples | `+
			`Measure-Object -Property CookedValue -Sum).Sum`)
	if err != nil {
		return GPUActivity{}, fmt.Errorf("gpu counters: %w", err)
	}
	total, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(out, ",", ".")), 64)
	if err != nil {
		return GPUActivity{}, fmt.Errorf("gpu counters: parse %q: %w", out, err)
	}
	return GPUActivity{Direct: true, Percent: total}, nil
}

// GPUTemperature attempts to read GPU temperature via nvidia-smi.
// Returns nil if NVIDIA GPU or nvidia-smi is not available.
func (p *WindowsPlatform) GPUTemperature(ctx context.Context) (*float64, error) {
	out, err := p.run.Output(ctx, "nvidia-smi",
		"--query-gpu=temperature.gpu", "--format=csv,noheader,nounits")
	if err != nil {
		return nil, nil
	}
	first, _, _ := strings.Cut(out, "\n")
	temp, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
	if err != nil {
		return nil, nil
	}
	return &temp, nil
}

type win32DiskDrive struct {
	Index         uint32
	Model         string
	SerialNumber  string
	InterfaceType string
	MediaType     string
	Size          uint64
	Status        string
}

type msftPhysicalDisk struct {
	DeviceId  string
	MediaType uint16
	BusType   uint16
}

type logicalDiskToPartition struct {
	Antecedent string
	Dependent  string
}

// MSFT_PhysicalDisk codes.
const (
	msftMediaHDD = 3
	msftMediaSSD = 4
	msftBusNVMe  = 17
)

// PhysicalDisks reads Win32_DiskDrive, refines the medium with the Storage
// module's MSFT_PhysicalDisk and maps drive letters through
// Win32_LogicalDiskToPartition.
func (p *WindowsPlatform) PhysicalDisks(ctx context.Context) ([]PhysicalDisk, error) {
	var drives []win32DiskDrive
	if err := p.query(ctx, "SELECT Index, Model, SerialNumber, InterfaceType, MediaType, Size, Status FROM Win32_DiskDrive", &drives); err != nil {
		return nil, fmt.Errorf("Win32_DiskDrive: %w", err)
	}

	media := make(map[string]msftPhysicalDisk)
	var storage []msftPhysicalDisk
	if err := p.query(ctx, "SELECT DeviceId, MediaType, BusType FROM MSFT_PhysicalDisk", &storage, nil, `root\Microsoft\Windows\Storage`); err == nil {
		for _, s := range storage {
			media[s.DeviceId] = s
		}
	} else {
		p.logger.Debug("MSFT_PhysicalDisk query failed", zap.Error(err))
	}

	letters := make(map[int][]string)
	var links []logicalDiskToPartition
	if err := p.query(ctx, "SELECT Antecedent, Dependent FROM Win32_LogicalDiskToPartition", &links); err == nil {
		for _, l := range links {
			if index, drive, ok := parsePartitionLink(l.Antecedent, l.Dependent); ok {
				letters[index] = append(letters[index], drive)
			}
		}
	} else {
		p.logger.Debug("Win32_LogicalDiskToPartition query failed", zap.Error(err))
	}

	disks := make([]PhysicalDisk, 0, len(drives))
	for _, d := range drives {
		disk := PhysicalDisk{
			Index:        int(d.Index),
			Model:        strings.TrimSpace(d.Model),
			SerialNumber: strings.TrimSpace(d.SerialNumber),
			Interface:    d.InterfaceType,
			SizeBytes:    d.Size,
			SmartStatus:  d.Status,
			Devices:      letters[int(d.Index)],
		}
		sort.Strings(disk.Devices)
		s, ok := media[strconv.Itoa(int(d.Index))]
		switch {
		case ok && s.BusType == msftBusNVMe:
			disk.MediaType = "NVMe"
			disk.Interface = "NVMe"
		case ok && s.MediaType == msftMediaSSD:
			disk.MediaType = "SSD"
		case ok && s.MediaType == msftMediaHDD:
			disk.MediaType = "HDD"
		default:
			disk.MediaType = mediaTypeFromModel(disk.Model)
		}
		disks = append(disks, disk)
	}
	sort.Slice(disks, func(i, j int) bool { return disks[i].Index < disks[j].Index })
	return disks, nil
}

type win32LogicalDisk struct {
	DeviceID           string
	VolumeName         string
	FileSystem         string
	Size               uint64
	FreeSpace          uint64
	DriveType          uint32
	VolumeSerialNumber string
	Compressed         bool
}

var driveTypes = map[uint32]string{
	2: "Removable", 3: "Local Disk", 4: "Network Drive", 5: "Optical", 6: "RAM Disk",
}

// VolumeDetails describes the logical disk that holds path.
func (p *WindowsPlatform) VolumeDetails(ctx context.Context, path string) ([]KeyValue, error) {
	volume := strings.ToUpper(filepath.VolumeName(path))
	if volume == "" {
		return nil, fmt.Errorf("volume details: %q has no drive letter", path)
	}
	var disks []win32LogicalDisk
	q := fmt.Sprintf("SELECT DeviceID, VolumeName, FileSystem, Size, FreeSpace, DriveType, VolumeSerialNumber, Compressed "+
		"FROM Win32_LogicalDisk WHERE DeviceID = '%s'", volume)
	if err := p.query(ctx, q, &disks); err != nil {
		return nil, fmt.Errorf("Win32_LogicalDisk: %w", err)
	}
	if len(disks) == 0 {
		return nil, fmt.Errorf("volume details: %s not found", volume)
	}
	d := disks[0]
	return []KeyValue{
		{Key: "Device Identifier", Value: d.DeviceID},
		{Key: "Volume Name", Value: d.VolumeName},
		{Key: "File System", Value: d.FileSystem},
		{Key: "Drive Type", Value: driveTypes[d.DriveType]},
		{Key: "Volume Serial Number", Value: d.VolumeSerialNumber},
		{Key: "Total Space", Value: strconv.FormatUint(d.Size, 10)},
		{Key: "Free Space", Value: strconv.FormatUint(d.FreeSpace, 10)},
		{Key: "Compressed", Value: yesNo(d.Compressed)},
	}, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

type win32PhysicalMemoryArray struct {
	MemoryDevices uint32
}

type win32PhysicalMemory struct {
	BankLabel            string
	DeviceLocator        string
	Manufacturer         string
	PartNumber           string
	SerialNumber         string
	Capacity             uint64
	Speed                uint32
	ConfiguredClockSpeed uint32
	FormFactor           uint16
	MemoryType           uint16
	SMBIOSMemoryType     uint32
}

// MemoryLayout reads the slot count and populated modules.
func (p *WindowsPlatform) MemoryLayout(ctx context.Context) (MemoryLayout, error) {
	layout := MemoryLayout{TotalSlots: -1}

	var arrays []win32PhysicalMemoryArray
	if err := p.query(ctx, "SELECT MemoryDevices FROM Win32_PhysicalMemoryArray", &arrays); err == nil && len(arrays) > 0 {
		var slots uint32
		for _, a := range arrays {
			slots += a.MemoryDevices
		}
		layout.TotalSlots = int(slots)
	}

	var modules []win32PhysicalMemory
	err := p.query(ctx, "SELECT BankLabel, DeviceLocator, Manufacturer, PartNumber, SerialNumber, Capacity, Speed, "+
		"ConfiguredClockSpeed, FormFactor, MemoryType, SMBIOSMemoryType FROM Win32_PhysicalMemory", &modules)
	if err != nil {
		return layout, fmt.Errorf("Win32_PhysicalMemory: %w", err)
	}
	for _, m := range modules {
		slot := strings.TrimSpace(m.DeviceLocator)
		if bank := strings.TrimSpace(m.BankLabel); bank != "" && slot != "" {
			slot = bank + " / " + slot
		} else if slot == "" {
			slot = bank
		}
		speed := int(m.ConfiguredClockSpeed)
		if speed == 0 {
			speed = int(m.Speed)
		}
		if speed == 0 {
			speed = -1
		}
		layout.Modules = append(layout.Modules, MemoryModule{
			Slot:          slot,
			Manufacturer:  strings.TrimSpace(m.Manufacturer),
			PartNumber:    strings.TrimSpace(m.PartNumber),
			SerialNumber:  strings.TrimSpace(m.SerialNumber),
			CapacityBytes: m.Capacity,
			SpeedMHz:      speed,
			Type:          memoryTypeName(m.SMBIOSMemoryType, m.MemoryType),
			FormFactor:    formFactorName(m.FormFactor),
		})
	}
	if layout.TotalSlots < len(layout.Modules) {
		layout.TotalSlots = len(layout.Modules)
	}
	return layout, nil
}

type win32OperatingSystem struct {
	Caption     string
	Version     string
	BuildNumber string
	InstallDate string
}

type win32ComputerSystem struct {
	Manufacturer string
	Model        string
	Domain       string
	PartOfDomain bool
}

// OSDetails reads Win32_OperatingSystem and Win32_ComputerSystem plus the
// edition and locale from the registry.
func (p *WindowsPlatform) OSDetails(ctx context.Context) (OSDetails, error) {
	d := OSDetails{}

	var oses []win32OperatingSystem
	if err := p.query(ctx, "SELECT Caption, Version, BuildNumber, InstallDate FROM Win32_OperatingSystem", &oses); err == nil && len(oses) > 0 {
		d.Name = strings.TrimSpace(oses[0].Caption)
		d.Version = oses[0].Version
		d.Build = oses[0].BuildNumber
		d.InstallDate = wmiTime(oses[0].InstallDate)
	} else if err != nil {
		p.logger.Debug("Win32_OperatingSystem query failed", zap.Error(err))
	}

	var systems []win32ComputerSystem
	if err := p.query(ctx, "SELECT Manufacturer, Model, Domain, PartOfDomain FROM Win32_ComputerSystem", &systems); err == nil && len(systems) > 0 {
		cs := systems[0]
		d.Model = strings.TrimSpace(strings.TrimSpace(cs.Manufacturer) + " " + strings.TrimSpace(cs.Model))
		if cs.PartOfDomain {
			d.Domain = cs.Domain
		}
		d.VirtualMachine = looksVirtual(cs.Manufacturer, cs.Model)
	}

	const currentVersion = `SOFTWARE\Microsoft\Windows NT\CurrentVersion`
	d.Edition = getRegistryString(registry.LOCAL_MACHINE, currentVersion, "EditionID")
	if display := getRegistryString(registry.LOCAL_MACHINE, currentVersion, "DisplayVersion"); display != "" && d.Version != "" {
		d.Version = d.Version + " (" + display + ")"
	}
	if d.Name == "" {
		d.Name = getRegistryString(registry.LOCAL_MACHINE, currentVersion, "ProductName")
	}
	d.Locale = getRegistryString(registry.CURRENT_USER, `Control Panel\International`, "LocaleName")
	d.IsAdmin = windows.GetCurrentProcessToken().IsElevated()
	return d, nil
}

// uninstallKeys are the registry roots that list installed software.
var uninstallKeys = []struct {
	root registry.Key
	path string
}{
	{registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.CURRENT_USER, `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`},
}

// InstalledApps enumerates the Uninstall keys. Entries without a display
// name and system components are skipped; duplicates across hives collapse.
func (p *WindowsPlatform) InstalledApps(ctx context.Context) ([]App, error) {
	seen := make(map[string]bool)
	var apps []App
	for _, u := range uninstallKeys {
		k, err := registry.OpenKey(u.root, u.path, registry.ENUMERATE_SUB_KEYS)
		if err != nil {
			continue
		}
		names, err := k.ReadSubKeyNames(-1)
		_ = k.Close()
		if err != nil {
			continue
		}
		for _, name := range names {
			if ctx.Err() != nil {
				return apps, ctx.Err()
			}
			sub, err := registry.OpenKey(u.root, u.path+`\`+name, registry.QUERY_VALUE)
			if err != nil {
				continue
			}
			display, _, _ := sub.GetStringValue("DisplayName")
			system, _, _ := sub.GetIntegerValue("SystemComponent")
			app := App{Name: strings.TrimSpace(display)}
			app.Version, _, _ = sub.GetStringValue("DisplayVersion")
			app.Publisher, _, _ = sub.GetStringValue("Publisher")
			app.Path, _, _ = sub.GetStringValue("InstallLocation")
			_ = sub.Close()

			if app.Name == "" || system == 1 {
				continue
			}
			key := app.Name + "\x00" + app.Version
			if seen[key] {
				continue
			}
			seen[key] = true
			apps = append(apps, app)
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].Name) < strings.ToLower(apps[j].Name)
	})
	return apps, nil
}

// WindowTitles maps owning process IDs to the title of their first visible
// top-level window.
func (p *WindowsPlatform) WindowTitles(ctx context.Context) (map[int32]string, error) {
	titles := make(map[int32]string)
	cb := windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		if !windows.IsWindowVisible(hwnd) {
			return 1
		}
		var pid uint32
		if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil || pid == 0 {
			return 1
		}
		if _, ok := titles[int32(pid)]; ok {
			return 1
		}
		buf := make([]uint16, 512)
		n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if n > 0 {
			titles[int32(pid)] = syscall.UTF16ToString(buf[:n])
		}
		return 1
	})
	if err := windows.EnumWindows(cb, nil); err != nil {
		return titles, fmt.Errorf("EnumWindows: %w", err)
	}
	return titles, nil
}

type win32Fan struct {
	Name          string
	DeviceID      string
	ActiveCooling bool
	DesiredSpeed  uint64
	VariableSpeed bool
}

// Fans reads Win32_Fan. Most firmware does not populate DesiredSpeed, in
// which case the RPM stays unknown.
func (p *WindowsPlatform) Fans(ctx context.Context) ([]Fan, error) {
	var rows []win32Fan
	if err := p.query(ctx, "SELECT Name, DeviceID, ActiveCooling, DesiredSpeed, VariableSpeed FROM Win32_Fan", &rows); err != nil {
		return nil, fmt.Errorf("Win32_Fan: %w", err)
	}
	fans := make([]Fan, 0, len(rows))
	for _, r := range rows {
		f := Fan{
			Name:         strings.TrimSpace(r.Name),
			RPM:          -1,
			MaxRPM:       -1,
			Location:     r.DeviceID,
			Controllable: r.VariableSpeed,
		}
		if r.DesiredSpeed > 0 {
			f.RPM = int(r.DesiredSpeed)
		}
		fans = append(fans, f)
	}
	return fans, nil
}

// getRegistryString reads a string value, returning "" on any error.
func getRegistryString(root registry.Key, path, name string) string {
	k, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer k.Close()
	v, _, err := k.GetStringValue(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

// getRegistryInt reads a DWORD/QWORD value, returning 0 on any error.
func getRegistryInt(root registry.Key, path, name string) uint64 {
	k, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return 0
	}
	defer k.Close()
	v, _, err := k.GetIntegerValue(name)
	if err != nil {
		return 0
	}
	return v
}
