// Package platform provides an OS abstraction layer for hardware queries.
//
// Host wraps the cross-platform gopsutil calls; Platform covers everything
// gopsutil cannot answer (battery registry, display adapters, memory modules,
// installed applications, fans). Each supported OS implements Platform in its
// own build-tagged file. The text and table parsers those implementations
// rely on live in untagged files so they are tested on every OS.
//
// Raw readings use -1 for unknown integers and "" for unknown strings;
// collectors turn those into the public sentinels.
package platform

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by Platform methods the current OS does not
// implement.
var ErrUnsupported = errors.New("not supported on this platform")

// Platform provides OS-specific functionality beyond what gopsutil offers.
type Platform interface {
	// Name returns the platform identifier (darwin, windows, linux, stub).
	Name() string

	// Battery reads the primary battery. Present is false on desktops.
	Battery(ctx context.Context) (BatteryReading, error)

	// CPUDetails returns processor facts gopsutil does not expose.
	CPUDetails(ctx context.Context) (CPUDetails, error)

	// GPUs enumerates display adapters.
	GPUs(ctx context.Context) ([]GPUAdapter, error)

	// GPUActivity returns either a direct utilization percentage or a
	// cumulative busy counter for the primary GPU.
	GPUActivity(ctx context.Context) (GPUActivity, error)

	// GPUTemperature returns GPU temperature if available.
	// Returns nil if GPU temperature cannot be determined.
	GPUTemperature(ctx context.Context) (*float64, error)

	// PhysicalDisks enumerates storage devices and their mount points.
	PhysicalDisks(ctx context.Context) ([]PhysicalDisk, error)

	// VolumeDetails returns a key/value inventory of the volume at path.
	VolumeDetails(ctx context.Context, path string) ([]KeyValue, error)

	// MemoryLayout returns the memory slot inventory.
	MemoryLayout(ctx context.Context) (MemoryLayout, error)

	// OSDetails returns naming, locale and machine model information.
	OSDetails(ctx context.Context) (OSDetails, error)

	// InstalledApps lists registered applications.
	InstalledApps(ctx context.Context) ([]App, error)

	// WindowTitles maps process IDs to the title of their main window.
	WindowTitles(ctx context.Context) (map[int32]string, error)

	// Fans enumerates cooling fans.
	Fans(ctx context.Context) ([]Fan, error)
}

// BatteryReading is the raw battery state as the OS reports it.
type BatteryReading struct {
	Present           bool
	Name              string
	Manufacturer      string
	SerialNumber      string
	Chemistry         string
	Charging          bool
	ExternalConnected bool
	FullyCharged      bool
	StatusKnown       bool
	Percent           float64
	DesignCapacity    int
	MaxCapacity       int
	NominalCapacity   int
	RawMaxCapacity    int
	CurrentCapacity   int
	CapacityUnit      string
	CycleCount        int
	VoltageMV         int
	TemperatureC      float64
	ChargeRateMW      int
	DischargeRateMW   int
	TimeRemaining     int
	TimeToFull        int
	AdapterWatts      int
	LastFullCharge    string
}

// NewBatteryReading returns a reading with every numeric field unknown.
func NewBatteryReading() BatteryReading {
	return BatteryReading{
		Percent:         -1,
		DesignCapacity:  -1,
		MaxCapacity:     -1,
		NominalCapacity: -1,
		RawMaxCapacity:  -1,
		CurrentCapacity: -1,
		CycleCount:      -1,
		VoltageMV:       -1,
		TemperatureC:    -1,
		ChargeRateMW:    -1,
		DischargeRateMW: -1,
		TimeRemaining:   -1,
		TimeToFull:      -1,
		AdapterWatts:    -1,
	}
}

// CPUDetails holds processor facts beyond gopsutil's cpu.Info.
type CPUDetails struct {
	Name             string
	Vendor           string
	Architecture     string
	Socket           string
	BaseClockMHz     float64
	MaxClockMHz      float64
	CurrentClockMHz  float64
	L1Cache          uint64
	L2Cache          uint64
	L3Cache          uint64
	PhysicalCores    int
	LogicalCores     int
	PerformanceCores int
	EfficiencyCores  int
}

// GPUAdapter is one display adapter.
type GPUAdapter struct {
	Name          string
	Vendor        string
	VendorID      uint32
	DeviceID      uint32
	VRAMBytes     uint64
	DriverVersion string
	DriverDate    string
	Bus           string
	Metal         string
	Processor     string
	Resolution    string
	Cores         int
	RefreshRate   int
}

// GPUActivity is a utilization reading. When Direct is set, Percent is the
// OS-computed utilization; otherwise BusyCount is a cumulative counter that
// must be differenced over time.
type GPUActivity struct {
	Direct    bool
	Percent   float64
	BusyCount uint64
}

// PhysicalDisk is one storage device as the OS enumerates it.
type PhysicalDisk struct {
	Index        int
	Model        string
	SerialNumber string
	MediaType    string
	Interface    string
	SizeBytes    uint64
	SmartStatus  string
	// Devices are partition device names or mount points (C:, /dev/disk3s1)
	// belonging to this disk.
	Devices []string
	// IOName is the key of this disk in gopsutil's IO counters map.
	IOName string
}

// KeyValue is one ordered inventory line.
type KeyValue struct {
	Key   string
	Value string
}

// MemoryLayout is the memory slot inventory.
type MemoryLayout struct {
	TotalSlots int
	Modules    []MemoryModule
}

// MemoryModule is one populated slot.
type MemoryModule struct {
	Slot          string
	Manufacturer  string
	PartNumber    string
	SerialNumber  string
	CapacityBytes uint64
	SpeedMHz      int
	Type          string
	FormFactor    string
}

// OSDetails complements gopsutil's host.Info.
type OSDetails struct {
	Name        string
	Version     string
	Build       string
	Edition     string
	Model       string
	Locale      string
	Domain      string
	InstallDate string
	IsAdmin     bool
	// VirtualMachine is set when the hardware identity names a hypervisor.
	VirtualMachine bool
}

// App is one installed application.
type App struct {
	Name      string
	Version   string
	Publisher string
	Path      string
}

// Fan is one cooling fan.
type Fan struct {
	Name         string
	RPM          int
	MaxRPM       int
	Location     string
	Controllable bool
}
