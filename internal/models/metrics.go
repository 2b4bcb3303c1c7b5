// Package models defines the report records returned by every collector.
// These structures are serialized to JSON for the FFI host, the CLI and the
// local HTTP API. Fields whose source is unavailable carry a sentinel value
// (Unknown, -1 or 0) rather than being omitted.
package models

import "time"

// Unknown is the sentinel for string fields the OS could not supply.
const Unknown = "Unknown"

// NotAvailable is the sentinel for counts, capacities and temperatures.
const NotAvailable = -1

// BatteryInfo describes the primary battery.
type BatteryInfo struct {
	IsPresent          bool    `json:"isPresent"`
	Name               string  `json:"name"`
	Manufacturer       string  `json:"manufacturer"`
	SerialNumber       string  `json:"serialNumber"`
	Chemistry          string  `json:"chemistry"`
	Status             string  `json:"status"`
	IsCharging         bool    `json:"isCharging"`
	IsACConnected      bool    `json:"isACConnected"`
	Percentage         float64 `json:"percentage"`
	DesignCapacity     int     `json:"designCapacity"`
	MaxCapacity        int     `json:"maxCapacity"`
	CurrentCapacity    int     `json:"currentCapacity"`
	CapacityUnit       string  `json:"capacityUnit"`
	CycleCount         int     `json:"cycleCount"`
	Voltage            int     `json:"voltage"`
	Temperature        float64 `json:"temperature"`
	ChargeRate         int     `json:"chargeRate"`
	DischargeRate      int     `json:"dischargeRate"`
	HealthPercentage   float64 `json:"healthPercentage"`
	Health             string  `json:"health"`
	TimeRemaining      int     `json:"timeRemaining"`
	TimeToFullCharge   int     `json:"timeToFullCharge"`
	AdapterWatts       int     `json:"adapterWatts"`
	IsLowBattery       bool    `json:"isLowBattery"`
	LastFullChargeTime string  `json:"lastFullChargeTime"`
}

// CPUInfo describes the processor package.
type CPUInfo struct {
	Name              string   `json:"name"`
	Vendor            string   `json:"vendor"`
	Architecture      string   `json:"architecture"`
	Socket            string   `json:"socket"`
	PhysicalCores     int      `json:"physicalCores"`
	LogicalCores      int      `json:"logicalCores"`
	PerformanceCores  int      `json:"performanceCores"`
	EfficiencyCores   int      `json:"efficiencyCores"`
	HyperThreading    bool     `json:"hyperThreading"`
	BaseClockSpeed    float64  `json:"baseClockSpeed"`
	MaxClockSpeed     float64  `json:"maxClockSpeed"`
	CurrentClockSpeed float64  `json:"currentClockSpeed"`
	L1CacheSize       uint64   `json:"l1CacheSize"`
	L2CacheSize       uint64   `json:"l2CacheSize"`
	L3CacheSize       uint64   `json:"l3CacheSize"`
	Features          []string `json:"features"`
	Temperature       float64  `json:"temperature"`
	UsagePercentage   float64  `json:"usagePercentage"`
}

// GPUInfo describes a single display adapter.
type GPUInfo struct {
	Name              string  `json:"name"`
	Vendor            string  `json:"vendor"`
	VendorID          uint32  `json:"vendorId"`
	DeviceID          uint32  `json:"deviceId"`
	VRAM              uint64  `json:"vram"`
	VRAMFormatted     string  `json:"vramFormatted"`
	DriverVersion     string  `json:"driverVersion"`
	DriverDate        string  `json:"driverDate"`
	Bus               string  `json:"bus"`
	MetalSupport      string  `json:"metalSupport"`
	Cores             int     `json:"cores"`
	IsIntegrated      bool    `json:"isIntegrated"`
	RefreshRate       int     `json:"refreshRate"`
	CurrentResolution string  `json:"currentResolution"`
	Processor         string  `json:"processor"`
	Temperature       float64 `json:"temperature"`
	UsagePercentage   float64 `json:"usagePercentage"`
}

// DiskUsage reports space on the filesystem holding a path.
type DiskUsage struct {
	Path           string  `json:"path"`
	FileSystem     string  `json:"fileSystem"`
	TotalBytes     uint64  `json:"totalBytes"`
	UsedBytes      uint64  `json:"usedBytes"`
	FreeBytes      uint64  `json:"freeBytes"`
	TotalFormatted string  `json:"totalFormatted"`
	UsedFormatted  string  `json:"usedFormatted"`
	FreeFormatted  string  `json:"freeFormatted"`
	UsedPercentage float64 `json:"usedPercentage"`
}

// Partition is a mounted volume on a physical disk.
type Partition struct {
	Device             string  `json:"device"`
	MountPoint         string  `json:"mountPoint"`
	FileSystem         string  `json:"fileSystem"`
	TotalSize          uint64  `json:"totalSize"`
	TotalSizeFormatted string  `json:"totalSizeFormatted"`
	FreeSpace          uint64  `json:"freeSpace"`
	FreeSpaceFormatted string  `json:"freeSpaceFormatted"`
	UsedPercentage     float64 `json:"usedPercentage"`
	IsSystemPartition  bool    `json:"isSystemPartition"`
	IsReadOnly         bool    `json:"isReadOnly"`
}

// PhysicalDisk is a storage device with its partitions.
type PhysicalDisk struct {
	Index         int         `json:"index"`
	Model         string      `json:"model"`
	SerialNumber  string      `json:"serialNumber"`
	MediaType     string      `json:"mediaType"`
	IsSSD         bool        `json:"isSSD"`
	Interface     string      `json:"interface"`
	Size          uint64      `json:"size"`
	SizeFormatted string      `json:"sizeFormatted"`
	ReadSpeed     uint64      `json:"readSpeed"`
	WriteSpeed    uint64      `json:"writeSpeed"`
	SmartStatus   string      `json:"smartStatus"`
	Partitions    []Partition `json:"partitions"`
}

// DiskSpeed is the outcome of a sequential read/write benchmark.
type DiskSpeed struct {
	Path          string  `json:"path"`
	TestSize      uint64  `json:"testSize"`
	WriteSpeed    float64 `json:"writeSpeed"`
	ReadSpeed     float64 `json:"readSpeed"`
	WriteDuration string  `json:"writeDuration"`
	ReadDuration  string  `json:"readDuration"`
}

// VolumeDetails is an ordered key/value inventory of one volume.
type VolumeDetails struct {
	Path   string            `json:"path"`
	Fields map[string]string `json:"fields"`
}

// MemoryModule is one populated memory slot.
type MemoryModule struct {
	Slot         string `json:"slot"`
	Manufacturer string `json:"manufacturer"`
	PartNumber   string `json:"partNumber"`
	SerialNumber string `json:"serialNumber"`
	Capacity     uint64 `json:"capacity"`
	Speed        int    `json:"speed"`
	Type         string `json:"type"`
	FormFactor   string `json:"formFactor"`
}

// RAMInfo describes physical and swap memory.
type RAMInfo struct {
	TotalPhysical          uint64         `json:"totalPhysical"`
	AvailablePhysical      uint64         `json:"availablePhysical"`
	UsedPhysical           uint64         `json:"usedPhysical"`
	FreePhysical           uint64         `json:"freePhysical"`
	TotalPhysicalFormatted string         `json:"totalPhysicalFormatted"`
	UsedPhysicalFormatted  string         `json:"usedPhysicalFormatted"`
	UsagePercentage        float64        `json:"usagePercentage"`
	Cached                 uint64         `json:"cached"`
	SwapTotal              uint64         `json:"swapTotal"`
	SwapUsed               uint64         `json:"swapUsed"`
	SwapFree               uint64         `json:"swapFree"`
	MemoryType             string         `json:"memoryType"`
	MemorySpeed            int            `json:"memorySpeed"`
	TotalSlots             int            `json:"totalSlots"`
	UsedSlots              int            `json:"usedSlots"`
	CASLatency             int            `json:"casLatency"`
	Modules                []MemoryModule `json:"modules"`
}

// OSInfo describes the operating system and session.
type OSInfo struct {
	Name                 string `json:"name"`
	Version              string `json:"version"`
	BuildNumber          string `json:"buildNumber"`
	Edition              string `json:"edition"`
	KernelVersion        string `json:"kernelVersion"`
	Architecture         string `json:"architecture"`
	Hostname             string `json:"hostname"`
	Username             string `json:"username"`
	Domain               string `json:"domain"`
	Model                string `json:"model"`
	Locale               string `json:"locale"`
	TimeZone             string `json:"timeZone"`
	InstallDate          string `json:"installDate"`
	BootTime             string `json:"bootTime"`
	Uptime               uint64 `json:"uptime"`
	UptimeFormatted      string `json:"uptimeFormatted"`
	IsAdmin              bool   `json:"isAdmin"`
	IsVirtualMachine     bool   `json:"isVirtualMachine"`
	VirtualizationSystem string `json:"virtualizationSystem"`
}

// ProcessInfo represents a single running process.
type ProcessInfo struct {
	PID              int32   `json:"pid"`
	ParentPID        int32   `json:"parentPid"`
	Name             string  `json:"name"`
	Path             string  `json:"path"`
	Username         string  `json:"username"`
	Kind             string  `json:"kind"`
	ThreadCount      int32   `json:"threadCount"`
	MemoryUsage      uint64  `json:"memoryUsage"`
	MemoryPercentage float64 `json:"memoryPercentage"`
	CPUUsage         float64 `json:"cpuUsage"`
	StartTime        string  `json:"startTime"`
	State            string  `json:"state"`
	WindowTitle      string  `json:"windowTitle"`
}

// InstalledApp is an application registered with the OS.
type InstalledApp struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Publisher string `json:"publisher"`
	Path      string `json:"path"`
}

// FanInfo describes a cooling fan.
type FanInfo struct {
	Name               string  `json:"name"`
	CurrentSpeed       int     `json:"currentSpeed"`
	MaxSpeed           int     `json:"maxSpeed"`
	Percentage         float64 `json:"percentage"`
	Location           string  `json:"location"`
	IsControlAvailable bool    `json:"isControlAvailable"`
}

// NetworkInterface is one network adapter.
type NetworkInterface struct {
	Name      string   `json:"name"`
	MAC       string   `json:"mac"`
	Addresses []string `json:"addresses"`
	Flags     []string `json:"flags"`
	BytesSent uint64   `json:"bytesSent"`
	BytesRecv uint64   `json:"bytesRecv"`
}

// NetworkInfo holds adapters and the traffic seen since the previous call.
type NetworkInfo struct {
	Hostname   string             `json:"hostname"`
	Interfaces []NetworkInterface `json:"interfaces"`
	RxBytes    uint64             `json:"rxBytes"`
	TxBytes    uint64             `json:"txBytes"`
}

// Temperature holds thermal sensor readings.
// Nil pointers indicate the sensor was not found.
type Temperature struct {
	CPUTemp *float64 `json:"cpuTemp"`
	GPUTemp *float64 `json:"gpuTemp"`
}

// Snapshot represents a single point-in-time collection of all reports.
type Snapshot struct {
	Timestamp   time.Time      `json:"timestamp"`
	Battery     *BatteryInfo   `json:"battery,omitempty"`
	CPU         *CPUInfo       `json:"cpu,omitempty"`
	CPUUsage    float64        `json:"cpuUsage"`
	GPUs        []GPUInfo      `json:"gpus"`
	GPUUsage    float64        `json:"gpuUsage"`
	Disks       []PhysicalDisk `json:"disks"`
	RAM         *RAMInfo       `json:"ram,omitempty"`
	OS          *OSInfo        `json:"os,omitempty"`
	Processes   []ProcessInfo  `json:"processes"`
	Fans        []FanInfo      `json:"fans"`
	Network     *NetworkInfo   `json:"network,omitempty"`
	Temperature *Temperature   `json:"temperature,omitempty"`
}
