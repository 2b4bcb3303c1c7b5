package platform

import (
	"reflect"
	"testing"
)

const smartBatteryDischarging = `+-o AppleSmartBattery  <class AppleSmartBattery, id 0x100000296, registered, matched, active, busy 0 (0 ms), retain 7>
    {
      "Voltage" = 12552
      "IsCharging" = No
      "ExternalConnected" = No
      "FullyCharged" = No
      "DesignCapacity" = 5103
      "MaxCapacity" = 100
      "AppleRawMaxCapacity" = 4435
      "NominalChargeCapacity" = 4560
      "CurrentCapacity" = 80
      "AppleRawCurrentCapacity" = 3548
      "CycleCount" = 212
      "Temperature" = 3051
      "AvgTimeToFull" = 65535
      "TimeRemaining" = 312
      "InstantAmperage" = 18446744073709550616
      "Serial" = "F8Y2347019N1Q7FAK"
      "DeviceName" = "bq40z651"
    }`

const powerProfile = `Power:

    Battery Information:

      Model Information:
          Serial Number: F8Y2347019N1Q7FAK
          Manufacturer: SMP
          Device Name: bq40z651
`

func TestParseSmartBattery(t *testing.T) {
	r := parseSmartBattery(smartBatteryDischarging, powerProfile)

	if !r.Present {
		t.Fatal("Present = false, want true")
	}
	if r.Percent != 80 {
		t.Errorf("Percent = %v, want 80", r.Percent)
	}
	if r.Charging || r.ExternalConnected || r.FullyCharged {
		t.Errorf("charging=%v external=%v full=%v, want all false", r.Charging, r.ExternalConnected, r.FullyCharged)
	}
	if !r.StatusKnown {
		t.Error("StatusKnown = false, want true")
	}
	if r.DesignCapacity != 5103 || r.RawMaxCapacity != 4435 || r.NominalCapacity != 4560 {
		t.Errorf("capacities = %d/%d/%d", r.DesignCapacity, r.RawMaxCapacity, r.NominalCapacity)
	}
	if r.CurrentCapacity != 3548 {
		t.Errorf("CurrentCapacity = %d, want raw 3548", r.CurrentCapacity)
	}
	if r.CycleCount != 212 {
		t.Errorf("CycleCount = %d, want 212", r.CycleCount)
	}
	if r.TemperatureC != 30.51 {
		t.Errorf("TemperatureC = %v, want 30.51", r.TemperatureC)
	}
	if r.TimeToFull != -1 {
		t.Errorf("TimeToFull = %d, want -1 for the calculating marker", r.TimeToFull)
	}
	if r.TimeRemaining != 312 {
		t.Errorf("TimeRemaining = %d, want 312", r.TimeRemaining)
	}
	if r.DischargeRateMW != 12552 || r.ChargeRateMW != -1 {
		t.Errorf("rates charge=%d discharge=%d, want -1/12552", r.ChargeRateMW, r.DischargeRateMW)
	}
	if r.Manufacturer != "SMP" {
		t.Errorf("Manufacturer = %q, want SMP", r.Manufacturer)
	}
	if r.Name != "bq40z651" {
		t.Errorf("Name = %q", r.Name)
	}
	if r.SerialNumber != "F8Y2347019N1Q7FAK" {
		t.Errorf("SerialNumber = %q", r.SerialNumber)
	}
}

func TestParseSmartBattery_ManufacturerFallback(t *testing.T) {
	r := parseSmartBattery(smartBatteryDischarging, "")
	if r.Manufacturer != "Apple Inc." {
		t.Errorf("Manufacturer = %q, want Apple Inc.", r.Manufacturer)
	}
}

func TestParseSmartBattery_NoBattery(t *testing.T) {
	r := parseSmartBattery("", "")
	if r.Present {
		t.Error("Present = true for empty ioreg output")
	}
	if r.Percent != -1 || r.CycleCount != -1 {
		t.Errorf("unknown fields = %v/%d, want -1", r.Percent, r.CycleCount)
	}
}

const displaysProfile = `Graphics/Displays:

    Intel Iris Plus Graphics 640:

      Chipset Model: Intel Iris Plus Graphics 640
      Type: GPU
      Bus: Built-In
      VRAM (Dynamic, Max): 1536 MB
      Vendor: Intel
      Device ID: 0x5926
      Metal Family: Supported, Metal GPUFamily macOS 2
      Displays:
        Color LCD:
          Resolution: 2560 x 1600 Retina

    Apple M1:

      Chipset Model: Apple M1
      Type: GPU
      Bus: Built-In
      Total Number of Cores: 8
      Vendor: Apple (0x106b)
      Metal Support: Metal 3
      Displays:
        LG UltraFine:
          Resolution: 1920 x 1080 @ 59.94Hz
`

func TestParseDisplays(t *testing.T) {
	gpus := parseDisplays(displaysProfile)
	if len(gpus) != 2 {
		t.Fatalf("got %d adapters, want 2", len(gpus))
	}

	intel := gpus[0]
	if intel.Name != "Intel Iris Plus Graphics 640" || intel.Vendor != "Intel" {
		t.Errorf("intel = %q/%q", intel.Name, intel.Vendor)
	}
	if intel.VRAMBytes != 1536<<20 {
		t.Errorf("intel VRAM = %d, want %d", intel.VRAMBytes, 1536<<20)
	}
	if intel.DeviceID != 0x5926 {
		t.Errorf("intel DeviceID = %#x", intel.DeviceID)
	}
	if intel.Cores != -1 || intel.RefreshRate != -1 {
		t.Errorf("intel cores=%d refresh=%d, want -1/-1", intel.Cores, intel.RefreshRate)
	}
	if intel.Metal != "Supported, Metal GPUFamily macOS 2" {
		t.Errorf("intel Metal = %q", intel.Metal)
	}

	m1 := gpus[1]
	if m1.Vendor != "Apple" || m1.VendorID != 0x106b {
		t.Errorf("m1 vendor = %q %#x", m1.Vendor, m1.VendorID)
	}
	if m1.Cores != 8 {
		t.Errorf("m1 cores = %d, want 8", m1.Cores)
	}
	if m1.Metal != "Metal 3" {
		t.Errorf("m1 Metal = %q", m1.Metal)
	}
	if m1.RefreshRate != 60 {
		t.Errorf("m1 refresh = %d, want 60", m1.RefreshRate)
	}
}

func TestSplitVendor(t *testing.T) {
	tests := []struct {
		in     string
		name   string
		vendor uint32
	}{
		{"Apple (0x106b)", "Apple", 0x106b},
		{"sppci_vendor_Apple", "Apple", 0},
		{"ATI (0x1002)", "ATI", 0x1002},
		{"", "", 0},
	}
	for _, tt := range tests {
		name, id := splitVendor(tt.in)
		if name != tt.name || id != tt.vendor {
			t.Errorf("splitVendor(%q) = %q, %#x; want %q, %#x", tt.in, name, id, tt.name, tt.vendor)
		}
	}
}

func TestParseAccelerator(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want GPUActivity
		ok   bool
	}{
		{
			name: "device utilization",
			in:   `"PerformanceStatistics" = {"Device Utilization %"=37,"Renderer Utilization %"=35}`,
			want: GPUActivity{Direct: true, Percent: 37},
			ok:   true,
		},
		{
			name: "busy counter",
			in:   `"PerformanceStatistics" = {"fBusyCount"=123456}`,
			want: GPUActivity{BusyCount: 123456},
			ok:   true,
		},
		{name: "nothing", in: `"IOClass" = "AGXAccelerator"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAccelerator(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseAccelerator = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"8 GB", 8 << 30},
		{"1536 MB", 1536 << 20},
		{"500.28 GB (500277792768 Bytes)", 500277792768},
		{"1 TB", 1 << 40},
		{"Empty", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseSize(tt.in); got != tt.want {
			t.Errorf("parseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

const intelMemoryProfile = `Memory:

    Memory Slots:

      ECC: Disabled
      Upgradeable Memory: Yes

        BANK 0/ChannelA-DIMM0:

          Size: 8 GB
          Type: DDR4
          Speed: 2667 MHz
          Status: OK
          Manufacturer: 0x802C
          Part Number: 0x3136415453463147363448
          Serial Number: 0x12345678

        BANK 2/ChannelB-DIMM0:

          Size: Empty
          Type: Empty
          Speed: Empty
`

const unifiedMemoryProfile = `Memory:

      Memory: 16 GB
      Type: LPDDR4
      Manufacturer: Hynix
`

func TestParseMemoryProfile_Slots(t *testing.T) {
	layout := parseMemoryProfile(intelMemoryProfile)
	if layout.TotalSlots != 2 {
		t.Errorf("TotalSlots = %d, want 2", layout.TotalSlots)
	}
	if len(layout.Modules) != 1 {
		t.Fatalf("got %d modules, want 1 (empty bank skipped)", len(layout.Modules))
	}
	want := MemoryModule{
		Slot:          "BANK 0/ChannelA-DIMM0",
		Manufacturer:  "0x802C",
		PartNumber:    "0x3136415453463147363448",
		SerialNumber:  "0x12345678",
		CapacityBytes: 8 << 30,
		SpeedMHz:      2667,
		Type:          "DDR4",
	}
	if !reflect.DeepEqual(layout.Modules[0], want) {
		t.Errorf("module = %+v\nwant     %+v", layout.Modules[0], want)
	}
}

func TestParseMemoryProfile_Unified(t *testing.T) {
	layout := parseMemoryProfile(unifiedMemoryProfile)
	if layout.TotalSlots != 1 || len(layout.Modules) != 1 {
		t.Fatalf("layout = %+v", layout)
	}
	m := layout.Modules[0]
	if m.CapacityBytes != 16<<30 || m.Type != "LPDDR4" || m.Manufacturer != "Hynix" {
		t.Errorf("module = %+v", m)
	}
	if m.SpeedMHz != -1 {
		t.Errorf("SpeedMHz = %d, want -1", m.SpeedMHz)
	}
}

func TestParseHardwareModel(t *testing.T) {
	out := "Hardware:\n\n    Hardware Overview:\n\n      Model Name: MacBook Air\n      Chip: Apple M1\n"
	if got := parseHardwareModel(out); got != "MacBook Air (Apple M1)" {
		t.Errorf("parseHardwareModel = %q", got)
	}
	intel := "      Model Name: MacBook Pro\n      Processor Name: Quad-Core Intel Core i7\n"
	if got := parseHardwareModel(intel); got != "MacBook Pro (Quad-Core Intel Core i7)" {
		t.Errorf("parseHardwareModel = %q", got)
	}
}

func TestParseAppleLanguages(t *testing.T) {
	out := "(\n    \"en-US\",\n    \"pl-PL\"\n)\n"
	if got := parseAppleLanguages(out); got != "en-US" {
		t.Errorf("parseAppleLanguages = %q, want en-US", got)
	}
	if got := parseAppleLanguages(""); got != "" {
		t.Errorf("parseAppleLanguages(empty) = %q", got)
	}
}

func TestParseMdfind(t *testing.T) {
	out := "/Applications/Safari.app\n/Applications/calculator.app\n/System/Library/foo.bundle\n/Applications/Safari.app\n\n"
	apps := parseMdfind(out)
	want := []App{
		{Name: "calculator", Path: "/Applications/calculator.app"},
		{Name: "Safari", Path: "/Applications/Safari.app"},
	}
	if !reflect.DeepEqual(apps, want) {
		t.Errorf("parseMdfind = %+v, want %+v", apps, want)
	}
}

const diskutilWhole = `   Device Identifier:         disk0
   Device Node:               /dev/disk0
   Whole:                     Yes
   Part of Whole:             disk0
   Device / Media Name:       APPLE SSD AP0512Q

   Protocol:                  Apple Fabric
   SMART Status:              Verified

   Disk Size:                 500.3 GB (500277790720 Bytes) (exactly 977105060 512-Byte-Units)
   Device Block Size:         4096 Bytes

   Solid State:               Yes
`

func TestParseDiskutilInfo(t *testing.T) {
	kvs := parseDiskutilInfo(diskutilWhole)
	want := []KeyValue{
		{"Device Identifier", "disk0"},
		{"Device Node", "/dev/disk0"},
		{"Part of Whole", "disk0"},
		{"Device / Media Name", "APPLE SSD AP0512Q"},
		{"Protocol", "Apple Fabric"},
		{"SMART Status", "Verified"},
		{"Disk Size", "500.3 GB (500277790720 Bytes) (exactly 977105060 512-Byte-Units)"},
		{"Device Block Size", "4096 Bytes"},
		{"Solid State", "Yes"},
	}
	if !reflect.DeepEqual(kvs, want) {
		t.Errorf("parseDiskutilInfo =\n%+v\nwant\n%+v", kvs, want)
	}
}

func TestPhysicalDiskFromDiskutil(t *testing.T) {
	d := physicalDiskFromDiskutil(0, "disk0", diskutilWhole)
	if d.Model != "APPLE SSD AP0512Q" {
		t.Errorf("Model = %q", d.Model)
	}
	if d.SizeBytes != 500277790720 {
		t.Errorf("SizeBytes = %d", d.SizeBytes)
	}
	if d.MediaType != "NVMe" {
		t.Errorf("MediaType = %q, want NVMe", d.MediaType)
	}
	if d.SmartStatus != "Verified" || d.IOName != "disk0" {
		t.Errorf("smart=%q io=%q", d.SmartStatus, d.IOName)
	}
}

const diskutilList = `/dev/disk0 (internal, physical):
   #:                       TYPE NAME                    SIZE       IDENTIFIER
   0:      GUID_partition_scheme                        *500.3 GB   disk0
   1:             Apple_APFS_ISC Container disk1         524.3 MB   disk0s1
   2:                 Apple_APFS Container disk3         494.4 GB   disk0s2

/dev/disk3 (synthesized):
   #:                       TYPE NAME                    SIZE       IDENTIFIER
   0:      APFS Container Scheme -                      +494.4 GB   disk3
                                 Physical Store disk0s2
   1:                APFS Volume Macintosh HD            10.2 GB    disk3s1

/dev/disk4 (external, physical):
   #:                       TYPE NAME                    SIZE       IDENTIFIER
   0:     FDisk_partition_scheme                        *64.0 GB    disk4

/dev/disk5 (disk image):
   #:                       TYPE NAME                    SIZE       IDENTIFIER
   0:      GUID_partition_scheme                        +1.2 GB     disk5
`

func TestParseDiskutilList(t *testing.T) {
	physical, containers := parseDiskutilList(diskutilList)
	if !reflect.DeepEqual(physical, []string{"disk0", "disk4"}) {
		t.Errorf("physical = %v", physical)
	}
	if !reflect.DeepEqual(containers, map[string]string{"disk3": "disk0"}) {
		t.Errorf("containers = %v", containers)
	}
}

func TestWholeDisk(t *testing.T) {
	tests := map[string]string{
		"/dev/disk3s1s1": "disk3",
		"disk0s2":        "disk0",
		"disk12":         "disk12",
		"/dev/sda1":      "",
		"disk":           "",
	}
	for in, want := range tests {
		if got := wholeDisk(in); got != want {
			t.Errorf("wholeDisk(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseZoneLink(t *testing.T) {
	if got := parseZoneLink("/var/db/timezone/zoneinfo/Europe/Warsaw"); got != "Europe/Warsaw" {
		t.Errorf("parseZoneLink = %q", got)
	}
	if got := parseZoneLink("/etc/somewhere"); got != "" {
		t.Errorf("parseZoneLink = %q, want empty", got)
	}
}
