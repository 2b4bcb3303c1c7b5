package platform

import (
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/Guliveer/hwprobe/internal/textscan"
)

// Parsers for macOS tool output. They are kept free of build tags so the
// fixtures in darwin_text_test.go run on every OS.

var (
	plist textscan.Plist
	colon textscan.Colon
)

// unknownCapacity is what AppleSmartBattery reports for "still calculating".
const unknownCapacity = 65535

// plistInt returns the numeric value of key, or -1.
func plistInt(blob, key string) int {
	v, ok := plist.Lookup(blob, key, textscan.Number)
	if !ok {
		return -1
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n > math.MaxInt32 {
		return -1
	}
	return int(n)
}

// plistSigned reads a counter ioreg prints as an unsigned 64-bit two's
// complement value (Amperage, InstantAmperage).
func plistSigned(blob, key string) (int64, bool) {
	v, ok := plist.Lookup(blob, key, textscan.Number)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return int64(n), true
}

func plistBool(blob, key string) (bool, bool) {
	v, ok := plist.Lookup(blob, key, textscan.Bool)
	return textscan.IsYes(v), ok
}

func plistText(blob, key string) string {
	v, _ := plist.Lookup(blob, key, textscan.Text)
	return v
}

func colonText(blob, key string) string {
	v, _ := colon.Lookup(blob, key, textscan.Text)
	return v
}

func colonInt(blob, key string) int {
	v, ok := colon.Lookup(blob, key, textscan.Number)
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// parseSmartBattery decodes `ioreg -rn AppleSmartBattery` output, enriched
// with `system_profiler SPPowerDataType` text for the manufacturer and serial.
func parseSmartBattery(ioreg, power string) BatteryReading {
	r := NewBatteryReading()
	if !strings.Contains(ioreg, "AppleSmartBattery") && plistInt(ioreg, "DesignCapacity") < 0 {
		return r
	}
	if installed, ok := plistBool(ioreg, "BatteryInstalled"); ok && !installed {
		return r
	}
	r.Present = true
	r.Name = plistText(ioreg, "DeviceName")
	r.CapacityUnit = "mAh"
	r.Chemistry = "Lithium Ion"

	charging, okCharging := plistBool(ioreg, "IsCharging")
	external, okExternal := plistBool(ioreg, "ExternalConnected")
	full, _ := plistBool(ioreg, "FullyCharged")
	r.Charging = charging
	r.ExternalConnected = external
	r.FullyCharged = full || (external && !charging)
	r.StatusKnown = okCharging || okExternal

	r.DesignCapacity = plistInt(ioreg, "DesignCapacity")
	r.MaxCapacity = plistInt(ioreg, "MaxCapacity")
	r.RawMaxCapacity = plistInt(ioreg, "AppleRawMaxCapacity")
	r.NominalCapacity = plistInt(ioreg, "NominalChargeCapacity")
	r.CycleCount = plistInt(ioreg, "CycleCount")
	r.VoltageMV = plistInt(ioreg, "Voltage")

	current := plistInt(ioreg, "CurrentCapacity")
	if current >= 0 && r.MaxCapacity > 0 {
		r.Percent = float64(current) / float64(r.MaxCapacity) * 100
	}
	r.CurrentCapacity = current
	if rawCurrent := plistInt(ioreg, "AppleRawCurrentCapacity"); rawCurrent >= 0 {
		r.CurrentCapacity = rawCurrent
	}

	if t := plistInt(ioreg, "Temperature"); t >= 0 {
		r.TemperatureC = float64(t) / 100
	}

	if v := plistInt(ioreg, "AvgTimeToFull"); v >= 0 && v != unknownCapacity {
		r.TimeToFull = v
	}
	if v := plistInt(ioreg, "TimeRemaining"); v >= 0 && v != unknownCapacity && !external {
		r.TimeRemaining = v
	} else if v := plistInt(ioreg, "AvgTimeToEmpty"); v >= 0 && v != unknownCapacity && !external {
		r.TimeRemaining = v
	}

	if w := plistInt(ioreg, "Watts"); w >= 0 {
		r.AdapterWatts = w
	}

	if amps, ok := plistSigned(ioreg, "InstantAmperage"); ok && r.VoltageMV > 0 {
		mw := int(math.Abs(float64(amps)) * float64(r.VoltageMV) / 1000)
		if amps > 0 {
			r.ChargeRateMW = mw
		} else if amps < 0 {
			r.DischargeRateMW = mw
		} else {
			r.ChargeRateMW, r.DischargeRateMW = 0, 0
		}
	}

	r.SerialNumber = plistText(ioreg, "Serial")
	if r.SerialNumber == "" {
		r.SerialNumber = colonText(power, "Serial Number")
	}
	r.Manufacturer = colonText(power, "Manufacturer")
	if r.Manufacturer == "" {
		r.Manufacturer = plistText(ioreg, "Manufacturer")
	}
	if r.Manufacturer == "" {
		r.Manufacturer = "Apple Inc."
	}
	if r.Name == "" {
		r.Name = colonText(power, "Device Name")
	}
	return r
}

// parseDisplays decodes `system_profiler SPDisplaysDataType`. Each
// "Chipset Model" block is one adapter.
func parseDisplays(out string) []GPUAdapter {
	var gpus []GPUAdapter
	for _, block := range textscan.Sections(out, "Chipset Model") {
		g := GPUAdapter{
			Name:        colonText(block, "Chipset Model"),
			Bus:         colonText(block, "Bus"),
			Cores:       colonInt(block, "Total Number of Cores"),
			RefreshRate: -1,
		}
		g.Metal = colonText(block, "Metal Support")
		if g.Metal == "" {
			g.Metal = colonText(block, "Metal Family")
		}
		if g.Metal == "" {
			g.Metal = colonText(block, "Metal")
		}

		vendor := colonText(block, "Vendor")
		g.Vendor, g.VendorID = splitVendor(vendor)

		for _, key := range []string{"VRAM (Total)", "VRAM (Dynamic, Max)"} {
			if v := colonText(block, key); v != "" {
				g.VRAMBytes = parseSize(v)
				break
			}
		}
		if id := colonText(block, "Device ID"); id != "" {
			if n, err := strconv.ParseUint(strings.TrimPrefix(id, "0x"), 16, 32); err == nil {
				g.DeviceID = uint32(n)
			}
		}
		if res := colonText(block, "Resolution"); res != "" {
			g.Resolution = res
			if at := strings.Index(res, "@"); at >= 0 {
				hz := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(res[at+1:]), "Hz"))
				if n, err := strconv.ParseFloat(strings.TrimSpace(hz), 64); err == nil {
					g.RefreshRate = int(math.Round(n))
				}
			}
		}
		if g.Name != "" {
			gpus = append(gpus, g)
		}
	}
	return gpus
}

// splitVendor turns "Intel (0x8086)" or "sppci_vendor_Apple" into a name and
// PCI vendor ID.
func splitVendor(v string) (string, uint32) {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "sppci_vendor_")
	var id uint32
	if open := strings.Index(v, "(0x"); open >= 0 {
		end := strings.Index(v[open:], ")")
		if end > 0 {
			if n, err := strconv.ParseUint(v[open+3:open+end], 16, 32); err == nil {
				id = uint32(n)
			}
		}
		v = strings.TrimSpace(v[:open])
	}
	return v, id
}

// parseAccelerator decodes `ioreg -r -d 1 -c IOAccelerator`. Modern drivers
// publish "Device Utilization %" inside PerformanceStatistics; older ones
// only a cumulative fBusyCount.
func parseAccelerator(out string) (GPUActivity, bool) {
	if v := plistInt(out, "Device Utilization %"); v >= 0 {
		return GPUActivity{Direct: true, Percent: float64(v)}, true
	}
	if v := plistInt(out, "GPU Activity(%)"); v >= 0 {
		return GPUActivity{Direct: true, Percent: float64(v)}, true
	}
	if v, ok := plistSigned(out, "fBusyCount"); ok && v >= 0 {
		return GPUActivity{BusyCount: uint64(v)}, true
	}
	return GPUActivity{}, false
}

// parseSize converts "8 GB", "1536 MB" or "500.28 GB (500277792768 Bytes)"
// to bytes. An exact byte count in parentheses wins.
func parseSize(s string) uint64 {
	s = strings.TrimSpace(s)
	if open := strings.Index(s, "("); open >= 0 {
		inner := s[open+1:]
		if end := strings.Index(inner, " Bytes"); end > 0 {
			if n, err := strconv.ParseUint(strings.TrimSpace(inner[:end]), 10, 64); err == nil {
				return n
			}
		}
		s = strings.TrimSpace(s[:open])
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	unit := ""
	if len(fields) > 1 {
		unit = strings.ToUpper(fields[1])
	}
	mult := map[string]float64{
		"B":  1, "BYTES": 1,
		"KB": 1 << 10, "MB": 1 << 20, "GB": 1 << 30, "TB": 1 << 40,
	}[unit]
	if mult == 0 {
		mult = 1
	}
	return uint64(n * mult)
}

// parseMemoryProfile decodes `system_profiler SPMemoryDataType`. Intel Macs
// list one "BANK n/..." block per slot; Apple Silicon reports a single
// unified memory package.
func parseMemoryProfile(out string) MemoryLayout {
	layout := MemoryLayout{TotalSlots: -1}
	var current *MemoryModule
	flush := func() {
		if current != nil {
			if current.CapacityBytes > 0 {
				layout.Modules = append(layout.Modules, *current)
			}
			current = nil
		}
	}
	slotCount := 0
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, ":") && (strings.HasPrefix(trimmed, "BANK") || strings.Contains(trimmed, "DIMM")) {
			flush()
			slotCount++
			current = &MemoryModule{Slot: strings.TrimSuffix(trimmed, ":"), SpeedMHz: -1}
			continue
		}
		if current == nil {
			continue
		}
		k, v, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		switch strings.TrimSpace(k) {
		case "Size":
			current.CapacityBytes = parseSize(v)
		case "Type":
			current.Type = v
		case "Speed":
			current.SpeedMHz = leadingInt(v)
		case "Manufacturer":
			current.Manufacturer = v
		case "Part Number":
			current.PartNumber = v
		case "Serial Number":
			current.SerialNumber = v
		}
	}
	flush()

	if slotCount > 0 {
		layout.TotalSlots = slotCount
		return layout
	}

	if total := colonText(out, "Memory"); total != "" {
		layout.TotalSlots = 1
		layout.Modules = []MemoryModule{{
			Slot:          "Unified",
			Manufacturer:  colonText(out, "Manufacturer"),
			Type:          colonText(out, "Type"),
			CapacityBytes: parseSize(total),
			SpeedMHz:      -1,
			FormFactor:    "Package",
		}}
	}
	return layout
}

func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return -1
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}

// parseHardwareModel returns "MacBook Air (Apple M1)" from
// `system_profiler SPHardwareDataType`.
func parseHardwareModel(out string) string {
	model := colonText(out, "Model Name")
	chip := colonText(out, "Chip")
	if chip == "" {
		chip = colonText(out, "Processor Name")
	}
	if model != "" && chip != "" {
		return model + " (" + chip + ")"
	}
	return model
}

// parseAppleLanguages returns the first entry of
// `defaults read -g AppleLanguages`, which prints a plist array:
//
//	(
//	    "en-US",
//	    "pl-PL"
//	)
func parseAppleLanguages(out string) string {
	for _, line := range strings.Split(out, "\n") {
		v := strings.Trim(strings.TrimSpace(line), `",`)
		if v == "" || v == "(" || v == ")" {
			continue
		}
		return v
	}
	return ""
}

// parseMdfind turns `mdfind` bundle paths into apps sorted by name.
func parseMdfind(out string) []App {
	seen := make(map[string]bool)
	var apps []App
	for _, line := range strings.Split(out, "\n") {
		p := strings.TrimSpace(line)
		if p == "" || !strings.HasSuffix(p, ".app") || seen[p] {
			continue
		}
		seen[p] = true
		apps = append(apps, App{
			Name: strings.TrimSuffix(path.Base(p), ".app"),
			Path: p,
		})
	}
	sort.Slice(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].Name) < strings.ToLower(apps[j].Name)
	})
	return apps
}

// diskutilKeys are the `diskutil info` lines surfaced as volume details.
var diskutilKeys = []string{
	"Device Identifier", "Device Node", "Device / Media Name", "Media Name",
	"Volume Name", "Mount Point", "File System Personality", "Type (Bundle)",
	"Protocol", "Solid State", "Media Type", "Disk Size", "Container Total Space",
	"Volume Free Space", "Container Free Space", "Device Block Size",
	"Allocation Block Size", "SMART Status", "Read-Only Volume", "Part of Whole",
}

// parseDiskutilInfo selects the interesting lines of `diskutil info <path>`.
func parseDiskutilInfo(out string) []KeyValue {
	want := make(map[string]bool, len(diskutilKeys))
	for _, k := range diskutilKeys {
		want[k] = true
	}
	var kvs []KeyValue
	for _, p := range textscan.Pairs(out) {
		if want[p.Key] {
			kvs = append(kvs, KeyValue{Key: p.Key, Value: p.Value})
		}
	}
	return kvs
}

// physicalDiskFromDiskutil builds the device description of a whole disk
// from `diskutil info diskN`.
func physicalDiskFromDiskutil(index int, ident, out string) PhysicalDisk {
	d := PhysicalDisk{
		Index:       index,
		Model:       colonText(out, "Device / Media Name"),
		Interface:   colonText(out, "Protocol"),
		SmartStatus: colonText(out, "SMART Status"),
		IOName:      ident,
	}
	if d.Model == "" {
		d.Model = colonText(out, "Media Name")
	}
	if size := colonText(out, "Disk Size"); size != "" {
		d.SizeBytes = parseSize(size)
	}
	switch ss := colonText(out, "Solid State"); {
	case ss == "Yes" && strings.EqualFold(d.Interface, "Apple Fabric"), ss == "Yes" && strings.Contains(strings.ToUpper(d.Interface), "NVME"):
		d.MediaType = "NVMe"
	case ss == "Yes":
		d.MediaType = "SSD"
	case ss == "No":
		d.MediaType = "HDD"
	default:
		d.MediaType = mediaTypeFromModel(d.Model)
	}
	return d
}

// wholeDisk maps "/dev/disk3s1s1" or "disk3s1" to "disk3".
func wholeDisk(device string) string {
	dev := strings.TrimPrefix(device, "/dev/")
	if !strings.HasPrefix(dev, "disk") {
		return ""
	}
	end := len("disk")
	for end < len(dev) && dev[end] >= '0' && dev[end] <= '9' {
		end++
	}
	if end == len("disk") {
		return ""
	}
	return dev[:end]
}

// parseZoneLink extracts the IANA zone from an /etc/localtime link target
// such as /var/db/timezone/zoneinfo/Europe/Warsaw.
func parseZoneLink(target string) string {
	const marker = "zoneinfo/"
	if i := strings.Index(target, marker); i >= 0 {
		return target[i+len(marker):]
	}
	return ""
}

// parseDiskutilList reads `diskutil list` and returns the physical whole
// disks in order plus a map of synthesized APFS containers to the physical
// disk holding their store.
func parseDiskutilList(out string) ([]string, map[string]string) {
	var physical []string
	containers := make(map[string]string)
	current, synthesized := "", false
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "/dev/disk") {
			header, kind, _ := strings.Cut(trimmed, " ")
			current = wholeDisk(header)
			synthesized = strings.Contains(kind, "synthesized")
			if current != "" && strings.Contains(kind, "physical") {
				physical = append(physical, current)
			}
			continue
		}
		if !synthesized || current == "" {
			continue
		}
		if _, store, ok := strings.Cut(trimmed, "Physical Store "); ok {
			if disk := wholeDisk(strings.TrimSpace(store)); disk != "" {
				containers[current] = disk
			}
		}
	}
	return physical, containers
}
