package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Readers for the Linux sysfs tree. Every function takes the sysfs root so
// tests can point it at a temporary directory.

func readTrim(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readInt returns the integer in path, or -1.
func readInt(path string) int64 {
	v := readTrim(path)
	if v == "" {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

func readHex(path string) uint32 {
	v := strings.TrimPrefix(readTrim(path), "0x")
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

// micro converts a µ-unit sysfs value to milli-units, keeping -1.
func micro(v int64) int {
	if v < 0 {
		return -1
	}
	return int(v / 1000)
}

// readPowerSupply reads the first BAT* entry under class/power_supply.
func readPowerSupply(sysRoot string) BatteryReading {
	r := NewBatteryReading()
	base := filepath.Join(sysRoot, "class", "power_supply")
	dirs, _ := filepath.Glob(filepath.Join(base, "BAT*"))
	if len(dirs) == 0 {
		return r
	}
	sort.Strings(dirs)
	dir := dirs[0]
	if readTrim(filepath.Join(dir, "present")) == "0" {
		return r
	}

	r.Present = true
	r.Name = readTrim(filepath.Join(dir, "model_name"))
	r.Manufacturer = readTrim(filepath.Join(dir, "manufacturer"))
	r.SerialNumber = readTrim(filepath.Join(dir, "serial_number"))
	r.Chemistry = readTrim(filepath.Join(dir, "technology"))

	status := readTrim(filepath.Join(dir, "status"))
	r.StatusKnown = status != "" && status != "Unknown"
	r.Charging = status == "Charging"
	r.FullyCharged = status == "Full"
	r.ExternalConnected = r.Charging || r.FullyCharged || status == "Not charging" || acOnline(base)

	if pct := readInt(filepath.Join(dir, "capacity")); pct >= 0 {
		r.Percent = float64(pct)
	}
	r.CycleCount = int(readInt(filepath.Join(dir, "cycle_count")))
	r.VoltageMV = micro(readInt(filepath.Join(dir, "voltage_now")))

	if full := readInt(filepath.Join(dir, "energy_full")); full >= 0 {
		r.CapacityUnit = "mWh"
		r.MaxCapacity = micro(full)
		r.DesignCapacity = micro(readInt(filepath.Join(dir, "energy_full_design")))
		r.CurrentCapacity = micro(readInt(filepath.Join(dir, "energy_now")))
	} else if full := readInt(filepath.Join(dir, "charge_full")); full >= 0 {
		r.CapacityUnit = "mAh"
		r.MaxCapacity = micro(full)
		r.DesignCapacity = micro(readInt(filepath.Join(dir, "charge_full_design")))
		r.CurrentCapacity = micro(readInt(filepath.Join(dir, "charge_now")))
	}

	power := readInt(filepath.Join(dir, "power_now"))
	if power < 0 {
		if amps := readInt(filepath.Join(dir, "current_now")); amps >= 0 && r.VoltageMV > 0 {
			power = amps * int64(r.VoltageMV) / 1000
		}
	}
	if power >= 0 {
		mw := micro(power)
		switch {
		case r.Charging:
			r.ChargeRateMW, r.DischargeRateMW = mw, 0
		case status == "Discharging":
			r.ChargeRateMW, r.DischargeRateMW = 0, mw
		default:
			r.ChargeRateMW, r.DischargeRateMW = 0, 0
		}
		if r.CapacityUnit == "mWh" && mw > 0 {
			switch {
			case status == "Discharging" && r.CurrentCapacity >= 0:
				r.TimeRemaining = r.CurrentCapacity * 60 / mw
			case r.Charging && r.MaxCapacity > r.CurrentCapacity && r.CurrentCapacity >= 0:
				r.TimeToFull = (r.MaxCapacity - r.CurrentCapacity) * 60 / mw
			}
		}
	}
	return r
}

func acOnline(base string) bool {
	entries, _ := os.ReadDir(base)
	for _, e := range entries {
		dir := filepath.Join(base, e.Name())
		if readTrim(filepath.Join(dir, "type")) == "Mains" && readTrim(filepath.Join(dir, "online")) == "1" {
			return true
		}
	}
	return false
}

// readHwmonFans lists fan*_input sensors under class/hwmon.
func readHwmonFans(sysRoot string) []Fan {
	chips, _ := filepath.Glob(filepath.Join(sysRoot, "class", "hwmon", "hwmon*"))
	sort.Strings(chips)
	var fans []Fan
	for _, chip := range chips {
		chipName := readTrim(filepath.Join(chip, "name"))
		inputs, _ := filepath.Glob(filepath.Join(chip, "fan*_input"))
		sort.Strings(inputs)
		for _, input := range inputs {
			prefix := strings.TrimSuffix(filepath.Base(input), "_input")
			name := readTrim(filepath.Join(chip, prefix+"_label"))
			if name == "" {
				name = prefix
			}
			f := Fan{
				Name:     name,
				RPM:      int(readInt(input)),
				MaxRPM:   int(readInt(filepath.Join(chip, prefix+"_max"))),
				Location: chipName,
			}
			pwm := "pwm" + strings.TrimPrefix(prefix, "fan")
			if _, err := os.Stat(filepath.Join(chip, pwm+"_enable")); err == nil {
				f.Controllable = true
			}
			fans = append(fans, f)
		}
	}
	return fans
}

// drmCards returns class/drm/cardN directories, excluding connector entries
// such as card0-HDMI-A-1.
func drmCards(sysRoot string) []string {
	all, _ := filepath.Glob(filepath.Join(sysRoot, "class", "drm", "card*"))
	var cards []string
	for _, c := range all {
		if !strings.Contains(filepath.Base(c), "-") {
			cards = append(cards, c)
		}
	}
	sort.Strings(cards)
	return cards
}

// readDRMAdapters describes each DRM card from its PCI attributes.
func readDRMAdapters(sysRoot string) []GPUAdapter {
	var gpus []GPUAdapter
	for _, card := range drmCards(sysRoot) {
		dev := filepath.Join(card, "device")
		g := GPUAdapter{
			VendorID:    readHex(filepath.Join(dev, "vendor")),
			DeviceID:    readHex(filepath.Join(dev, "device")),
			Bus:         "PCIe",
			Cores:       -1,
			RefreshRate: -1,
		}
		if g.VendorID == 0 {
			continue
		}
		g.Vendor = VendorName(g.VendorID)
		if g.Vendor == "" {
			g.Vendor = fmt.Sprintf("0x%04x", g.VendorID)
		}
		driver := ""
		for _, line := range strings.Split(readTrim(filepath.Join(dev, "uevent")), "\n") {
			if v, ok := strings.CutPrefix(line, "DRIVER="); ok {
				driver = v
			}
		}
		g.Name = fmt.Sprintf("%s GPU [%04x]", g.Vendor, g.DeviceID)
		if driver != "" {
			g.Processor = driver
		}
		if vram := readInt(filepath.Join(dev, "mem_info_vram_total")); vram > 0 {
			g.VRAMBytes = uint64(vram)
		}
		gpus = append(gpus, g)
	}
	return gpus
}

// readDRMBusy returns the first gpu_busy_percent reading (amdgpu, i915 xe).
func readDRMBusy(sysRoot string) (float64, bool) {
	for _, card := range drmCards(sysRoot) {
		if busy := readInt(filepath.Join(card, "device", "gpu_busy_percent")); busy >= 0 {
			return float64(busy), true
		}
	}
	return 0, false
}

// virtualBlock marks block devices that are not physical disks.
var virtualBlock = []string{"loop", "ram", "zram", "dm-", "md", "sr", "fd", "nbd"}

// readBlockDevices lists physical disks under block/ with their partitions.
func readBlockDevices(sysRoot string) []PhysicalDisk {
	entries, _ := os.ReadDir(filepath.Join(sysRoot, "block"))
	var disks []PhysicalDisk
	index := 0
	for _, e := range entries {
		name := e.Name()
		if hasAnyPrefix(name, virtualBlock) {
			continue
		}
		dir := filepath.Join(sysRoot, "block", name)
		d := PhysicalDisk{
			Index:        index,
			Model:        readTrim(filepath.Join(dir, "device", "model")),
			SerialNumber: readTrim(filepath.Join(dir, "device", "serial")),
			Interface:    blockInterface(name),
			IOName:       name,
			Devices:      []string{"/dev/" + name},
		}
		if sectors := readInt(filepath.Join(dir, "size")); sectors > 0 {
			d.SizeBytes = uint64(sectors) * 512
		}
		switch {
		case strings.HasPrefix(name, "nvme"):
			d.MediaType = "NVMe"
		case readTrim(filepath.Join(dir, "queue", "rotational")) == "0":
			d.MediaType = "SSD"
		case readTrim(filepath.Join(dir, "queue", "rotational")) == "1":
			d.MediaType = "HDD"
		default:
			d.MediaType = mediaTypeFromModel(d.Model)
		}
		parts, _ := os.ReadDir(dir)
		for _, p := range parts {
			if strings.HasPrefix(p.Name(), name) {
				if _, err := os.Stat(filepath.Join(dir, p.Name(), "partition")); err == nil {
					d.Devices = append(d.Devices, "/dev/"+p.Name())
				}
			}
		}
		disks = append(disks, d)
		index++
	}
	return disks
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func blockInterface(name string) string {
	switch {
	case strings.HasPrefix(name, "nvme"):
		return "NVMe"
	case strings.HasPrefix(name, "mmcblk"):
		return "MMC"
	case strings.HasPrefix(name, "vd"):
		return "VirtIO"
	case strings.HasPrefix(name, "sd"):
		return "SCSI/SATA"
	default:
		return ""
	}
}

// readDMIModel returns "<vendor> <product>" from class/dmi/id.
func readDMIModel(sysRoot string) string {
	dir := filepath.Join(sysRoot, "class", "dmi", "id")
	vendor := readTrim(filepath.Join(dir, "sys_vendor"))
	product := readTrim(filepath.Join(dir, "product_name"))
	return strings.TrimSpace(vendor + " " + product)
}
