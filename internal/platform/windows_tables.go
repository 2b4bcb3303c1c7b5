package platform

import (
	"strconv"
	"strings"
	"time"
)

// Lookup tables and parsers for WMI values. Untagged so they are tested on
// every OS. VendorName also serves the sysfs reader and the GPU collector.

var pciVendors = map[uint32]string{
	0x1002: "AMD",
	0x1022: "AMD",
	0x10DE: "NVIDIA",
	0x8086: "Intel",
	0x1414: "Microsoft",
	0x106B: "Apple",
	0x5143: "Qualcomm",
	0x15AD: "VMware",
	0x80EE: "Oracle",
	0x1AF4: "Red Hat",
}

// VendorName maps a PCI vendor ID to a display name, or "" if unknown.
func VendorName(id uint32) string {
	return pciVendors[id]
}

// parsePNPDeviceID extracts VEN_ and DEV_ IDs from a PNP string like
// PCI\VEN_10DE&DEV_2484&SUBSYS_...
func parsePNPDeviceID(pnp string) (vendor, device uint32) {
	upper := strings.ToUpper(pnp)
	read := func(tag string) uint32 {
		i := strings.Index(upper, tag)
		if i < 0 || len(upper) < i+len(tag)+4 {
			return 0
		}
		n, err := strconv.ParseUint(upper[i+len(tag):i+len(tag)+4], 16, 32)
		if err != nil {
			return 0
		}
		return uint32(n)
	}
	return read("VEN_"), read("DEV_")
}

var batteryChemistries = map[uint16]string{
	1: "Other",
	2: "Unknown",
	3: "Lead Acid",
	4: "Nickel Cadmium",
	5: "Nickel Metal Hydride",
	6: "Lithium Ion",
	7: "Zinc Air",
	8: "Lithium Polymer",
}

func chemistryName(code uint16) string {
	if name, ok := batteryChemistries[code]; ok {
		return name
	}
	return ""
}

// smbiosMemoryTypes follows SMBIOS type 17 "Memory Type".
var smbiosMemoryTypes = map[uint32]string{
	0x01: "Other", 0x03: "DRAM", 0x04: "EDRAM", 0x05: "VRAM", 0x06: "SRAM",
	0x07: "RAM", 0x08: "ROM", 0x09: "Flash", 0x0A: "EEPROM", 0x0B: "FEPROM",
	0x0C: "EPROM", 0x0D: "CDRAM", 0x0E: "3DRAM", 0x0F: "SDRAM", 0x10: "SGRAM",
	0x11: "RDRAM", 0x12: "DDR", 0x13: "DDR2", 0x14: "DDR2 FB-DIMM",
	0x18: "DDR3", 0x19: "FBD2", 0x1A: "DDR4", 0x1B: "LPDDR", 0x1C: "LPDDR2",
	0x1D: "LPDDR3", 0x1E: "LPDDR4", 0x20: "HBM", 0x21: "HBM2", 0x22: "DDR5",
	0x23: "LPDDR5",
}

// cimMemoryTypes follows the older Win32_PhysicalMemory.MemoryType values,
// used when SMBIOSMemoryType is absent.
var cimMemoryTypes = map[uint16]string{
	1: "Other", 2: "DRAM", 3: "Synchronous DRAM", 4: "Cache DRAM", 5: "EDO",
	6: "EDRAM", 7: "VRAM", 8: "SRAM", 9: "RAM", 10: "ROM", 11: "Flash",
	12: "EEPROM", 13: "FEPROM", 14: "EPROM", 15: "CDRAM", 16: "3DRAM",
	17: "SDRAM", 18: "SGRAM", 19: "RDRAM", 20: "DDR", 21: "DDR2",
	22: "DDR2 FB-DIMM", 24: "DDR3", 25: "FBD2", 26: "DDR4",
}

func memoryTypeName(smbios uint32, cim uint16) string {
	if name, ok := smbiosMemoryTypes[smbios]; ok {
		return name
	}
	return cimMemoryTypes[cim]
}

var formFactors = map[uint16]string{
	1: "Other", 2: "SIP", 3: "DIP", 4: "ZIP", 5: "SOJ", 6: "Proprietary",
	7: "SIMM", 8: "DIMM", 9: "TSOP", 10: "PGA", 11: "RIMM", 12: "SODIMM",
	13: "SRIMM", 14: "SMD", 15: "SSMP", 16: "QFP", 17: "TQFP", 18: "SOIC",
	19: "LCC", 20: "PLCC", 21: "BGA", 22: "FPBGA", 23: "LGA",
}

func formFactorName(code uint16) string {
	return formFactors[code]
}

// wmiTime converts a CIM_DATETIME ("20240115083012.500000+060") to RFC 3339.
// The trailing offset is in minutes.
func wmiTime(s string) string {
	if len(s) < 14 {
		return ""
	}
	t, err := time.Parse("20060102150405", s[:14])
	if err != nil {
		return ""
	}
	if len(s) >= 25 {
		sign := s[21]
		if mins, err := strconv.Atoi(s[22:25]); err == nil && (sign == '+' || sign == '-') {
			offset := mins * 60
			if sign == '-' {
				offset = -offset
			}
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0,
				time.FixedZone("", offset))
		}
	}
	return t.Format(time.RFC3339)
}

// parsePartitionLink reads the two object references of a
// Win32_LogicalDiskToPartition row:
//
//	Antecedent: \\HOST\root\cimv2:Win32_DiskPartition.DeviceID="Disk #0, Partition #1"
//	Dependent:  \\HOST\root\cimv2:Win32_LogicalDisk.DeviceID="C:"
//
// and returns the disk index and drive letter.
func parsePartitionLink(antecedent, dependent string) (int, string, bool) {
	const diskTag = "Disk #"
	i := strings.Index(antecedent, diskTag)
	if i < 0 {
		return 0, "", false
	}
	rest := antecedent[i+len(diskTag):]
	end := strings.IndexAny(rest, ", \"")
	if end < 0 {
		end = len(rest)
	}
	index, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, "", false
	}
	drive := quotedDeviceID(dependent)
	if drive == "" {
		return 0, "", false
	}
	return index, drive, true
}

func quotedDeviceID(ref string) string {
	const tag = `DeviceID="`
	i := strings.Index(ref, tag)
	if i < 0 {
		return ""
	}
	rest := ref[i+len(tag):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// mediaTypeFromModel guesses SSD/NVMe/HDD from a model or interface string
// when the OS does not report the medium directly.
func mediaTypeFromModel(model string) string {
	upper := strings.ToUpper(model)
	switch {
	case strings.Contains(upper, "NVME"):
		return "NVMe"
	case strings.Contains(upper, "SSD"), strings.Contains(upper, "SOLID STATE"):
		return "SSD"
	case upper == "":
		return ""
	default:
		return "HDD"
	}
}

// virtualVendors are manufacturer/model markers of hypervisor guests.
var virtualVendors = []string{
	"VMWARE", "VIRTUALBOX", "VBOX", "PARALLELS", "QEMU", "XEN", "KVM",
	"HVM", "VIRTUAL MACHINE",
}

func looksVirtual(manufacturer, model string) bool {
	s := strings.ToUpper(manufacturer + " " + model)
	for _, marker := range virtualVendors {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// Win32_Battery.BatteryStatus values.
const (
	wmiBatteryDischarging = 1
	wmiBatteryOnAC        = 2
	wmiBatteryFull        = 3
)

// batteryFlags interprets Win32_Battery.BatteryStatus.
func batteryFlags(status uint16) (charging, external, full bool) {
	switch status {
	case wmiBatteryDischarging, 4, 5:
		return false, false, false
	case wmiBatteryOnAC:
		return false, true, false
	case wmiBatteryFull:
		return false, true, true
	case 6, 7, 8, 9:
		return true, true, false
	case 11:
		return false, true, false
	default:
		return false, false, false
	}
}
