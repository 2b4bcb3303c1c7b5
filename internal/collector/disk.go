// Disk collectors: free space of one filesystem and the physical disk
// inventory with nested partitions and sampled throughput.
// Uses gopsutil for partitions, usage and IO counters and the platform
// layer for device identity.
package collector

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

// pseudoFSTypes contains filesystem types that should be excluded from disk metrics.
// These are virtual/system filesystems and network/remote filesystems that don't
// represent local storage devices.
var pseudoFSTypes = map[string]bool{
	// Virtual / system filesystems
	"devfs":         true,
	"autofs":        true,
	"nullfs":        true,
	"tmpfs":         true,
	"sysfs":         true,
	"proc":          true,
	"procfs":        true,
	"devtmpfs":      true,
	"cgroup":        true,
	"cgroup2":       true,
	"overlay":       true,
	"squashfs":      true,
	"fuse.snapfuse": true,
	"nsfs":          true,
	"pstore":        true,
	"debugfs":       true,
	"tracefs":       true,
	"securityfs":    true,
	"configfs":      true,
	"fusectl":       true,
	"mqueue":        true,
	"hugetlbfs":     true,
	"binfmt_misc":   true,
	"efivarfs":      true,
	"bpf":           true,
	"ramfs":         true,

	// Network / remote filesystems
	"nfs":           true,
	"nfs4":          true,
	"cifs":          true,
	"smbfs":         true,
	"fuse.sshfs":    true,
	"fuse.rclone":   true,
	"9p":            true,
	"afs":           true,
	"glusterfs":     true,
	"ceph":          true,
	"fuse.s3fs":     true,
	"fuse.gcsfuse":  true,
	"fuse.blobfuse": true,
	"davfs2":        true,
}

// isSystemMount returns true for mount points that are macOS system volumes
// or other OS-internal paths that shouldn't be shown to users.
func isSystemMount(mount string) bool {
	systemPrefixes := []string{
		"/System/Volumes/",
		"/private/var/vm",
	}
	for _, prefix := range systemPrefixes {
		if strings.HasPrefix(mount, prefix) {
			return true
		}
	}
	return false
}

// DiskUsageCollector reports the space on the filesystem holding a path.
type DiskUsageCollector struct {
	host        platform.Host
	defaultPath string
	logger      *zap.Logger
}

// NewDiskUsageCollector creates a disk usage collector. defaultPath is used
// when a call passes an empty path.
func NewDiskUsageCollector(h platform.Host, defaultPath string, logger *zap.Logger) *DiskUsageCollector {
	return &DiskUsageCollector{
		host:        h,
		defaultPath: defaultPath,
		logger:      nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *DiskUsageCollector) Name() string { return "disk" }

// IsAvailable returns true; disk metrics are available on all platforms.
func (c *DiskUsageCollector) IsAvailable() bool { return true }

// Collect reports the default path.
func (c *DiskUsageCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.Usage(ctx, ""), nil
}

// Usage reports the filesystem holding path. An inaccessible path yields
// an all-sentinel record.
func (c *DiskUsageCollector) Usage(ctx context.Context, path string) models.DiskUsage {
	if path == "" {
		path = c.defaultPath
	}
	u, err := c.host.DiskUsage(ctx, path)
	if err != nil || u == nil {
		sourceFailed(c.logger, "disk usage "+path, err)
		return diskUsage(path, nil)
	}
	return diskUsage(path, u)
}

func diskUsage(path string, u *disk.UsageStat) models.DiskUsage {
	if u == nil {
		return models.DiskUsage{
			Path:           path,
			FileSystem:     models.Unknown,
			TotalFormatted: models.FormatBytes(0),
			UsedFormatted:  models.FormatBytes(0),
			FreeFormatted:  models.FormatBytes(0),
			UsedPercentage: models.NotAvailable,
		}
	}
	var used uint64
	if u.Total > u.Free {
		used = u.Total - u.Free
	}
	return models.DiskUsage{
		Path:           path,
		FileSystem:     models.OrUnknown(u.Fstype),
		TotalBytes:     u.Total,
		UsedBytes:      used,
		FreeBytes:      u.Free,
		TotalFormatted: models.FormatBytes(u.Total),
		UsedFormatted:  models.FormatBytes(used),
		FreeFormatted:  models.FormatBytes(u.Free),
		UsedPercentage: models.Percent(float64(used), float64(u.Total)),
	}
}

// DiskCollector reports physical disks with their partitions.
type DiskCollector struct {
	host       platform.Host
	platform   platform.Platform
	interval   time.Duration
	systemPath string
	logger     *zap.Logger
}

// NewDiskCollector creates a disk inventory collector. Throughput is sampled
// over interval; zero reports 0 B/s. systemPath marks the OS partition.
func NewDiskCollector(h platform.Host, p platform.Platform, interval time.Duration, systemPath string, logger *zap.Logger) *DiskCollector {
	return &DiskCollector{
		host:       h,
		platform:   p,
		interval:   interval,
		systemPath: systemPath,
		logger:     nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *DiskCollector) Name() string { return "disks" }

// IsAvailable returns true; disk metrics are available on all platforms.
func (c *DiskCollector) IsAvailable() bool { return true }

// Collect gathers disks, attaches mounted partitions and samples IO rates.
// Inaccessible partitions are silently skipped.
func (c *DiskCollector) Collect(ctx context.Context) (interface{}, error) {
	before, err := c.host.DiskIOCounters(ctx)
	if err != nil {
		sourceFailed(c.logger, "disk io counters", err)
	}
	started := time.Now()

	parts := c.partitions(ctx)

	physical, err := c.platform.PhysicalDisks(ctx)
	if err != nil {
		sourceFailed(c.logger, "physical disks", err)
	}

	var after map[string]disk.IOCountersStat
	if before != nil && c.interval > 0 {
		if wait := c.interval - time.Since(started); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
			timer.Stop()
		}
		if ctx.Err() == nil {
			after, _ = c.host.DiskIOCounters(ctx)
		}
	}
	elapsed := time.Since(started)

	if len(physical) == 0 {
		d := syntheticDisk(parts)
		d.ReadSpeed, d.WriteSpeed = ioRate(before, after, nil, elapsed)
		return []models.PhysicalDisk{d}, nil
	}

	disks := make([]models.PhysicalDisk, 0, len(physical))
	claimed := make(map[int]bool)
	for _, pd := range physical {
		d := physicalDisk(pd)
		for i, p := range parts {
			if !claimed[i] && ownsDevice(pd.Devices, p.Device) {
				d.Partitions = append(d.Partitions, p)
				claimed[i] = true
			}
		}
		keys := pd.Devices
		if pd.IOName != "" {
			keys = []string{pd.IOName}
		}
		d.ReadSpeed, d.WriteSpeed = ioRate(before, after, keys, elapsed)
		disks = append(disks, d)
	}
	for i, p := range parts {
		if !claimed[i] {
			c.logger.Debug("Partition not attributed to a physical disk",
				zap.String("device", p.Device),
				zap.String("mount", p.MountPoint))
		}
	}
	return disks, nil
}

// partitions lists the user-visible mounted partitions.
func (c *DiskCollector) partitions(ctx context.Context) []models.Partition {
	stats, err := c.host.Partitions(ctx)
	if err != nil {
		sourceFailed(c.logger, "partitions", err)
		return nil
	}

	var parts []models.Partition
	for _, p := range stats {
		if pseudoFSTypes[p.Fstype] {
			c.logger.Debug("Skipping pseudo/network filesystem",
				zap.String("mount", p.Mountpoint),
				zap.String("fstype", p.Fstype))
			continue
		}
		if isSystemMount(p.Mountpoint) {
			continue
		}
		usage, err := c.host.DiskUsage(ctx, p.Mountpoint)
		if err != nil || usage == nil || usage.Total == 0 {
			continue
		}
		parts = append(parts, partition(p, usage, c.systemPath))
	}
	return parts
}

func partition(p disk.PartitionStat, u *disk.UsageStat, systemPath string) models.Partition {
	var used uint64
	if u.Total > u.Free {
		used = u.Total - u.Free
	}
	return models.Partition{
		Device:             models.OrUnknown(p.Device),
		MountPoint:         p.Mountpoint,
		FileSystem:         models.OrUnknown(p.Fstype),
		TotalSize:          u.Total,
		TotalSizeFormatted: models.FormatBytes(u.Total),
		FreeSpace:          u.Free,
		FreeSpaceFormatted: models.FormatBytes(u.Free),
		UsedPercentage:     models.Percent(float64(used), float64(u.Total)),
		IsSystemPartition:  sameMount(p.Mountpoint, systemPath),
		IsReadOnly:         hasOption(p.Opts, "ro"),
	}
}

func physicalDisk(pd platform.PhysicalDisk) models.PhysicalDisk {
	media := models.OrUnknown(pd.MediaType)
	return models.PhysicalDisk{
		Index:         pd.Index,
		Model:         models.OrUnknown(pd.Model),
		SerialNumber:  models.OrUnknown(pd.SerialNumber),
		MediaType:     media,
		IsSSD:         media == "SSD" || media == "NVMe",
		Interface:     models.OrUnknown(pd.Interface),
		Size:          pd.SizeBytes,
		SizeFormatted: models.FormatBytes(pd.SizeBytes),
		SmartStatus:   models.OrUnknown(pd.SmartStatus),
		Partitions:    []models.Partition{},
	}
}

// syntheticDisk stands in for the device list when the platform cannot
// enumerate disks. It carries every partition.
func syntheticDisk(parts []models.Partition) models.PhysicalDisk {
	d := physicalDisk(platform.PhysicalDisk{})
	for _, p := range parts {
		d.Size += p.TotalSize
	}
	d.SizeFormatted = models.FormatBytes(d.Size)
	if parts != nil {
		d.Partitions = parts
	}
	return d
}

// ownsDevice reports whether a partition device belongs to a disk whose
// device list is devices. Entries match exactly ("C:", "/dev/sda1") or as
// the whole-disk prefix of a BSD slice ("disk3" owns "disk3s1s1").
func ownsDevice(devices []string, partDevice string) bool {
	part := strings.TrimPrefix(partDevice, "/dev/")
	for _, dev := range devices {
		dev = strings.TrimPrefix(dev, "/dev/")
		if dev == "" {
			continue
		}
		if strings.EqualFold(part, dev) || strings.HasPrefix(part, dev+"s") {
			return true
		}
	}
	return false
}

// ioRate returns read and write bytes per second between two counter maps,
// summed over keys; nil keys sums every device.
func ioRate(before, after map[string]disk.IOCountersStat, keys []string, elapsed time.Duration) (read, write uint64) {
	if before == nil || after == nil || elapsed <= 0 {
		return 0, 0
	}
	if keys == nil {
		for k := range after {
			keys = append(keys, k)
		}
	}
	var dr, dw uint64
	for _, k := range keys {
		k = strings.TrimPrefix(k, "/dev/")
		b, okB := before[k]
		a, okA := after[k]
		if !okB || !okA {
			continue
		}
		if a.ReadBytes >= b.ReadBytes {
			dr += a.ReadBytes - b.ReadBytes
		}
		if a.WriteBytes >= b.WriteBytes {
			dw += a.WriteBytes - b.WriteBytes
		}
	}
	secs := elapsed.Seconds()
	return uint64(float64(dr) / secs), uint64(float64(dw) / secs)
}

func sameMount(mount, systemPath string) bool {
	trim := func(s string) string { return strings.TrimRight(s, `\/`) }
	if systemPath == "" {
		return false
	}
	m, s := trim(mount), trim(systemPath)
	if m == "" && s == "" {
		return mount != ""
	}
	return strings.EqualFold(m, s)
}

func hasOption(opts []string, opt string) bool {
	for _, o := range opts {
		if o == opt {
			return true
		}
	}
	return false
}
