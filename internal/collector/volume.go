// Volume collectors: the key/value inventory of one volume and the
// sequential read/write benchmark.
package collector

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

// VolumeCollector reports what the OS knows about the volume holding a path.
type VolumeCollector struct {
	platform    platform.Platform
	defaultPath string
	logger      *zap.Logger
}

// NewVolumeCollector creates a volume details collector.
func NewVolumeCollector(p platform.Platform, defaultPath string, logger *zap.Logger) *VolumeCollector {
	return &VolumeCollector{
		platform:    p,
		defaultPath: defaultPath,
		logger:      nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *VolumeCollector) Name() string { return "volume" }

// IsAvailable returns true; unsupported platforms report an empty inventory.
func (c *VolumeCollector) IsAvailable() bool { return true }

// Collect describes the default path.
func (c *VolumeCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.Details(ctx, ""), nil
}

// Details describes the volume holding path. Duplicate keys keep the first value.
func (c *VolumeCollector) Details(ctx context.Context, path string) models.VolumeDetails {
	if path == "" {
		path = c.defaultPath
	}
	details := models.VolumeDetails{Path: path, Fields: map[string]string{}}

	kvs, err := c.platform.VolumeDetails(ctx, path)
	if err != nil {
		sourceFailed(c.logger, "volume details "+path, err)
		return details
	}
	for _, kv := range kvs {
		if _, dup := details.Fields[kv.Key]; !dup {
			details.Fields[kv.Key] = models.OrUnknown(kv.Value)
		}
	}
	return details
}

// DiskSpeedCollector measures sequential write and read throughput by
// writing a temporary file.
type DiskSpeedCollector struct {
	dir       string
	sizeBytes int64
	blockSize int
	logger    *zap.Logger
}

// NewDiskSpeedCollector creates a benchmark writing sizeMB MiB in blockKB
// KiB blocks. dir is the default target directory; empty uses os.TempDir.
func NewDiskSpeedCollector(dir string, sizeMB, blockKB int, logger *zap.Logger) *DiskSpeedCollector {
	if sizeMB <= 0 {
		sizeMB = 64
	}
	if blockKB <= 0 {
		blockKB = 1024
	}
	return &DiskSpeedCollector{
		dir:       dir,
		sizeBytes: int64(sizeMB) << 20,
		blockSize: blockKB << 10,
		logger:    nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *DiskSpeedCollector) Name() string { return "disk-speed" }

// IsAvailable returns true; only a writable directory is needed.
func (c *DiskSpeedCollector) IsAvailable() bool { return true }

// Collect benchmarks the default directory.
func (c *DiskSpeedCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.Measure(ctx, ""), nil
}

// Measure benchmarks the directory path. Speeds are MB/s; a failed or
// cancelled run reports 0 and "Unknown" durations.
func (c *DiskSpeedCollector) Measure(ctx context.Context, path string) models.DiskSpeed {
	if path == "" {
		path = c.dir
	}
	if path == "" {
		path = os.TempDir()
	}
	result := models.DiskSpeed{
		Path:          path,
		TestSize:      uint64(c.sizeBytes),
		WriteDuration: models.Unknown,
		ReadDuration:  models.Unknown,
	}

	f, err := os.CreateTemp(path, ".hwprobe-speed-*")
	if err != nil {
		sourceFailed(c.logger, "disk speed "+path, err)
		return result
	}
	name := f.Name()
	defer os.Remove(name)

	written, writeTime, err := c.write(ctx, f)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		sourceFailed(c.logger, "disk speed write", err)
		return result
	}
	result.WriteSpeed = mbPerSecond(written, writeTime)
	result.WriteDuration = writeTime.String()

	read, readTime, err := c.read(ctx, name)
	if err != nil {
		sourceFailed(c.logger, "disk speed read", err)
		return result
	}
	result.ReadSpeed = mbPerSecond(read, readTime)
	result.ReadDuration = readTime.String()

	c.logger.Debug("Disk benchmark finished",
		zap.String("path", path),
		zap.Float64("write_mbps", result.WriteSpeed),
		zap.Float64("read_mbps", result.ReadSpeed))
	return result
}

// write fills f with random blocks and syncs it so the timing covers the
// device rather than the page cache.
func (c *DiskSpeedCollector) write(ctx context.Context, f *os.File) (int64, time.Duration, error) {
	block := make([]byte, c.blockSize)
	if _, err := rand.Read(block); err != nil {
		return 0, 0, fmt.Errorf("filling block: %w", err)
	}

	start := time.Now()
	var total int64
	for total < c.sizeBytes {
		if err := ctx.Err(); err != nil {
			return total, 0, err
		}
		chunk := block
		if remaining := c.sizeBytes - total; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		n, err := f.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, 0, fmt.Errorf("writing: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		return total, 0, fmt.Errorf("syncing: %w", err)
	}
	return total, time.Since(start), nil
}

func (c *DiskSpeedCollector) read(ctx context.Context, name string) (int64, time.Duration, error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	block := make([]byte, c.blockSize)
	start := time.Now()
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, 0, err
		}
		n, err := f.Read(block)
		total += int64(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, 0, fmt.Errorf("reading: %w", err)
		}
	}
	return total, time.Since(start), nil
}

func mbPerSecond(n int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / (1 << 20) / d.Seconds()
}
