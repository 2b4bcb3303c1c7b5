// OS info collector: gathers OS naming, session and boot information.
// Static facts are cached after the first collection whose sources all
// answered; uptime is recomputed on every call.
package collector

import (
	"context"
	"errors"
	"os/user"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

// OSInfoCollector collects OS name, version and session information.
type OSInfoCollector struct {
	host     platform.Host
	platform platform.Platform
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	cached   bool
	cache    models.OSInfo
	bootUnix int64
}

// NewOSInfoCollector creates a new OS info collector.
func NewOSInfoCollector(h platform.Host, p platform.Platform, logger *zap.Logger) *OSInfoCollector {
	return &OSInfoCollector{
		host:     h,
		platform: p,
		logger:   nopIfNil(logger),
		now:      time.Now,
	}
}

// Name returns the collector identifier.
func (c *OSInfoCollector) Name() string { return "os" }

// IsAvailable returns true; OS info is available on all platforms.
func (c *OSInfoCollector) IsAvailable() bool { return true }

// Collect returns the cached description with a fresh uptime.
func (c *OSInfoCollector) Collect(ctx context.Context) (interface{}, error) {
	c.mu.Lock()
	info, boot := c.cache, c.bootUnix
	if !c.cached {
		var complete bool
		info, boot, complete = c.collect(ctx)
		if complete {
			c.cache, c.bootUnix, c.cached = info, boot, true
		}
	}
	c.mu.Unlock()

	if boot > 0 {
		if up := c.now().Unix() - boot; up > 0 {
			info.Uptime = uint64(up)
		}
	}
	info.UptimeFormatted = models.FormatUptime(info.Uptime)
	return info, nil
}

// collect reports complete=false when a source failed, so the result is not
// cached and the next call retries. An unsupported platform source counts
// as answered.
func (c *OSInfoCollector) collect(ctx context.Context) (info models.OSInfo, boot int64, complete bool) {
	complete = true
	hi, err := c.host.HostInfo(ctx)
	if err != nil {
		sourceFailed(c.logger, "host info", err)
		complete = false
	}
	details, err := c.platform.OSDetails(ctx)
	if err != nil {
		sourceFailed(c.logger, "os details", err)
		if !errors.Is(err, platform.ErrUnsupported) {
			complete = false
		}
	}

	info = osInfo(hi, details)
	if u, err := user.Current(); err == nil {
		info.Username = models.OrUnknown(u.Username)
	}
	info.TimeZone = models.OrUnknown(platform.TimeZone())

	if hi != nil {
		boot = int64(hi.BootTime)
	}
	return info, boot, complete
}

// osInfo merges host.Info with the platform details. The platform wins for
// naming; host.Info supplies kernel, hostname and virtualization.
func osInfo(hi *host.InfoStat, d platform.OSDetails) models.OSInfo {
	info := models.OSInfo{
		Name:                 models.OrUnknown(d.Name),
		Version:              models.OrUnknown(d.Version),
		BuildNumber:          models.OrUnknown(d.Build),
		Edition:              models.OrUnknown(d.Edition),
		KernelVersion:        models.Unknown,
		Architecture:         goarchName(runtime.GOARCH),
		Hostname:             models.Unknown,
		Username:             models.Unknown,
		Domain:               models.OrUnknown(d.Domain),
		Model:                models.OrUnknown(d.Model),
		Locale:               models.OrUnknown(d.Locale),
		TimeZone:             models.Unknown,
		InstallDate:          models.OrUnknown(d.InstallDate),
		BootTime:             models.Unknown,
		IsAdmin:              d.IsAdmin,
		IsVirtualMachine:     d.VirtualMachine,
		VirtualizationSystem: models.Unknown,
	}
	if hi == nil {
		return info
	}

	if info.Name == models.Unknown {
		info.Name = models.OrUnknown(hi.Platform)
	}
	if info.Version == models.Unknown {
		info.Version = models.OrUnknown(hi.PlatformVersion)
	}
	info.KernelVersion = models.OrUnknown(hi.KernelVersion)
	if hi.KernelArch != "" {
		info.Architecture = hi.KernelArch
	}
	info.Hostname = models.OrUnknown(hi.Hostname)
	info.BootTime = models.FormatTime(int64(hi.BootTime))
	info.Uptime = hi.Uptime
	if hi.VirtualizationRole == "guest" {
		info.IsVirtualMachine = true
	}
	if info.IsVirtualMachine {
		info.VirtualizationSystem = models.OrUnknown(hi.VirtualizationSystem)
	}
	return info
}
