// Running processes collector: gathers processes ordered by CPU usage.
// Uses gopsutil for cross-platform process listing.
package collector

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

// Process kinds.
const (
	KindSystem = "System"
	KindUser   = "User"
)

// normalizedStatuses maps raw gopsutil status strings to a consistent set of
// display values used across all platforms.
var normalizedStatuses = map[string]string{
	"running":               "running",
	"sleeping":              "sleeping",
	"idle":                  "idle",
	"stopped":               "stopped",
	"zombie":                "zombie",
	"wait":                  "sleeping",
	"lock":                  "sleeping",
	"sleep":                 "sleeping",
	"disk-sleep":            "sleeping",
	"tracing-stop":          "stopped",
	"dead":                  "zombie",
	"wake-kill":             "sleeping",
	"waking":                "running",
	"parked":                "idle",
	"idle-interrupt":        "idle",
	"suspended":             "stopped",
	"uninterruptible-sleep": "sleeping",
}

// normalizeStatus maps a raw gopsutil status string to a consistent display
// value. If the status is empty, it infers a value from the process's CPU
// usage: CPU > 0 → "running", otherwise "idle".
func normalizeStatus(raw string, cpuPct float64) string {
	if raw != "" {
		key := strings.ToLower(strings.TrimSpace(raw))
		if mapped, ok := normalizedStatuses[key]; ok {
			return mapped
		}
		return key
	}

	// Empty status (common on Windows); infer from CPU activity.
	if cpuPct > 0 {
		return "running"
	}
	return "idle"
}

// systemAccounts are the service identities whose processes are System.
var systemAccounts = map[string]bool{
	"root":            true,
	"system":          true,
	"local service":   true,
	"network service": true,
	"daemon":          true,
	"nobody":          true,
}

// processKind classifies a process by its owner. Windows prefixes owners
// with a domain ("NT AUTHORITY\SYSTEM"); macOS daemon accounts start with
// an underscore.
func processKind(username string) string {
	name := strings.ToLower(strings.TrimSpace(username))
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	switch {
	case name == "", systemAccounts[name], strings.HasPrefix(name, "_"):
		return KindSystem
	default:
		return KindUser
	}
}

// ProcessCollector collects running processes sorted by CPU usage.
type ProcessCollector struct {
	host     platform.Host
	platform platform.Platform
	topN     int
	logger   *zap.Logger
}

// NewProcessCollector creates a process collector that returns the top N
// processes by CPU usage descending. topN 0 returns every process.
func NewProcessCollector(h platform.Host, p platform.Platform, topN int, logger *zap.Logger) *ProcessCollector {
	return &ProcessCollector{
		host:     h,
		platform: p,
		topN:     topN,
		logger:   nopIfNil(logger),
	}
}

// Name returns the collector identifier.
func (c *ProcessCollector) Name() string { return "processes" }

// IsAvailable returns true; process listing is available on all platforms.
func (c *ProcessCollector) IsAvailable() bool { return true }

// Collect lists processes. Individual process errors are already absorbed
// by the host listing; a failed listing yields an empty array.
func (c *ProcessCollector) Collect(ctx context.Context) (interface{}, error) {
	snaps, err := c.host.Processes(ctx)
	if err != nil {
		sourceFailed(c.logger, "processes", err)
	}

	titles, err := c.platform.WindowTitles(ctx)
	if err != nil {
		sourceFailed(c.logger, "window titles", err)
	}

	infos := make([]models.ProcessInfo, 0, len(snaps))
	for _, s := range snaps {
		infos = append(infos, processInfo(s, titles[s.PID]))
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].CPUUsage > infos[j].CPUUsage
	})
	if c.topN > 0 && len(infos) > c.topN {
		infos = infos[:c.topN]
	}
	return infos, nil
}

func processInfo(s platform.ProcessSnapshot, title string) models.ProcessInfo {
	return models.ProcessInfo{
		PID:              s.PID,
		ParentPID:        s.PPID,
		Name:             models.OrUnknown(s.Name),
		Path:             models.OrUnknown(s.Exe),
		Username:         models.OrUnknown(s.Username),
		Kind:             processKind(s.Username),
		ThreadCount:      s.Threads,
		MemoryUsage:      s.RSS,
		MemoryPercentage: float64(s.MemoryPercent),
		CPUUsage:         s.CPUPercent,
		StartTime:        models.FormatTime(s.CreateTime / 1000),
		State:            normalizeStatus(s.Status, s.CPUPercent),
		WindowTitle:      title,
	}
}
