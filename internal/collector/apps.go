// Installed applications collector.
package collector

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

// AppsCollector lists applications registered with the OS.
type AppsCollector struct {
	platform platform.Platform
	logger   *zap.Logger
}

// NewAppsCollector creates an installed applications collector.
func NewAppsCollector(p platform.Platform, logger *zap.Logger) *AppsCollector {
	return &AppsCollector{platform: p, logger: nopIfNil(logger)}
}

// Name returns the collector identifier.
func (c *AppsCollector) Name() string { return "apps" }

// IsAvailable returns true; unsupported platforms report an empty list.
func (c *AppsCollector) IsAvailable() bool { return true }

// Collect returns the applications sorted by name, case-insensitively, with
// duplicate name/version pairs removed.
func (c *AppsCollector) Collect(ctx context.Context) (interface{}, error) {
	raw, err := c.platform.InstalledApps(ctx)
	if err != nil {
		sourceFailed(c.logger, "installed apps", err)
	}

	seen := make(map[string]bool, len(raw))
	apps := make([]models.InstalledApp, 0, len(raw))
	for _, a := range raw {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name) + "\x00" + a.Version
		if seen[key] {
			continue
		}
		seen[key] = true
		apps = append(apps, models.InstalledApp{
			Name:      name,
			Version:   models.OrUnknown(a.Version),
			Publisher: models.OrUnknown(a.Publisher),
			Path:      models.OrUnknown(a.Path),
		})
	}
	sort.SliceStable(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].Name) < strings.ToLower(apps[j].Name)
	})
	return apps, nil
}
