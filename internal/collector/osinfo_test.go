package collector

import (
	"context"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

func TestOSInfoCollector_CachesButRefreshesUptime(t *testing.T) {
	boot := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	h := &fakeHost{hostInfo: &host.InfoStat{
		Hostname:             "build-01",
		Platform:             "ubuntu",
		PlatformVersion:      "24.04",
		KernelVersion:        "6.8.0-45-generic",
		KernelArch:           "x86_64",
		BootTime:             uint64(boot.Unix()),
		VirtualizationSystem: "kvm",
		VirtualizationRole:   "guest",
	}}
	p := &fakePlatform{osDetails: &platform.OSDetails{Model: "QEMU Standard PC", Locale: "en_US", IsAdmin: true}}
	c := NewOSInfoCollector(h, p, nil)

	now := boot.Add(26*time.Hour + 3*time.Minute + 4*time.Second)
	c.now = func() time.Time { return now }

	got, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	info := got.(models.OSInfo)
	if info.Name != "ubuntu" || info.Version != "24.04" || info.KernelVersion != "6.8.0-45-generic" {
		t.Errorf("naming = %q %q %q", info.Name, info.Version, info.KernelVersion)
	}
	if info.Hostname != "build-01" || info.Model != "QEMU Standard PC" || info.Locale != "en_US" {
		t.Errorf("identity = %+v", info)
	}
	if !info.IsAdmin || !info.IsVirtualMachine || info.VirtualizationSystem != "kvm" {
		t.Errorf("admin=%v vm=%v system=%q", info.IsAdmin, info.IsVirtualMachine, info.VirtualizationSystem)
	}
	if info.UptimeFormatted != "1d 02:03:04" {
		t.Errorf("UptimeFormatted = %q", info.UptimeFormatted)
	}
	if info.BootTime != boot.Local().Format(time.RFC3339) {
		t.Errorf("BootTime = %q", info.BootTime)
	}
	if info.TimeZone == "" {
		t.Error("TimeZone is empty")
	}

	now = now.Add(time.Minute)
	got, _ = c.Collect(context.Background())
	if up := got.(models.OSInfo).Uptime; up != info.Uptime+60 {
		t.Errorf("Uptime = %d, want %d", up, info.Uptime+60)
	}
	if p.osCalls != 1 {
		t.Errorf("OSDetails called %d times, want 1", p.osCalls)
	}
}

func TestOSInfo_PlatformNamingWins(t *testing.T) {
	hi := &host.InfoStat{Platform: "darwin", PlatformVersion: "15.0", VirtualizationRole: "host"}
	d := platform.OSDetails{Name: "macOS", Version: "15.0.1", Build: "24A348", VirtualMachine: false}
	info := osInfo(hi, d)
	if info.Name != "macOS" || info.Version != "15.0.1" || info.BuildNumber != "24A348" {
		t.Errorf("naming = %+v", info)
	}
	if info.IsVirtualMachine || info.VirtualizationSystem != models.Unknown {
		t.Errorf("vm=%v system=%q", info.IsVirtualMachine, info.VirtualizationSystem)
	}
}

func TestOSInfo_NoSources(t *testing.T) {
	info := osInfo(nil, platform.OSDetails{})
	if info.Name != models.Unknown || info.Hostname != models.Unknown || info.BootTime != models.Unknown {
		t.Errorf("sentinels = %+v", info)
	}
	if info.Architecture == "" {
		t.Error("Architecture is empty")
	}
}

func TestOSInfoCollector_RetriesAfterFailedSources(t *testing.T) {
	h := &fakeHost{}
	p := &fakePlatform{}
	c := NewOSInfoCollector(h, p, nil)

	got, _ := c.Collect(context.Background())
	if info := got.(models.OSInfo); info.Hostname != models.Unknown {
		t.Fatalf("Hostname with failing sources = %q", info.Hostname)
	}

	h.hostInfo = &host.InfoStat{Hostname: "build-01", Platform: "ubuntu"}
	p.osDetails = &platform.OSDetails{Model: "ThinkPad X1"}
	got, _ = c.Collect(context.Background())
	info := got.(models.OSInfo)
	if info.Hostname != "build-01" || info.Name != "ubuntu" || info.Model != "ThinkPad X1" {
		t.Errorf("second Collect = %+v, want recovered sources", info)
	}

	h.hostInfo = nil
	got, _ = c.Collect(context.Background())
	if got.(models.OSInfo).Hostname != "build-01" {
		t.Error("successful result was not cached")
	}
}
