// Network collector: adapters and the RX/TX bytes since the previous call.
// Uses gopsutil for cross-platform network metrics.
package collector

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
	"github.com/Guliveer/hwprobe/internal/platform"
)

// NetworkCollector collects network interfaces and I/O deltas.
// It tracks previous readings to compute deltas between collections.
type NetworkCollector struct {
	host   platform.Host
	logger *zap.Logger

	mu          sync.Mutex
	lastRx      uint64
	lastTx      uint64
	initialized bool
}

// NewNetworkCollector creates a new network collector.
func NewNetworkCollector(h platform.Host, logger *zap.Logger) *NetworkCollector {
	return &NetworkCollector{host: h, logger: nopIfNil(logger)}
}

// Name returns the collector identifier.
func (c *NetworkCollector) Name() string { return "network" }

// IsAvailable returns true; network metrics are available on all platforms.
func (c *NetworkCollector) IsAvailable() bool { return true }

// Collect gathers adapters and the RX/TX delta since the last collection.
// The first collection returns zero deltas while establishing a baseline.
func (c *NetworkCollector) Collect(ctx context.Context) (interface{}, error) {
	info := models.NetworkInfo{
		Hostname:   models.Unknown,
		Interfaces: []models.NetworkInterface{},
	}
	if hi, err := c.host.HostInfo(ctx); err == nil && hi != nil {
		info.Hostname = models.OrUnknown(hi.Hostname)
	}

	counters, err := c.host.NetIOCounters(ctx)
	if err != nil {
		sourceFailed(c.logger, "net io counters", err)
	}
	type traffic struct{ sent, recv uint64 }
	perNIC := make(map[string]traffic, len(counters))
	var totalRx, totalTx uint64
	for _, n := range counters {
		perNIC[n.Name] = traffic{sent: n.BytesSent, recv: n.BytesRecv}
		totalRx += n.BytesRecv
		totalTx += n.BytesSent
	}

	ifaces, err := c.host.Interfaces(ctx)
	if err != nil {
		sourceFailed(c.logger, "net interfaces", err)
	}
	for _, iface := range ifaces {
		addrs := make([]string, 0, len(iface.Addrs))
		for _, a := range iface.Addrs {
			addrs = append(addrs, a.Addr)
		}
		flags := iface.Flags
		if flags == nil {
			flags = []string{}
		}
		t := perNIC[iface.Name]
		info.Interfaces = append(info.Interfaces, models.NetworkInterface{
			Name:      iface.Name,
			MAC:       models.OrUnknown(iface.HardwareAddr),
			Addresses: addrs,
			Flags:     flags,
			BytesSent: t.sent,
			BytesRecv: t.recv,
		})
	}

	if len(counters) > 0 {
		info.RxBytes, info.TxBytes = c.delta(totalRx, totalTx)
	}
	return info, nil
}

// delta returns the change since the previous totals. A counter that went
// backwards (interface reset) re-baselines and reports zero.
func (c *NetworkCollector) delta(rx, tx uint64) (uint64, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deltaRx, deltaTx uint64
	if c.initialized {
		if rx >= c.lastRx {
			deltaRx = rx - c.lastRx
		}
		if tx >= c.lastTx {
			deltaTx = tx - c.lastTx
		}
	}
	c.lastRx = rx
	c.lastTx = tx
	c.initialized = true
	return deltaRx, deltaTx
}
