// Package sampler computes utilization percentages from cumulative
// busy/total counter pairs. A Delta is owned by whoever samples it; it keeps
// the previous snapshot behind a mutex so concurrent callers cannot interleave
// a read-compare-store cycle.
package sampler

import "sync"

// Ticks is a cumulative counter snapshot. Busy must never exceed Total.
type Ticks struct {
	Busy  float64
	Total float64
}

// Delta turns successive Ticks into a busy percentage.
type Delta struct {
	mu          sync.Mutex
	last        Ticks
	initialized bool
}

// New returns a sampler with no prior snapshot.
func New() *Delta {
	return &Delta{}
}

// Observe records now and returns the busy percentage since the previous
// snapshot. The first call after construction or Reset only establishes a
// baseline and returns (0, false). Later calls return a value clamped to
// [0, 100]. A counter that goes backwards (reset or wrap) re-baselines and
// returns 0.
func (d *Delta) Observe(now Ticks) (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		d.last = now
		d.initialized = true
		return 0, false
	}

	prev := d.last
	d.last = now

	busy := now.Busy - prev.Busy
	total := now.Total - prev.Total
	if busy < 0 || total < 0 {
		return 0, true
	}
	if total == 0 {
		return 0, true
	}
	return Clamp(busy / total * 100), true
}

// Initialized reports whether a baseline snapshot exists.
func (d *Delta) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// Reset discards the baseline.
func (d *Delta) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = Ticks{}
	d.initialized = false
}

// Clamp limits a percentage to [0, 100].
func Clamp(pct float64) float64 {
	switch {
	case pct != pct: // NaN
		return 0
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}
