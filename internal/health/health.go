// Package health estimates battery health from capacity and cycle count.
//
// The curve is a heuristic, not a manufacturer formula: the raw capacity
// ratio is scaled by a logarithmic cycle-wear factor and a calibration factor
// that brings the result in line with what macOS displays. All constants are
// empirical and exposed on Model so they can be tuned from configuration.
package health

import "math"

// Health categories.
const (
	Good    = "Good"
	Normal  = "Normal"
	Bad     = "Bad"
	Unknown = "Unknown"
)

// Model holds the tunable constants of the estimate.
type Model struct {
	CycleScale     float64 `yaml:"cycle_scale"`
	CycleWeight    float64 `yaml:"cycle_weight"`
	MinDegradation float64 `yaml:"min_degradation"`
	Calibration    float64 `yaml:"calibration"`
	Floor          float64 `yaml:"floor"`
	Ceiling        float64 `yaml:"ceiling"`
}

// DefaultModel returns the stock constants.
func DefaultModel() Model {
	return Model{
		CycleScale:     500,
		CycleWeight:    0.12,
		MinDegradation: 0.80,
		Calibration:    1.06,
		Floor:          0,
		Ceiling:        100,
	}
}

// PreferredCapacity picks the full-charge capacity to compare against the
// design capacity: nominal charge capacity, then raw max capacity, then max
// capacity. Non-positive values count as absent. Returns 0 if all are absent.
func PreferredCapacity(nominal, rawMax, max int) int {
	for _, v := range []int{nominal, rawMax, max} {
		if v > 0 {
			return v
		}
	}
	return 0
}

// Degradation returns the cycle-wear multiplier for a cycle count.
// Negative counts are treated as zero.
func (m Model) Degradation(cycles int) float64 {
	c := float64(cycles)
	if c < 0 {
		c = 0
	}
	scale := m.CycleScale
	if scale <= 0 {
		scale = 1
	}
	return math.Max(1-math.Log10(1+c/scale)*m.CycleWeight, m.MinDegradation)
}

// Estimate returns the health percentage for design capacity d, full-charge
// capacity full and the cycle count. ok is false when either capacity is
// non-positive.
func (m Model) Estimate(d, full, cycles int) (pct float64, ok bool) {
	if d <= 0 || full <= 0 {
		return 0, false
	}
	raw := float64(full) / float64(d) * 100
	h := raw * m.Degradation(cycles) * m.Calibration
	if m.Ceiling > 0 && h > m.Ceiling {
		h = m.Ceiling
	}
	if h < m.Floor {
		h = m.Floor
	}
	return h, true
}

// Category buckets a health percentage. Negative values are Unknown.
func Category(pct float64) string {
	switch {
	case pct < 0:
		return Unknown
	case pct >= 90:
		return Good
	case pct >= 80:
		return Normal
	default:
		return Bad
	}
}

// Round1 rounds to one decimal place, matching the precision the host shows.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
