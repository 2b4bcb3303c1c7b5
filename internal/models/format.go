package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count with binary units ("1.5 GiB").
// Zero renders as "0 B" so sentinel sizes stay readable.
func FormatBytes(n uint64) string {
	return humanize.IBytes(n)
}

// FormatUptime renders seconds as "3d 04:05:06".
func FormatUptime(seconds uint64) string {
	d := seconds / 86400
	h := (seconds % 86400) / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dd %02d:%02d:%02d", d, h, m, s)
}

// FormatTime renders a Unix timestamp as RFC 3339, or Unknown for zero.
func FormatTime(unix int64) string {
	if unix <= 0 {
		return Unknown
	}
	return time.Unix(unix, 0).Format(time.RFC3339)
}

// OrUnknown returns s trimmed, or Unknown when it is empty.
func OrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown
	}
	return s
}

// Percent returns part/whole*100, or 0 when whole is zero.
func Percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
