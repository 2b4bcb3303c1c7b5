//go:build !windows

package autostart

import (
	"fmt"
	"os"
)

// CheckElevation verifies the process has root privileges when mode needs
// them.
func CheckElevation(mode Mode) error {
	if mode == UserMode {
		return nil
	}
	if os.Geteuid() != 0 {
		return fmt.Errorf("system-wide installation requires root privileges\n\nRun with sudo:\n  sudo %s autostart install", os.Args[0])
	}
	return nil
}
