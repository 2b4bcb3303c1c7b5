//go:build darwin

package autostart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Guliveer/hwprobe/internal/shell"
)

type darwinManager struct {
	mode      Mode
	runner    shell.Runner
	plistPath string
	logDir    string
}

// New returns a Manager backed by launchd. SystemMode installs a
// LaunchDaemon, UserMode a LaunchAgent for the current user.
func New(mode Mode, runner shell.Runner) (Manager, error) {
	m := &darwinManager{mode: mode, runner: runner}
	if mode == UserMode {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		m.plistPath = filepath.Join(home, "Library", "LaunchAgents", launchdLabel+".plist")
		m.logDir = filepath.Join(home, "Library", "Logs", "hwprobe")
	} else {
		m.plistPath = filepath.Join("/Library", "LaunchDaemons", launchdLabel+".plist")
		m.logDir = "/var/log"
	}
	return m, nil
}

func (d *darwinManager) ServiceName() string { return launchdLabel }

func (d *darwinManager) IsInstalled() (bool, error) {
	_, err := os.Stat(d.plistPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking plist file: %w", err)
	}
	return true, nil
}

func (d *darwinManager) Install(spec Spec) error {
	for _, dir := range []string{d.logDir, filepath.Dir(d.plistPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(d.plistPath, []byte(launchdPlist(spec, d.logDir)), 0o644); err != nil {
		return fmt.Errorf("creating plist: %w", err)
	}
	if _, err := d.runner.Output(context.Background(), "launchctl", "load", "-w", d.plistPath); err != nil {
		return fmt.Errorf("loading plist: %w", err)
	}
	return nil
}

func (d *darwinManager) Uninstall() error {
	_, _ = d.runner.Output(context.Background(), "launchctl", "unload", d.plistPath)
	if err := os.Remove(d.plistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing plist: %w", err)
	}
	return nil
}
