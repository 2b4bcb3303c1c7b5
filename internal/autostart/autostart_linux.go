//go:build linux

package autostart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Guliveer/hwprobe/internal/shell"
)

const systemUnitDir = "/etc/systemd/system"

// linuxManager implements Manager for Linux using systemd.
type linuxManager struct {
	mode    Mode
	runner  shell.Runner
	unitDir string
}

// New returns a Manager that uses systemd. UserMode installs a user unit
// under ~/.config/systemd/user managed with `systemctl --user`.
func New(mode Mode, runner shell.Runner) (Manager, error) {
	dir := systemUnitDir
	if mode == UserMode {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".config", "systemd", "user")
	}
	return newLinuxManager(mode, runner, dir), nil
}

func newLinuxManager(mode Mode, runner shell.Runner, unitDir string) *linuxManager {
	return &linuxManager{mode: mode, runner: runner, unitDir: unitDir}
}

func (l *linuxManager) ServiceName() string { return ServiceName }

func (l *linuxManager) unitPath() string {
	return filepath.Join(l.unitDir, ServiceName+".service")
}

func (l *linuxManager) systemctl(args ...string) error {
	if l.mode == UserMode {
		args = append([]string{"--user"}, args...)
	}
	if _, err := l.runner.Output(context.Background(), "systemctl", args...); err != nil {
		return fmt.Errorf("running systemctl %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// IsInstalled checks whether the unit file exists.
func (l *linuxManager) IsInstalled() (bool, error) {
	_, err := os.Stat(l.unitPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking unit file: %w", err)
	}
	return true, nil
}

// Install writes the unit file, reloads the daemon, then enables and starts
// the service.
func (l *linuxManager) Install(spec Spec) error {
	if err := os.MkdirAll(l.unitDir, 0o755); err != nil {
		return fmt.Errorf("creating unit directory: %w", err)
	}
	if err := os.WriteFile(l.unitPath(), []byte(systemdUnit(spec, l.mode)), 0o644); err != nil {
		return fmt.Errorf("writing unit file: %w", err)
	}
	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", ServiceName},
		{"start", ServiceName},
	} {
		if err := l.systemctl(args...); err != nil {
			return err
		}
	}
	return nil
}

// Uninstall stops, disables and removes the service.
func (l *linuxManager) Uninstall() error {
	// Best-effort: the service may already be inactive.
	_ = l.systemctl("stop", ServiceName)
	_ = l.systemctl("disable", ServiceName)

	if err := os.Remove(l.unitPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing unit file: %w", err)
	}
	_ = l.systemctl("daemon-reload")
	return nil
}
