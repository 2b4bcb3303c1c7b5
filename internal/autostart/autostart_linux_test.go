//go:build linux

package autostart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingRunner struct {
	calls []string
	fail  map[string]bool
}

func (r *recordingRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	call := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, call)
	if r.fail[call] {
		return "", errors.New("exit status 1")
	}
	return "", nil
}

func TestLinuxManager_InstallUninstall(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "systemd", "user")
	runner := &recordingRunner{}
	m := newLinuxManager(UserMode, runner, dir)

	if ok, err := m.IsInstalled(); err != nil || ok {
		t.Fatalf("IsInstalled before install = %v, %v", ok, err)
	}
	if err := m.Install(Spec{ExecPath: "/usr/bin/hwprobe"}); err != nil {
		t.Fatal(err)
	}
	if ok, err := m.IsInstalled(); err != nil || !ok {
		t.Fatalf("IsInstalled after install = %v, %v", ok, err)
	}

	unit, err := os.ReadFile(filepath.Join(dir, "hwprobe.service"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(unit), "ExecStart=/usr/bin/hwprobe serve\n") {
		t.Errorf("unexpected unit:\n%s", unit)
	}

	want := []string{
		"systemctl --user daemon-reload",
		"systemctl --user enable hwprobe",
		"systemctl --user start hwprobe",
	}
	if strings.Join(runner.calls, "\n") != strings.Join(want, "\n") {
		t.Errorf("calls = %q, want %q", runner.calls, want)
	}

	runner.calls = nil
	if err := m.Uninstall(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := m.IsInstalled(); ok {
		t.Error("unit still present after Uninstall")
	}
	if len(runner.calls) != 3 || runner.calls[2] != "systemctl --user daemon-reload" {
		t.Errorf("uninstall calls = %q", runner.calls)
	}
}

func TestLinuxManager_SystemModeOmitsUserFlag(t *testing.T) {
	runner := &recordingRunner{}
	m := newLinuxManager(SystemMode, runner, t.TempDir())
	if err := m.Install(Spec{ExecPath: "/usr/bin/hwprobe"}); err != nil {
		t.Fatal(err)
	}
	if runner.calls[0] != "systemctl daemon-reload" {
		t.Errorf("first call = %q", runner.calls[0])
	}
}

func TestLinuxManager_InstallReportsFailedCommand(t *testing.T) {
	runner := &recordingRunner{fail: map[string]bool{"systemctl enable hwprobe": true}}
	m := newLinuxManager(SystemMode, runner, t.TempDir())
	err := m.Install(Spec{ExecPath: "/usr/bin/hwprobe"})
	if err == nil || !strings.Contains(err.Error(), "systemctl enable hwprobe") {
		t.Fatalf("err = %v, want failing command named", err)
	}
	if len(runner.calls) != 2 {
		t.Errorf("install continued after failure: %q", runner.calls)
	}
}

func TestLinuxManager_UninstallWithoutUnit(t *testing.T) {
	m := newLinuxManager(SystemMode, &recordingRunner{}, t.TempDir())
	if err := m.Uninstall(); err != nil {
		t.Errorf("Uninstall of missing unit = %v", err)
	}
}
