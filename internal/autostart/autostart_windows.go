//go:build windows

package autostart

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"

	"github.com/Guliveer/hwprobe/internal/service"
	"github.com/Guliveer/hwprobe/internal/shell"
)

const (
	serviceDisplay = "hwprobe Hardware Telemetry"
	serviceDesc    = "Serves hardware reports and usage figures over a local HTTP API"
)

// windowsManager implements Manager using the Service Control Manager.
// Services are always system-wide; UserMode is rejected by New.
type windowsManager struct{}

// New returns a Manager for the Service Control Manager. The runner is
// unused on Windows.
func New(mode Mode, _ shell.Runner) (Manager, error) {
	if mode == UserMode {
		return nil, fmt.Errorf("%s install mode is not available on Windows", mode)
	}
	return &windowsManager{}, nil
}

func (w *windowsManager) ServiceName() string { return service.Name }

// IsInstalled checks whether the service is registered in the SCM.
func (w *windowsManager) IsInstalled() (bool, error) {
	m, err := mgr.Connect()
	if err != nil {
		return false, fmt.Errorf("connecting to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(service.Name)
	if err != nil {
		return false, nil
	}
	s.Close()
	return true, nil
}

// Install registers `hwprobe serve` as an automatic service and starts it.
func (w *windowsManager) Install(spec Spec) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connecting to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.CreateService(service.Name, spec.ExecPath, mgr.Config{
		DisplayName: serviceDisplay,
		Description: serviceDesc,
		StartType:   mgr.StartAutomatic,
	}, spec.Args()...)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}
	defer s.Close()

	if err := s.Start(); err != nil {
		return fmt.Errorf("starting service: %w", err)
	}
	return nil
}

// Uninstall stops and deletes the service.
func (w *windowsManager) Uninstall() error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connecting to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(service.Name)
	if err != nil {
		return fmt.Errorf("opening service: %w", err)
	}
	defer s.Close()

	if status, err := s.Control(svc.Stop); err == nil {
		deadline := time.Now().Add(10 * time.Second)
		for status.State != svc.Stopped && time.Now().Before(deadline) {
			time.Sleep(300 * time.Millisecond)
			if status, err = s.Query(); err != nil {
				break
			}
		}
	}

	if err := s.Delete(); err != nil {
		return fmt.Errorf("deleting service: %w", err)
	}
	return nil
}
