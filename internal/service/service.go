//go:build windows

// Package service provides Windows Service integration.
// Under the service control manager, `hwprobe serve` enters the SCM control
// loop. From a terminal it runs in the foreground.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/windows/svc"
)

// Name is the service name registered with the SCM.
const Name = "HwProbe"

// stopTimeout bounds how long a stop request waits for the run function.
const stopTimeout = 5 * time.Second

// ProbeService implements the Windows service interface (svc.Handler).
type ProbeService struct {
	logger *zap.Logger
	runFn  func(ctx context.Context)
}

// New creates a Windows service wrapper.
// runFn is called with a context that is cancelled when the SCM stops the
// service.
func New(logger *zap.Logger, runFn func(ctx context.Context)) *ProbeService {
	return &ProbeService{
		logger: logger,
		runFn:  runFn,
	}
}

// IsWindowsService reports whether the process was started by the SCM.
func IsWindowsService() bool {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return false
	}
	return isService
}

// Run enters the service control loop.
func (s *ProbeService) Run() error {
	return svc.Run(Name, s)
}

// Execute implements svc.Handler. It manages the service lifecycle: start,
// running, stop/shutdown.
func (s *ProbeService) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (ssec bool, errno uint32) {
	changes <- svc.Status{State: svc.StartPending}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.runFn(ctx)
	}()

	changes <- svc.Status{
		State:   svc.Running,
		Accepts: svc.AcceptStop | svc.AcceptShutdown,
	}
	s.logger.Info("Windows service started")

	for {
		select {
		case <-done:
			s.logger.Warn("Service run function returned, stopping")
			return false, 1
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				s.logger.Info("Windows service stopping")
				changes <- svc.Status{State: svc.StopPending}
				cancel()
				select {
				case <-done:
				case <-time.After(stopTimeout):
					s.logger.Warn("Run function did not stop in time")
				}
				return false, 0
			default:
				s.logger.Warn("Unexpected service control request",
					zap.Uint32("cmd", uint32(c.Cmd)))
			}
		}
	}
}
