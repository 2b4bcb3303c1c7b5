//go:build !windows

// Package service provides a stub implementation for non-Windows platforms.
// On macOS and Linux `hwprobe serve` runs as a foreground process under
// whatever supervisor started it.
package service

import (
	"context"

	"go.uber.org/zap"
)

// ProbeService is a pass-through wrapper for non-Windows platforms.
type ProbeService struct {
	logger *zap.Logger
	runFn  func(ctx context.Context)
}

// New creates a stub service wrapper.
func New(logger *zap.Logger, runFn func(ctx context.Context)) *ProbeService {
	return &ProbeService{
		logger: logger,
		runFn:  runFn,
	}
}

// IsWindowsService always returns false on non-Windows platforms.
func IsWindowsService() bool {
	return false
}

// Run calls the run function directly and returns when it does.
func (s *ProbeService) Run() error {
	s.runFn(context.Background())
	return nil
}
