package main

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/config"
	"github.com/Guliveer/hwprobe/internal/logging"
	"github.com/Guliveer/hwprobe/internal/report"
)

var (
	serviceOnce sync.Once
	service     *report.Service
	logger      = zap.NewNop()

	// newService is replaced in tests.
	newService = defaultService
)

// defaultService loads configuration from HWPROBE_CONFIG or the standard
// locations. The library never writes to stdout or stderr: logs go to the
// configured file only.
func defaultService() (*report.Service, *zap.Logger) {
	cfg, err := config.LoadLayered(config.CLIOverrides{}, nil)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}
	l := logging.New(cfg.Logging, nil)
	if err != nil {
		l.Warn("Ignoring unusable configuration", zap.Error(err))
	}
	return report.New(cfg, l), l
}

func getService() *report.Service {
	serviceOnce.Do(func() {
		service, logger = newService()
	})
	return service
}

// document runs fn against the shared service. A panic becomes an error
// document so nothing unwinds into the host.
func document(fn func(context.Context, *report.Service) string) (doc string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic in export", zap.Any("panic", r))
			doc = report.ErrorJSON(fmt.Sprintf("internal error: %v", r))
		}
	}()
	return fn(context.Background(), getService())
}

func reportJSON(name string) string {
	return document(func(ctx context.Context, s *report.Service) string { return s.JSON(ctx, name) })
}

// scalar runs fn against the shared service, returning fallback on panic.
func scalar(fallback float64, fn func(context.Context, *report.Service) float64) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic in export", zap.Any("panic", r))
			v = fallback
		}
	}()
	return fn(context.Background(), getService())
}
