// Package collector defines the Collector interface and provides
// implementations for the hardware and OS reporters.
package collector

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/platform"
)

// Collector is the interface that all reporters must implement.
// Each collector produces one models record.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect gathers the report and returns it.
	// The context allows for cancellation and timeout control. A failing
	// source never fails the report; the affected fields keep their
	// sentinel values.
	Collect(ctx context.Context) (interface{}, error)

	// IsAvailable checks if this collector can run on the current platform.
	// Collectors that return false will not be registered.
	IsAvailable() bool
}

// sourceFailed logs a failed sub-query at debug level. Unsupported sources
// are expected on some platforms and are not logged.
func sourceFailed(logger *zap.Logger, source string, err error) {
	if err == nil || errors.Is(err, platform.ErrUnsupported) {
		return
	}
	logger.Debug("Source unavailable, keeping sentinel",
		zap.String("source", source),
		zap.Error(err))
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
