// Package scheduler implements a tick-based periodic snapshot loop.
// It does not print or store snapshots itself; it invokes the registered
// callbacks with each one.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/hwprobe/internal/models"
)

// Source produces one snapshot per call.
type Source interface {
	Snapshot(ctx context.Context) models.Snapshot
}

// Scheduler collects a snapshot at a fixed interval.
type Scheduler struct {
	source   Source
	interval time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	callbacks []func(models.Snapshot)
	count     int
}

// New creates a Scheduler. The interval must be positive.
func New(source Source, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		source:   source,
		interval: interval,
		logger:   logger,
	}
}

// OnSnapshot adds a callback invoked with every snapshot, in registration
// order.
func (s *Scheduler) OnSnapshot(fn func(models.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Count returns the number of snapshots delivered so far.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Start collects immediately and then once per interval. It blocks until
// the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.collect(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Scheduler stopped", zap.Int("snapshots", s.Count()))
			return
		case <-ticker.C:
			s.collect(ctx)
		}
	}
}

// collect takes one snapshot and hands it to the callbacks. A snapshot cut
// short by cancellation is dropped.
func (s *Scheduler) collect(ctx context.Context) {
	snap := s.source.Snapshot(ctx)
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	callbacks := make([]func(models.Snapshot), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.count++
	s.mu.Unlock()

	s.logger.Debug("Collected snapshot", zap.Time("timestamp", snap.Timestamp))
	for _, fn := range callbacks {
		fn(snap)
	}
}
