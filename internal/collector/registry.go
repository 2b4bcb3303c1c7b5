// Package collector provides a registry for managing reporters.
// Collectors are registered at startup; the report service looks them up by
// name and the scheduler runs all of them concurrently.
package collector

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Registry manages all registered collectors and orchestrates concurrent collection.
type Registry struct {
	collectors []Collector
	byName     map[string]Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		collectors: make([]Collector, 0),
		byName:     make(map[string]Collector),
		logger:     nopIfNil(logger),
	}
}

// Register adds a collector if it's available on the current platform.
// Unavailable collectors are logged and skipped. A second collector with the
// same name replaces the first.
func (r *Registry) Register(c Collector) {
	if !c.IsAvailable() {
		r.logger.Warn("Collector not available, skipping", zap.String("name", c.Name()))
		return
	}
	if _, dup := r.byName[c.Name()]; dup {
		for i, existing := range r.collectors {
			if existing.Name() == c.Name() {
				r.collectors[i] = c
			}
		}
	} else {
		r.collectors = append(r.collectors, c)
	}
	r.byName[c.Name()] = c
	r.logger.Debug("Registered collector", zap.String("name", c.Name()))
}

// Get returns the collector registered under name.
func (r *Registry) Get(name string) (Collector, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Names returns the registered collector names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CollectAll runs all registered collectors concurrently and returns a map
// of collector name -> result data. Failed collectors are logged but do not
// prevent other collectors from completing.
func (r *Registry) CollectAll(ctx context.Context) map[string]interface{} {
	results := make(map[string]interface{})
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, c := range r.collectors {
		wg.Add(1)
		go func(col Collector) {
			defer wg.Done()
			data, err := col.Collect(ctx)
			if err != nil {
				r.logger.Error("Collection failed",
					zap.String("collector", col.Name()),
					zap.Error(err))
				return
			}
			mu.Lock()
			results[col.Name()] = data
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	return results
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}
