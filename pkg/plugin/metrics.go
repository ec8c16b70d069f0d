package plugin

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// LoadMetrics stores load statistics for a single plugin using atomic operations
type LoadMetrics struct {
	Count     atomic.Int64
	Failures  atomic.Int64
	TotalTime atomic.Int64 // save nanoseconds
	MinTime   atomic.Int64 // save nanoseconds
	MaxTime   atomic.Int64 // save nanoseconds
}

// LoadStats is a point in time copy of LoadMetrics
type LoadStats struct {
	Count     int64
	Failures  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// Metrics stores load metrics per plugin
type Metrics struct {
	plugins sync.Map // map[string]*LoadMetrics
	enabled atomic.Bool
}

// NewMetrics creates a new plugin metrics collector
func NewMetrics(enabled bool) *Metrics {
	m := &Metrics{}
	m.enabled.Store(enabled)
	return m
}

// SetEnabled sets the enabled state
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns the enabled state
func (m *Metrics) IsEnabled() bool {
	return m != nil && m.enabled.Load()
}

// Record records a single load attempt
func (m *Metrics) Record(pluginName string, duration time.Duration, err error) {
	if !m.IsEnabled() {
		return
	}

	value, _ := m.plugins.LoadOrStore(pluginName, &LoadMetrics{})
	metrics := value.(*LoadMetrics)

	durationNanos := duration.Nanoseconds()

	metrics.Count.Add(1)
	metrics.TotalTime.Add(durationNanos)
	if err != nil {
		metrics.Failures.Add(1)
	}

	// Update min time using CAS loop
	for {
		current := metrics.MinTime.Load()
		if current != 0 && durationNanos >= current {
			break
		}
		if metrics.MinTime.CompareAndSwap(current, durationNanos) {
			break
		}
	}

	// Update max time using CAS loop
	for {
		current := metrics.MaxTime.Load()
		if durationNanos <= current {
			break
		}
		if metrics.MaxTime.CompareAndSwap(current, durationNanos) {
			break
		}
	}
}

// Get returns a snapshot of the metrics for a specific plugin
func (m *Metrics) Get(pluginName string) (LoadStats, error) {
	if !m.IsEnabled() {
		return LoadStats{}, fmt.Errorf("metrics are disabled")
	}

	value, exists := m.plugins.Load(pluginName)
	if !exists {
		return LoadStats{}, fmt.Errorf("no metrics found for plugin: %s", pluginName)
	}

	metrics := value.(*LoadMetrics)
	return LoadStats{
		Count:     metrics.Count.Load(),
		Failures:  metrics.Failures.Load(),
		TotalTime: time.Duration(metrics.TotalTime.Load()),
		MinTime:   time.Duration(metrics.MinTime.Load()),
		MaxTime:   time.Duration(metrics.MaxTime.Load()),
	}, nil
}

// Reset drops all recorded metrics
func (m *Metrics) Reset() {
	m.plugins.Range(func(key, value interface{}) bool {
		m.plugins.Delete(key)
		return true
	})
}
