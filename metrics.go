package symgraph

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordFreeze is called after each Builder.Freeze.
	// declarations and references count the constructs that were frozen.
	RecordFreeze(declarations, references int, duration time.Duration, err error)

	// RecordSave is called after each snapshot save with the number of
	// bytes written to the store.
	RecordSave(bytes int64, duration time.Duration, err error)

	// RecordLoad is called after each snapshot load with the number of
	// bytes read from the store.
	RecordLoad(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFreeze(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSave(int64, time.Duration, error)      {}
func (NoopMetricsCollector) RecordLoad(int64, time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FreezeCount        atomic.Int64
	FreezeErrors       atomic.Int64
	FreezeTotalNanos   atomic.Int64
	FrozenDeclarations atomic.Int64
	FrozenReferences   atomic.Int64
	SaveCount          atomic.Int64
	SaveErrors         atomic.Int64
	SaveBytes          atomic.Int64
	SaveTotalNanos     atomic.Int64
	LoadCount          atomic.Int64
	LoadErrors         atomic.Int64
	LoadBytes          atomic.Int64
	LoadTotalNanos     atomic.Int64
}

// RecordFreeze implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFreeze(declarations, references int, duration time.Duration, err error) {
	b.FreezeCount.Add(1)
	b.FreezeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FreezeErrors.Add(1)
		return
	}
	b.FrozenDeclarations.Add(int64(declarations))
	b.FrozenReferences.Add(int64(references))
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(bytes int64, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(bytes)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int64, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FreezeCount:        b.FreezeCount.Load(),
		FreezeErrors:       b.FreezeErrors.Load(),
		FreezeAvgNanos:     avg(b.FreezeTotalNanos.Load(), b.FreezeCount.Load()),
		FrozenDeclarations: b.FrozenDeclarations.Load(),
		FrozenReferences:   b.FrozenReferences.Load(),
		SaveCount:          b.SaveCount.Load(),
		SaveErrors:         b.SaveErrors.Load(),
		SaveBytes:          b.SaveBytes.Load(),
		SaveAvgNanos:       avg(b.SaveTotalNanos.Load(), b.SaveCount.Load()),
		LoadCount:          b.LoadCount.Load(),
		LoadErrors:         b.LoadErrors.Load(),
		LoadBytes:          b.LoadBytes.Load(),
		LoadAvgNanos:       avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FreezeCount        int64
	FreezeErrors       int64
	FreezeAvgNanos     int64
	FrozenDeclarations int64
	FrozenReferences   int64
	SaveCount          int64
	SaveErrors         int64
	SaveBytes          int64
	SaveAvgNanos       int64
	LoadCount          int64
	LoadErrors         int64
	LoadBytes          int64
	LoadAvgNanos       int64
}
