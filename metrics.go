package chromad

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    registerCounter prometheus.Counter
//	    pullHistogram   prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordRegister(count int, duration time.Duration, err error) {
//	    p.registerCounter.Add(float64(count))
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordConvert is called after each descriptor conversion.
	// err is nil if the descriptor was accepted.
	RecordConvert(duration time.Duration, err error)

	// RecordRegister is called after each registration request.
	// count is the number of descriptors attempted; admission is
	// all-or-nothing, so err non-nil means none were admitted.
	RecordRegister(count int, duration time.Duration, err error)

	// RecordPull is called after each segment file pull.
	// files is the number of files in the segment's file set.
	RecordPull(files int, duration time.Duration, err error)

	// RecordPush is called after each segment file push.
	RecordPush(files int, duration time.Duration, err error)

	// RecordCheckpoint is called after each checkpoint or restore.
	RecordCheckpoint(segments int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordConvert(time.Duration, error)         {}
func (NoopMetricsCollector) RecordRegister(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordPull(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordPush(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordCheckpoint(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ConvertCount        atomic.Int64
	ConvertErrors       atomic.Int64
	ConvertTotalNanos   atomic.Int64
	RegisterCount       atomic.Int64
	RegisterSegments    atomic.Int64
	RegisterErrors      atomic.Int64
	PullCount           atomic.Int64
	PullFiles           atomic.Int64
	PullErrors          atomic.Int64
	PullTotalNanos      atomic.Int64
	PushCount           atomic.Int64
	PushFiles           atomic.Int64
	PushErrors          atomic.Int64
	PushTotalNanos      atomic.Int64
	CheckpointCount     atomic.Int64
	CheckpointSegments  atomic.Int64
	CheckpointErrors    atomic.Int64
}

// RecordConvert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConvert(duration time.Duration, err error) {
	b.ConvertCount.Add(1)
	b.ConvertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ConvertErrors.Add(1)
	}
}

// RecordRegister implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRegister(count int, duration time.Duration, err error) {
	b.RegisterCount.Add(1)
	b.RegisterSegments.Add(int64(count))
	if err != nil {
		b.RegisterErrors.Add(1)
	}
}

// RecordPull implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPull(files int, duration time.Duration, err error) {
	b.PullCount.Add(1)
	b.PullFiles.Add(int64(files))
	b.PullTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PullErrors.Add(1)
	}
}

// RecordPush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPush(files int, duration time.Duration, err error) {
	b.PushCount.Add(1)
	b.PushFiles.Add(int64(files))
	b.PushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PushErrors.Add(1)
	}
}

// RecordCheckpoint implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheckpoint(segments int, duration time.Duration, err error) {
	b.CheckpointCount.Add(1)
	b.CheckpointSegments.Add(int64(segments))
	if err != nil {
		b.CheckpointErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ConvertCount:       b.ConvertCount.Load(),
		ConvertErrors:      b.ConvertErrors.Load(),
		ConvertAvgNanos:    b.getAvgConvertNanos(),
		RegisterCount:      b.RegisterCount.Load(),
		RegisterSegments:   b.RegisterSegments.Load(),
		RegisterErrors:     b.RegisterErrors.Load(),
		PullCount:          b.PullCount.Load(),
		PullFiles:          b.PullFiles.Load(),
		PullErrors:         b.PullErrors.Load(),
		PushCount:          b.PushCount.Load(),
		PushFiles:          b.PushFiles.Load(),
		PushErrors:         b.PushErrors.Load(),
		CheckpointCount:    b.CheckpointCount.Load(),
		CheckpointSegments: b.CheckpointSegments.Load(),
		CheckpointErrors:   b.CheckpointErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgConvertNanos() int64 {
	count := b.ConvertCount.Load()
	if count == 0 {
		return 0
	}
	return b.ConvertTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ConvertCount       int64
	ConvertErrors      int64
	ConvertAvgNanos    int64
	RegisterCount      int64
	RegisterSegments   int64
	RegisterErrors     int64
	PullCount          int64
	PullFiles          int64
	PullErrors         int64
	PushCount          int64
	PushFiles          int64
	PushErrors         int64
	CheckpointCount    int64
	CheckpointSegments int64
	CheckpointErrors   int64
}
