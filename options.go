package chromad

import (
	"log/slog"

	"github.com/hupe1980/chromad/codec"
	"github.com/hupe1980/chromad/resource"
	"github.com/hupe1980/chromad/segment"
	"github.com/hupe1980/chromad/storage"
)

type options struct {
	storage    storage.Storage
	commits    CommitStore
	codec      codec.Codec
	metrics    MetricsCollector
	logger     *Logger
	controller *resource.Controller
	metaConv   segment.MetadataConverter
	scopeConv  segment.ScopeConverter
	syncLimit  int
}

// Option configures Worker construction.
//
// Options exist to avoid exploding the API surface with
// dependency-specific constructor variants.
type Option func(*options)

// WithStorage configures the backend that holds segment files.
// Without one, file transfer and checkpoint operations fail with a
// FailedPrecondition-coded error.
func WithStorage(s storage.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithCommitStore configures the commit store used to publish and
// resolve the latest checkpoint pointer.
func WithCommitStore(cs CommitStore) Option {
	return func(o *options) {
		o.commits = cs
	}
}

// WithCodec configures the codec used for checkpoint envelopes and
// configuration parsing.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetrics configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &chromad.BasicMetricsCollector{}
//	w := chromad.New(chromad.WithMetrics(metrics))
//	// ... use w ...
//	stats := metrics.GetStats()
//	fmt.Printf("Registered: %d, Avg convert: %dns\n", stats.RegisterSegments, stats.ConvertAvgNanos)
func WithMetrics(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := chromad.NewJSONLogger(slog.LevelInfo)
//	w := chromad.New(chromad.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController bounds transfer concurrency and throughput.
// A nil controller leaves transfers unlimited.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithMetadataConverter overrides the metadata conversion delegate of
// the descriptor pipeline.
func WithMetadataConverter(mc segment.MetadataConverter) Option {
	return func(o *options) {
		o.metaConv = mc
	}
}

// WithScopeConverter overrides the scope conversion delegate of the
// descriptor pipeline.
func WithScopeConverter(sc segment.ScopeConverter) Option {
	return func(o *options) {
		o.scopeConv = sc
	}
}

// WithSyncLimit caps the number of files a single Pull or Push moves
// concurrently. Values below 1 keep the default.
func WithSyncLimit(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.syncLimit = n
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:     codec.Default,
		metrics:   NoopMetricsCollector{},
		logger:    NoopLogger(),
		syncLimit: defaultSyncLimit,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
