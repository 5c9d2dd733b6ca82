package symgraph

import (
	"log/slog"

	"github.com/hupe1980/symgraph/codec"
	"github.com/hupe1980/symgraph/resource"
	"github.com/hupe1980/symgraph/persistence"
)

type options struct {
	codec            codec.Codec
	compression      persistence.Compression
	resources        *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
	noOverwrite      bool
}

// Option configures builders, snapshot IO and exports.
type Option func(*options)

// WithCodec configures the codec used by Export.
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

// WithCompression selects the compression of saved snapshots.
// Payloads that do not shrink are stored uncompressed regardless.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceController bounds the memory, workers and IO bandwidth used
// by snapshot IO. A nil controller imposes no limits.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:         4,
//	    IOLimitBytesPerSec: 32 << 20,
//	})
//	err := symgraph.SaveAll(ctx, store, tables, symgraph.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &symgraph.BasicMetricsCollector{}
//	tbl, _ := symgraph.NewBuilder(symgraph.WithMetricsCollector(metrics)).Freeze()
//	stats := metrics.GetStats()
//	fmt.Printf("Freezes: %d, Avg latency: %dns\n", stats.FreezeCount, stats.FreezeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := symgraph.NewJSONLogger(slog.LevelInfo)
//	tbl, err := symgraph.Load(ctx, store, "grammar.sgt", symgraph.WithLogger(logger))
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

// WithNoOverwrite makes Save fail with an error matching
// blobstore.ErrExists instead of replacing an existing snapshot.
func WithNoOverwrite() Option {
	return func(o *options) {
		o.noOverwrite = true
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		compression:      persistence.CompressionLZ4,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
