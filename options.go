package obfuscator

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/veilkit/obfuscator/engine"
	"github.com/veilkit/obfuscator/naming"
)

// Option configures an Obfuscator.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	minter     naming.Minter
	progress   engine.ProgressFunc
	outputRoot string
}

// WithLogger sets a custom logger.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer. Every run opens one span, with a
// child span per phase.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for clone, warning and duration
// metrics.
func WithMeter(meter metric.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithMinter replaces the random token source. Tests use it to get stable
// names.
func WithMinter(m naming.Minter) Option {
	return func(o *options) {
		o.minter = m
	}
}

// WithProgress sets a callback invoked as each phase starts.
func WithProgress(fn engine.ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithOutputRoot sets the container holding run folders.
// Defaults to engine.DefaultOutputRoot.
func WithOutputRoot(container string) Option {
	return func(o *options) {
		o.outputRoot = container
	}
}

func (o *options) engineOptions() []engine.Option {
	opts := []engine.Option{engine.WithLogger(o.logger)}
	if o.tracer != nil {
		opts = append(opts, engine.WithTracer(o.tracer))
	}
	if o.meter != nil {
		opts = append(opts, engine.WithMeter(o.meter))
	}
	if o.minter != nil {
		opts = append(opts, engine.WithMinter(o.minter))
	}
	if o.progress != nil {
		opts = append(opts, engine.WithProgress(o.progress))
	}
	if o.outputRoot != "" {
		opts = append(opts, engine.WithOutputRoot(o.outputRoot))
	}
	return opts
}
