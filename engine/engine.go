package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/config"
	"github.com/veilkit/obfuscator/naming"
	"github.com/veilkit/obfuscator/obferr"
	"github.com/veilkit/obfuscator/scene"
)

const (
	// DefaultOutputRoot is the container that holds one folder per run.
	DefaultOutputRoot = "Obfuscated"

	// RootSuffix is appended to the run token to name the output root.
	RootSuffix = "_Obfuscated"
)

// IsObfuscatedName reports whether name is the name of an output root:
// a token of naming.TokenLength characters followed by RootSuffix.
func IsObfuscatedName(name string) bool {
	return len(name) == naming.TokenLength+len(RootSuffix) &&
		name[naming.TokenLength:] == RootSuffix
}

// TokenOf returns the run token of an output root name, or "" if name is not
// one.
func TokenOf(name string) string {
	if !IsObfuscatedName(name) {
		return ""
	}
	return name[:naming.TokenLength]
}

// ProgressFunc receives the name of each phase as it starts and the
// fraction of the run completed before it.
type ProgressFunc func(phase string, fraction float64)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithTracer sets the tracer used for run and phase spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = tracer
	}
}

// WithMeter sets the meter used for run metrics.
func WithMeter(meter metric.Meter) Option {
	return func(p *Pipeline) {
		p.meter = meter
	}
}

// WithMinter sets the token source. Defaults to naming.UUIDMinter.
func WithMinter(m naming.Minter) Option {
	return func(p *Pipeline) {
		p.minter = m
	}
}

// WithProgress sets a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithOutputRoot sets the container that receives run folders.
func WithOutputRoot(container string) Option {
	return func(p *Pipeline) {
		p.outputRoot = container
	}
}

// Pipeline obfuscates subjects. It is safe for concurrent use; each Run has
// its own tables.
type Pipeline struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	minter     naming.Minter
	progress   ProgressFunc
	outputRoot string
	metrics    *metrics
}

// New creates a pipeline.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		logger:     slog.Default(),
		tracer:     tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		meter:      metricnoop.NewMeterProvider().Meter(InstrumentationName),
		minter:     naming.UUIDMinter{},
		outputRoot: DefaultOutputRoot,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := asset.CheckPath(p.outputRoot); err != nil {
		return nil, fmt.Errorf("invalid output root: %w", err)
	}

	m, err := newMetrics(p.meter)
	if err != nil {
		return nil, err
	}
	p.metrics = m
	return p, nil
}

// OutputRoot returns the container that receives run folders.
func (p *Pipeline) OutputRoot() string {
	return p.outputRoot
}

// Result describes a completed run.
type Result struct {
	// Root is the obfuscated copy of the subject.
	Root *scene.Node

	// Token is the run token; Root is named Token+RootSuffix.
	Token string

	// Folder is the container holding every asset created by the run.
	Folder string

	// Diagnostics lists the recoverable conditions in the order they occurred.
	Diagnostics []obferr.Diagnostic

	// Clones counts the assets created per kind.
	Clones map[asset.Kind]int

	// Renamed counts the distinct names minted per namespace.
	Renamed map[naming.Namespace]int

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Run obfuscates subject into store. subject is left in place and
// deactivated; the copy is returned in Result.Root. A nil cfg means
// config.Default().
func (p *Pipeline) Run(ctx context.Context, store asset.Store, subject *scene.Node, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, obferr.New("run", obferr.CodeInvalidConfig, "configuration is invalid").WithCause(err)
	}
	if subject == nil {
		return nil, obferr.New("run", obferr.CodeMissingComponent, "no subject given")
	}

	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "obfuscator.run", trace.WithAttributes(
		attribute.String("subject", subject.Name),
	))
	defer span.End()

	r := newRun(p, store, subject, cfg)
	for _, ph := range phases {
		if ph.enabled != nil && !ph.enabled(cfg) {
			r.logger.DebugContext(ctx, "phase skipped", "phase", ph.name)
			continue
		}
		if err := p.runPhase(ctx, r, ph); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			p.metrics.finished(ctx, time.Since(start), "error")
			r.logger.ErrorContext(ctx, "obfuscation failed", "phase", ph.name, "error", err)
			return nil, err
		}
	}

	res := &Result{
		Root:        r.root,
		Token:       r.token,
		Folder:      r.folder,
		Diagnostics: r.diags.Items(),
		Clones:      r.clones.Counts(),
		Renamed: map[naming.Namespace]int{
			naming.Transforms:  r.names.Len(naming.Transforms),
			naming.Parameters:  r.names.Len(naming.Parameters),
			naming.BlendShapes: r.names.Len(naming.BlendShapes),
		},
		Duration: time.Since(start),
	}

	span.SetAttributes(
		attribute.String("run.token", res.Token),
		attribute.Int("run.warnings", len(res.Diagnostics)),
	)
	span.SetStatus(codes.Ok, "")
	p.metrics.finished(ctx, res.Duration, "ok")
	r.logger.InfoContext(ctx, "obfuscation complete",
		"folder", res.Folder,
		"warnings", len(res.Diagnostics),
		"duration", res.Duration,
	)
	return res, nil
}

func (p *Pipeline) runPhase(ctx context.Context, r *run, ph phase) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.progress != nil {
		p.progress(ph.name, ph.progress)
	}

	ctx, span := p.tracer.Start(ctx, "obfuscator.phase."+ph.name)
	defer span.End()

	before := r.diags.Len()
	r.logger.DebugContext(ctx, "phase started", "phase", ph.name)
	if err := ph.run(ctx, r); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("phase.warnings", r.diags.Len()-before))
	return nil
}
