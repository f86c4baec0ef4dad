package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/veilkit/obfuscator/asset"
)

// InstrumentationName is used for the default tracer and meter.
const InstrumentationName = "github.com/veilkit/obfuscator/engine"

// metrics holds the instruments of a Pipeline. They are created once in New
// and shared by every run.
type metrics struct {
	// clones counts duplicated or rebuilt assets, by kind
	clones metric.Int64Counter

	// warnings counts recoverable diagnostics, by code
	warnings metric.Int64Counter

	// duration records run duration in milliseconds
	duration metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}
	var err error

	m.clones, err = meter.Int64Counter(
		"obfuscator.clones",
		metric.WithDescription("Number of assets cloned into run folders"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create clones counter: %w", err)
	}

	m.warnings, err = meter.Int64Counter(
		"obfuscator.warnings",
		metric.WithDescription("Number of recoverable diagnostics reported"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create warnings counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"obfuscator.run.duration",
		metric.WithDescription("Obfuscation run duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return m, nil
}

func (m *metrics) cloned(ctx context.Context, kind asset.Kind) {
	m.clones.Add(ctx, 1, metric.WithAttributes(attribute.String("asset.kind", string(kind))))
}

func (m *metrics) warned(ctx context.Context, code string) {
	m.warnings.Add(ctx, 1, metric.WithAttributes(attribute.String("diagnostic.code", code)))
}

func (m *metrics) finished(ctx context.Context, d time.Duration, outcome string) {
	m.duration.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(attribute.String("outcome", outcome)))
}
