// Package observe exports engine diagnostics as OpenTelemetry metrics.
//
// [NewMetrics] builds the instruments from any [metric.MeterProvider];
// [Observer] adapts them to the voice.Observer hook. Tests should use a
// provider backed by a ManualReader.
package observe

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cwbudde/algo-pvoc/pvoc/voice"
)

// meterName is the instrumentation scope for all engine metrics.
const meterName = "github.com/cwbudde/algo-pvoc"

// Metrics holds the engine's instruments.
type Metrics struct {
	// BlocksRendered counts successful dependent-voice blocks. Attribute:
	//   attribute.String("voice", ...)
	BlocksRendered metric.Int64Counter

	// BlockErrors counts failed blocks. Attributes:
	//   attribute.String("voice", ...), attribute.String("reason", ...)
	BlockErrors metric.Int64Counter

	// TimeClamps counts time pointers truncated to the last frame.
	TimeClamps metric.Int64Counter

	// Warnings counts setup and runtime warnings by reason.
	Warnings metric.Int64Counter

	// RenderDuration tracks wall time of offline renders.
	RenderDuration metric.Float64Histogram
}

// NewMetrics creates all instruments from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.BlocksRendered, err = m.Int64Counter("pvoc.blocks.rendered",
		metric.WithDescription("Blocks rendered per voice."),
	); err != nil {
		return nil, err
	}
	if met.BlockErrors, err = m.Int64Counter("pvoc.blocks.errors",
		metric.WithDescription("Failed blocks per voice and reason."),
	); err != nil {
		return nil, err
	}
	if met.TimeClamps, err = m.Int64Counter("pvoc.time.clamps",
		metric.WithDescription("Time pointers truncated to the last frame."),
	); err != nil {
		return nil, err
	}
	if met.Warnings, err = m.Int64Counter("pvoc.warnings",
		metric.WithDescription("Warnings by voice and reason."),
	); err != nil {
		return nil, err
	}
	if met.RenderDuration, err = m.Float64Histogram("pvoc.render.duration",
		metric.WithDescription("Wall time of an offline render."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Reason maps a block error to a short metric label.
func Reason(err error) string {
	switch {
	case errors.Is(err, voice.ErrInvalidTime):
		return "invalid_time"
	case errors.Is(err, voice.ErrTransposeTooHigh):
		return "transpose_too_high"
	case errors.Is(err, voice.ErrTransposeTooLow):
		return "transpose_too_low"
	case errors.Is(err, voice.ErrInvalidPitch):
		return "invalid_pitch"
	case errors.Is(err, voice.ErrNotInitialized):
		return "not_initialized"
	default:
		return "other"
	}
}

// Observer records voice diagnostics into Metrics.
type Observer struct {
	ctx context.Context
	m   *Metrics
}

var _ voice.Observer = (*Observer)(nil)

// NewObserver returns an observer recording into m. ctx is passed to every
// measurement.
func NewObserver(ctx context.Context, m *Metrics) *Observer {
	return &Observer{ctx: ctx, m: m}
}

func (o *Observer) BlockRendered(v string) {
	o.m.BlocksRendered.Add(o.ctx, 1, metric.WithAttributes(attribute.String("voice", v)))
}

func (o *Observer) BlockFailed(v string, err error) {
	o.m.BlockErrors.Add(o.ctx, 1, metric.WithAttributes(
		attribute.String("voice", v),
		attribute.String("reason", Reason(err)),
	))
}

func (o *Observer) TimeClamped(v string) {
	o.m.TimeClamps.Add(o.ctx, 1, metric.WithAttributes(attribute.String("voice", v)))
}

func (o *Observer) Warning(v, reason string) {
	o.m.Warnings.Add(o.ctx, 1, metric.WithAttributes(
		attribute.String("voice", v),
		attribute.String("reason", reason),
	))
}
