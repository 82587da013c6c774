package bootstrap

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/kbukum/appkit/bootstrap"

// Metric and attribute names.
const (
	MetricHookDuration = "appkit.bootstrap.hook.duration"
	MetricHookFailures = "appkit.bootstrap.hook.failures"

	AttrRunID     = attribute.Key("appkit.run_id")
	AttrFlavor    = attribute.Key("appkit.flavor")
	AttrHookKind  = attribute.Key("appkit.hook.kind")
	AttrHookIndex = attribute.Key("appkit.hook.index")
	AttrHookCount = attribute.Key("appkit.hook.count")
	AttrOutcome   = attribute.Key("appkit.hook.outcome")
)

type telemetry struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
	failures metric.Int64Counter
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) *telemetry {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	duration, err := meter.Float64Histogram(MetricHookDuration,
		metric.WithUnit("ms"),
		metric.WithDescription("Duration of bootstrap and shutdown hooks"),
	)
	if err != nil {
		duration, _ = noop.Meter{}.Float64Histogram(MetricHookDuration)
	}
	failures, err := meter.Int64Counter(MetricHookFailures,
		metric.WithDescription("Number of failed bootstrap and shutdown hooks"),
	)
	if err != nil {
		failures, _ = noop.Meter{}.Int64Counter(MetricHookFailures)
	}

	return &telemetry{
		tracer:   tp.Tracer(instrumentationName),
		duration: duration,
		failures: failures,
	}
}

// runHook wraps one hook call in a span and records its duration and outcome.
func (t *telemetry) runHook(ctx context.Context, kind string, index, count int, runID string, call func(context.Context) error) error {
	ctx, span := t.tracer.Start(ctx, "bootstrap.hook", trace.WithAttributes(
		AttrRunID.String(runID),
		AttrHookKind.String(kind),
		AttrHookIndex.Int(index),
		AttrHookCount.Int(count),
	))
	defer span.End()

	start := time.Now()
	err := call(ctx)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.failures.Add(ctx, 1, metric.WithAttributes(AttrHookKind.String(kind)))
	}
	t.duration.Record(ctx, elapsed, metric.WithAttributes(AttrHookKind.String(kind), AttrOutcome.String(outcome)))
	return err
}

func markFailed(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
