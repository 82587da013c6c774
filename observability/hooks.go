package observability

import (
	"context"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/appkit/bootstrap"
	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
	"github.com/kbukum/appkit/logger"
)

const instrumentationName = "github.com/kbukum/appkit/observability"

// TracingHooks returns hooks that initialize a tracer provider from the
// environment, register it as *sdktrace.TracerProvider and shut it down on
// dispose. Without an OTLP endpoint both hooks do nothing.
func TracingHooks() (bootstrap.InitHook, bootstrap.DisposeHook) {
	initHook := func(ctx context.Context, c *di.Container, env *config.Environment) error {
		cfg := TracerConfigFromEnv(env)
		if !cfg.Enabled() {
			logger.Debug("tracing disabled, no OTLP endpoint configured")
			return nil
		}
		tp, err := InitTracer(ctx, cfg)
		if err != nil {
			return err
		}
		return di.RegisterSingleton(c, tp)
	}

	disposeHook := func(ctx context.Context, c *di.Container) error {
		tp, ok, err := di.TryGet[*sdktrace.TracerProvider](c)
		if err != nil || !ok {
			return err
		}
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down tracer provider: %w", err)
		}
		return nil
	}

	return initHook, disposeHook
}

// MetricsHooks returns hooks that initialize a meter provider from the
// environment, register it as *sdkmetric.MeterProvider, observe the
// container on it and shut it down on dispose. Without an OTLP endpoint
// both hooks do nothing.
func MetricsHooks() (bootstrap.InitHook, bootstrap.DisposeHook) {
	initHook := func(ctx context.Context, c *di.Container, env *config.Environment) error {
		cfg := MeterConfigFromEnv(env)
		if !cfg.Enabled() {
			logger.Debug("metrics disabled, no OTLP endpoint configured")
			return nil
		}
		mp, err := InitMeter(ctx, cfg)
		if err != nil {
			return err
		}
		if _, err := ObserveContainer(mp.Meter(instrumentationName), c); err != nil {
			_ = mp.Shutdown(ctx)
			return err
		}
		return di.RegisterSingleton(c, mp)
	}

	disposeHook := func(ctx context.Context, c *di.Container) error {
		mp, ok, err := di.TryGet[*sdkmetric.MeterProvider](c)
		if err != nil || !ok {
			return err
		}
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down meter provider: %w", err)
		}
		return nil
	}

	return initHook, disposeHook
}
