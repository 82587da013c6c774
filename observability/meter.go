package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
	"github.com/kbukum/appkit/logger"
	"github.com/kbukum/appkit/version"
)

const defaultMetricInterval = 15 * time.Second

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment flavor (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	// Metrics export is disabled when it is empty.
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// Enabled reports whether an exporter endpoint is configured.
func (c MeterConfig) Enabled() bool { return c.Endpoint != "" }

// MeterConfigFromEnv builds a meter config from env.
func MeterConfigFromEnv(env *config.Environment) MeterConfig {
	return MeterConfig{
		ServiceName:    env.String("SERVICE_NAME", "app"),
		ServiceVersion: env.String("SERVICE_VERSION", version.Version),
		Environment:    env.Flavor().String(),
		Endpoint:       env.String(EnvEndpoint, ""),
		Insecure:       env.Bool(EnvInsecure, env.IsDev()),
		Interval:       env.Duration(EnvMetricInterval, defaultMetricInterval),
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// as the global provider. The provider should be shut down on exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from mp, or from the global provider when
// mp is nil.
func Meter(mp metric.MeterProvider, name string) metric.Meter {
	if mp == nil {
		return otel.Meter(name)
	}
	return mp.Meter(name)
}

// Container metric names.
const (
	MetricRegistrations = "appkit.di.registrations"
	MetricResolutions   = "appkit.di.resolutions"
)

// ObserveContainer reports the registrations of c on meter: a gauge of
// registrations per lifecycle and a counter of resolutions per type. The
// returned registration stops the observation.
func ObserveContainer(meter metric.Meter, c *di.Container) (metric.Registration, error) {
	registrations, err := meter.Int64ObservableGauge(MetricRegistrations,
		metric.WithDescription("Number of container registrations by lifecycle"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricRegistrations, err)
	}

	resolutions, err := meter.Int64ObservableCounter(MetricResolutions,
		metric.WithDescription("Total resolutions by registered type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricResolutions, err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		byLifecycle := map[di.Lifecycle]int64{
			di.LifecycleSingleton:     0,
			di.LifecycleLazySingleton: 0,
			di.LifecycleFactory:       0,
		}
		for _, info := range c.Registrations() {
			byLifecycle[info.Lifecycle]++
			o.ObserveInt64(resolutions, info.Resolutions, metric.WithAttributes(
				attribute.String("type", info.Type),
				attribute.String("name", info.Name),
			))
		}
		for lc, n := range byLifecycle {
			o.ObserveInt64(registrations, n, metric.WithAttributes(attribute.String("lifecycle", lc.String())))
		}
		return nil
	}, registrations, resolutions)
}
