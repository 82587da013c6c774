// Package observability wires OpenTelemetry tracing and metrics into the
// bootstrap lifecycle.
//
// Providers are configured from the environment (OTEL_EXPORTER_OTLP_ENDPOINT,
// OTEL_INSECURE, OTEL_SAMPLE_RATE, OTEL_METRIC_INTERVAL) and registered in
// the container so other hooks can resolve them:
//
//	app := bootstrap.NewApp("orders", config.FlavorProd)
//	app.Use(observability.TracingHooks())
//	app.Use(observability.MetricsHooks())
//
// Later hooks pass the registered providers on to bootstrap or their own
// instrumentation:
//
//	tp := di.MustGet[*sdktrace.TracerProvider](c)
//	tracer := observability.Tracer(tp, "orders")
package observability
