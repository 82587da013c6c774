package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
)

// shutdownCtx bounds provider shutdown so an unreachable collector cannot
// stall a test.
func shutdownCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	t.Cleanup(cancel)
	return ctx
}

func restoreGlobals(t *testing.T) {
	tp := otel.GetTracerProvider()
	mp := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
	})
}

func TestTracerConfigFromEnv(t *testing.T) {
	env := config.NewEnvironment(config.FlavorProd, map[string]string{
		"SERVICE_NAME":    "orders",
		"SERVICE_VERSION": "2.1.0",
		EnvEndpoint:       "collector:4318",
		EnvSampleRate:     "0.25",
	})
	cfg := TracerConfigFromEnv(env)

	if cfg.ServiceName != "orders" || cfg.ServiceVersion != "2.1.0" {
		t.Errorf("unexpected service identity %q %q", cfg.ServiceName, cfg.ServiceVersion)
	}
	if cfg.Environment != "prod" {
		t.Errorf("expected environment prod, got %q", cfg.Environment)
	}
	if cfg.Insecure {
		t.Error("expected secure transport by default outside dev")
	}
	if cfg.SampleRate != 0.25 {
		t.Errorf("expected sample rate 0.25, got %v", cfg.SampleRate)
	}
	if !cfg.Enabled() {
		t.Error("expected tracing to be enabled with an endpoint")
	}
}

func TestTracerConfigFromEnvDefaults(t *testing.T) {
	cfg := TracerConfigFromEnv(config.ForTesting(nil))

	if cfg.ServiceName != "app" {
		t.Errorf("expected default service name, got %q", cfg.ServiceName)
	}
	if !cfg.Insecure {
		t.Error("expected insecure transport by default in dev")
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %v", cfg.SampleRate)
	}
	if cfg.Enabled() {
		t.Error("expected tracing to be disabled without an endpoint")
	}
}

func TestMeterConfigFromEnv(t *testing.T) {
	env := config.ForTesting(map[string]string{
		EnvEndpoint:       "localhost:4318",
		EnvInsecure:       "false",
		EnvMetricInterval: "5s",
	})
	cfg := MeterConfigFromEnv(env)

	if cfg.Interval != 5*time.Second {
		t.Errorf("expected 5s interval, got %v", cfg.Interval)
	}
	if cfg.Insecure {
		t.Error("expected OTEL_INSECURE=false to win over the dev default")
	}

	if got := MeterConfigFromEnv(config.ForTesting(nil)).Interval; got != defaultMetricInterval {
		t.Errorf("expected default interval, got %v", got)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.rate), func(t *testing.T) {
			if got := sampler(tc.rate).Description(); got != tc.want {
				t.Errorf("sampler(%v) = %q, want %q", tc.rate, got, tc.want)
			}
		})
	}
}

func TestNewResource(t *testing.T) {
	res := newResource("orders", "1.0.0", "staging")
	want := map[attribute.Key]string{
		"service.name":           "orders",
		"service.version":        "1.0.0",
		"deployment.environment": "staging",
	}
	for _, kv := range res.Attributes() {
		if v, ok := want[kv.Key]; ok && kv.Value.AsString() != v {
			t.Errorf("attribute %s = %q, want %q", kv.Key, kv.Value.AsString(), v)
		}
		delete(want, kv.Key)
	}
	if len(want) != 0 {
		t.Errorf("missing resource attributes: %v", want)
	}
}

func TestInitTracer(t *testing.T) {
	restoreGlobals(t)
	tp, err := InitTracer(context.Background(), TracerConfig{
		ServiceName: "test",
		Endpoint:    "localhost:4318",
		Insecure:    true,
		SampleRate:  1.0,
	})
	if err != nil {
		t.Fatalf("InitTracer failed: %v", err)
	}
	defer tp.Shutdown(shutdownCtx(t))

	if otel.GetTracerProvider() != tp {
		t.Error("expected the provider to be installed globally")
	}
}

func TestInitMeter(t *testing.T) {
	restoreGlobals(t)
	mp, err := InitMeter(context.Background(), MeterConfig{
		ServiceName: "test",
		Endpoint:    "localhost:4318",
		Insecure:    true,
		Interval:    time.Hour,
	})
	if err != nil {
		t.Fatalf("InitMeter failed: %v", err)
	}
	defer func() { _ = mp.Shutdown(shutdownCtx(t)) }()

	if otel.GetMeterProvider() != mp {
		t.Error("expected the provider to be installed globally")
	}
}

func TestTracerAndMeterFallback(t *testing.T) {
	if Tracer(nil, "x") == nil {
		t.Error("expected a tracer from the global provider")
	}
	if Meter(nil, "x") == nil {
		t.Error("expected a meter from the global provider")
	}

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	_, span := Tracer(tp, "x").Start(context.Background(), "op")
	span.End()
	if len(sr.Ended()) != 1 {
		t.Errorf("expected span on the supplied provider, got %d", len(sr.Ended()))
	}
}

func TestSetSpanError(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	SetSpanError(ctx, fmt.Errorf("boom"))
	span.End()

	events := sr.Ended()[0].Events()
	if len(events) != 1 || events[0].Name != "exception" {
		t.Errorf("expected an exception event, got %v", events)
	}

	// No span in context: must not panic.
	SetSpanError(context.Background(), fmt.Errorf("ignored"))
}

func TestObserveContainer(t *testing.T) {
	c := di.New()
	_ = di.RegisterSingleton(c, "value")
	_ = di.RegisterLazySingleton(c, func(*di.Container) (int, error) { return 1, nil })
	_ = di.RegisterFactory(c, func(*di.Container) (float64, error) { return 1, nil })
	_, _ = di.Get[string](c)
	_, _ = di.Get[string](c)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	reg, err := ObserveContainer(mp.Meter("test"), c)
	if err != nil {
		t.Fatalf("ObserveContainer failed: %v", err)
	}
	defer reg.Unregister()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	byLifecycle := map[string]int64{}
	resolutions := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					lc, _ := dp.Attributes.Value("lifecycle")
					byLifecycle[lc.AsString()] = dp.Value
				}
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					typ, _ := dp.Attributes.Value("type")
					resolutions[typ.AsString()] = dp.Value
				}
			}
		}
	}

	for _, lc := range []string{"singleton", "lazy-singleton", "factory"} {
		if byLifecycle[lc] != 1 {
			t.Errorf("expected 1 %s registration, got %d", lc, byLifecycle[lc])
		}
	}
	if resolutions["string"] != 2 {
		t.Errorf("expected 2 resolutions of string, got %d", resolutions["string"])
	}
}

func TestTracingHooksDisabled(t *testing.T) {
	initHook, disposeHook := TracingHooks()
	c := di.New()

	if err := initHook(context.Background(), c, config.ForTesting(nil)); err != nil {
		t.Fatalf("init hook failed: %v", err)
	}
	if di.IsRegistered[*sdktrace.TracerProvider](c) {
		t.Error("expected no provider without an endpoint")
	}
	if err := disposeHook(context.Background(), c); err != nil {
		t.Errorf("dispose hook failed: %v", err)
	}
}

func TestTracingHooksRegisterProvider(t *testing.T) {
	restoreGlobals(t)
	initHook, disposeHook := TracingHooks()
	c := di.New()
	env := config.ForTesting(map[string]string{EnvEndpoint: "localhost:4318"})

	if err := initHook(context.Background(), c, env); err != nil {
		t.Fatalf("init hook failed: %v", err)
	}
	if !di.IsRegistered[*sdktrace.TracerProvider](c) {
		t.Fatal("expected tracer provider to be registered")
	}
	if err := disposeHook(shutdownCtx(t), c); err != nil {
		t.Errorf("dispose hook failed: %v", err)
	}
}

func TestMetricsHooksRegisterProvider(t *testing.T) {
	restoreGlobals(t)
	initHook, disposeHook := MetricsHooks()
	c := di.New()
	env := config.ForTesting(map[string]string{
		EnvEndpoint:       "localhost:4318",
		EnvMetricInterval: "1h",
	})

	if err := initHook(context.Background(), c, env); err != nil {
		t.Fatalf("init hook failed: %v", err)
	}
	if !di.IsRegistered[*sdkmetric.MeterProvider](c) {
		t.Fatal("expected meter provider to be registered")
	}
	// The final export targets a collector that may not exist; only the
	// hook's completion matters here.
	_ = disposeHook(shutdownCtx(t), c)
}
