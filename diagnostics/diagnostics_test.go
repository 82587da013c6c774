package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/appkit/bootstrap"
	"github.com/kbukum/appkit/component"
	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
	"github.com/kbukum/appkit/logger"
	"github.com/kbukum/appkit/version"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type checker struct {
	name   string
	status component.HealthStatus
}

func (c *checker) Health(context.Context) component.Health {
	return component.Health{Name: c.name, Status: c.status}
}

func get(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v (body %q)", path, err, rec.Body.String())
	}
	return rec.Code, body
}

func newHandler(c *di.Container, opts ...Option) http.Handler {
	return Handler(c, append([]Option{WithLogger(logger.NewNop())}, opts...)...)
}

func TestContainerRoute(t *testing.T) {
	c := di.New()
	_ = di.RegisterSingleton(c, "value")
	_ = di.RegisterLazySingleton(c, func(*di.Container) (int, error) { return 1, nil }, di.Named("answer"))

	code, body := get(t, newHandler(c), "/debug/container")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", body["count"])
	}

	regs, _ := body["registrations"].([]any)
	if len(regs) != 2 {
		t.Fatalf("expected 2 registrations, got %v", body["registrations"])
	}
	first := regs[0].(map[string]any)
	if first["type"] != "int" || first["name"] != "answer" || first["lifecycle"] != "lazy-singleton" {
		t.Errorf("unexpected first registration %v", first)
	}
	if first["cached"] != false {
		t.Error("expected lazy singleton not to be constructed by the route")
	}
}

func TestEnvironmentRouteMasksSecrets(t *testing.T) {
	c := di.New()
	env := config.NewEnvironment(config.FlavorStaging, map[string]string{
		"SERVICE_NAME": "orders",
		"DB_PASSWORD":  "hunter2",
	})
	_ = di.RegisterSingleton(c, env)

	code, body := get(t, newHandler(c), "/debug/environment")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["flavor"] != "staging" {
		t.Errorf("expected flavor staging, got %v", body["flavor"])
	}
	values := body["values"].(map[string]any)
	if values["SERVICE_NAME"] != "orders" {
		t.Errorf("expected plain value, got %v", values["SERVICE_NAME"])
	}
	if values["DB_PASSWORD"] != "hu***" {
		t.Errorf("expected masked password, got %v", values["DB_PASSWORD"])
	}
}

func TestEnvironmentRouteMasksURLCredentials(t *testing.T) {
	c := di.New()
	_ = di.RegisterSingleton(c, config.ForTesting(map[string]string{
		"DATABASE_URL":                "postgres://orders:s3cret@db:5432/orders",
		"REDIS_URL":                   "redis://:hunter2@cache:6379/0",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "http://collector:4318",
	}))

	rec := httptest.NewRecorder()
	newHandler(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/environment", nil))
	for _, secret := range []string{"s3cret", "hunter2"} {
		if strings.Contains(rec.Body.String(), secret) {
			t.Errorf("response leaks %q: %s", secret, rec.Body.String())
		}
	}

	var body struct {
		Values map[string]string `json:"values"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{
		"DATABASE_URL":                "postgres://orders:***@db:5432/orders",
		"REDIS_URL":                   "redis://:***@cache:6379/0",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "http://collector:4318",
	}
	for k, v := range want {
		if body.Values[k] != v {
			t.Errorf("%s = %q, want %q", k, body.Values[k], v)
		}
	}
}

func TestEnvironmentRouteExposedKeys(t *testing.T) {
	c := di.New()
	_ = di.RegisterSingleton(c, config.ForTesting(map[string]string{
		"SERVICE_NAME": "orders",
		"INTERNAL_ID":  "42",
	}))

	code, body := get(t, newHandler(c, WithExposedKeys("SERVICE_NAME")), "/debug/environment")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	values := body["values"].(map[string]any)
	if values["SERVICE_NAME"] != "orders" {
		t.Errorf("expected exposed value, got %v", values["SERVICE_NAME"])
	}
	if _, ok := values["INTERNAL_ID"]; ok {
		t.Error("expected unexposed value to be omitted")
	}
	if keys, _ := body["keys"].([]any); len(keys) != 2 {
		t.Errorf("expected every key listed, got %v", body["keys"])
	}
}

func TestEnvironmentRouteWithoutEnvironment(t *testing.T) {
	c := di.New()
	built := false
	_ = di.RegisterLazySingleton(c, func(*di.Container) (*config.Environment, error) {
		built = true
		return config.ForTesting(nil), nil
	})

	code, body := get(t, newHandler(c), "/debug/environment")
	if code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
	errBody, _ := body["error"].(map[string]any)
	if errBody["code"] != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND error body, got %v", body)
	}
	if built {
		t.Error("expected the route not to construct the environment")
	}
}

func TestHealthRoute(t *testing.T) {
	tests := []struct {
		name     string
		statuses []component.HealthStatus
		wantCode int
		want     string
	}{
		{"no checkers", nil, http.StatusOK, "healthy"},
		{"all healthy", []component.HealthStatus{component.StatusHealthy, component.StatusHealthy}, http.StatusOK, "healthy"},
		{"degraded", []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, http.StatusOK, "degraded"},
		{"unhealthy", []component.HealthStatus{component.StatusDegraded, component.StatusUnhealthy}, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := di.New()
			for i, s := range tc.statuses {
				name := fmt.Sprintf("c%d", i)
				_ = di.RegisterSingleton(c, &checker{name: name, status: s}, di.Named(name))
			}

			code, body := get(t, newHandler(c, WithServiceName("orders")), "/debug/health")
			if code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, code)
			}
			if body["status"] != tc.want {
				t.Errorf("expected status %s, got %v", tc.want, body["status"])
			}
			if body["service"] != "orders" {
				t.Errorf("expected service orders, got %v", body["service"])
			}
		})
	}
}

func TestVersionRoute(t *testing.T) {
	code, body := get(t, newHandler(di.New()), "/debug/version")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["version"] != version.Version {
		t.Errorf("expected version %q, got %v", version.Version, body["version"])
	}
}

func TestHandlerLeavesGinModeAlone(t *testing.T) {
	before := gin.Mode()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	_ = newHandler(di.New())
	if gin.Mode() != before {
		t.Errorf("expected gin mode %q to be kept, got %q", before, gin.Mode())
	}
}

func TestMountWithPrefix(t *testing.T) {
	engine := gin.New()
	Mount(engine, di.New(), WithPrefix("/internal"), WithLogger(logger.NewNop()))

	code, _ := get(t, engine, "/internal/container")
	if code != http.StatusOK {
		t.Errorf("expected 200 under custom prefix, got %d", code)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/container", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected default prefix to be unmounted, got %d", rec.Code)
	}
}

func TestServerLifecycle(t *testing.T) {
	c := di.New()
	_ = di.RegisterSingleton(c, "value")
	s := NewServer("127.0.0.1:0", c, WithLogger(logger.NewNop()))

	if s.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before Start")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("expected a second Start to fail")
	}
	if s.Health(context.Background()).Status != component.StatusHealthy {
		t.Error("expected healthy while serving")
	}

	resp, err := http.Get("http://" + s.Addr() + "/debug/container")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Errorf("expected Stop on a stopped server to be a no-op, got %v", err)
	}
}

func TestHooksRegisterServer(t *testing.T) {
	initHook, disposeHook := Hooks("127.0.0.1:0", WithLogger(logger.NewNop()))

	b, err := bootstrap.Bootstrap(context.Background(), config.FlavorDev,
		[]bootstrap.InitHook{initHook},
		bootstrap.WithLogger(logger.NewNop()),
		bootstrap.WithLoadOptions(config.WithSources(config.MapSource{"SERVICE_NAME": "orders"})),
	)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	s, err := di.Get[*Server](b.Container)
	if err != nil {
		t.Fatalf("expected server to be registered: %v", err)
	}

	resp, err := http.Get("http://" + s.Addr() + "/debug/health")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["service"] != "orders" {
		t.Errorf("expected service name from environment, got %v", body["service"])
	}

	bootstrap.Shutdown(context.Background(), b.Container, []bootstrap.DisposeHook{disposeHook},
		bootstrap.WithLogger(logger.NewNop()))
	if s.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected server to be stopped by the dispose hook")
	}
}
