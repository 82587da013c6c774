package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kbukum/appkit/errors"
)

func TestValidatorRequired(t *testing.T) {
	if New().Required("name", "John").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("name", "").HasErrors() {
		t.Error("expected error for empty required field")
	}
	if !New().Required("name", "   ").HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorRules(t *testing.T) {
	v := New().
		Required("SERVICE_NAME", "").
		NoSpace("SERVICE_NAME", "order service").
		OneOf("LOG_LEVEL", "INFO", "debug", "info").
		OneOf("LOG_FORMAT", "xml", "json", "console").
		Check(8080 > 1024, "PORT", "must be unprivileged").
		Check(false, "REPLICAS", "must be at least %d, got %d", 2, 1)

	got := make([]string, 0, len(v.Errors()))
	for _, e := range v.Errors() {
		got = append(got, e.Field)
	}
	want := "SERVICE_NAME,SERVICE_NAME,LOG_FORMAT,REPLICAS"
	if strings.Join(got, ",") != want {
		t.Errorf("expected failing fields %s, got %v", want, got)
	}
	if msg := v.Errors()[3].Message; msg != "must be at least 2, got 1" {
		t.Errorf("unexpected formatted message %q", msg)
	}
}

type poolConfig struct {
	Min, Max int
}

func (c poolConfig) Rules(v *Validator) {
	v.Check(c.Min <= c.Max, "MIN", "must not exceed MAX (%d > %d)", c.Min, c.Max)
}

func TestValidatorNestedAndApply(t *testing.T) {
	inner := New().Apply(poolConfig{Min: 5, Max: 2}).Error()

	v := New().
		Nested("DB_POOL", inner).
		Nested("LOG", fmt.Errorf("level must be one of [info]")).
		Nested("CACHE", nil)

	fields := v.Errors()
	if len(fields) != 2 {
		t.Fatalf("expected 2 failures, got %v", fields)
	}
	if fields[0].Field != "DB_POOL.MIN" || fields[1].Field != "LOG" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestValidatorError(t *testing.T) {
	if err := New().Error(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}

	err := New().Required("host", "").Required("port", "").Error()
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Kind != errors.KindValidation {
		t.Errorf("expected validation kind, got %s", appErr.Kind)
	}
	if appErr.Field != "host" {
		t.Errorf("expected first failing field host, got %q", appErr.Field)
	}
	if fields, ok := appErr.Details["fields"].([]FieldError); !ok || len(fields) != 2 {
		t.Errorf("expected two field errors in details, got %v", appErr.Details["fields"])
	}
}

func TestRequiredFunc(t *testing.T) {
	if Required("x", "v") != nil {
		t.Error("expected nil")
	}
	if Required("x", "") == nil {
		t.Error("expected error")
	}
}

type serverConfig struct {
	Host     string `mapstructure:"SERVER_HOST" validate:"required"`
	Port     int    `mapstructure:"SERVER_PORT" validate:"min=1,max=65535"`
	Endpoint string `json:"endpoint" validate:"omitempty,url"`
	LogLevel string `validate:"omitempty,oneof=debug info warn error"`
}

func TestValidateStruct(t *testing.T) {
	if err := Validate(serverConfig{Host: "localhost", Port: 8080}); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	err := Validate(serverConfig{Port: 0, Endpoint: "not a url", LogLevel: "loud"})
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Field != "SERVER_HOST" {
		t.Errorf("expected mapstructure tag name, got %q", appErr.Field)
	}
	for _, want := range []string{"SERVER_HOST: is required", "SERVER_PORT: must be at least 1", "endpoint: must be a valid URL", "log_level: must be one of"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in %q", want, appErr.Message)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{"LogLevel": "log_level", "Host": "host", "a": "a"}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
