package component

import (
	"context"
	"testing"
)

type mockComponent struct {
	name   string
	health Health
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error { return nil }
func (m *mockComponent) Stop(context.Context) error { return nil }
func (m *mockComponent) Health(context.Context) Health { return m.health }
func (m *mockComponent) Describe() Description { return Description{Type: "mock"} }

var (
	_ Component     = (*mockComponent)(nil)
	_ HealthChecker = (*mockComponent)(nil)
	_ Describable   = (*mockComponent)(nil)
)

func TestOverall(t *testing.T) {
	tests := []struct {
		name    string
		reports []Health
		want    HealthStatus
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Health{{Status: StatusHealthy}, {Status: StatusHealthy}}, StatusHealthy},
		{"one degraded", []Health{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy wins", []Health{{Status: StatusDegraded}, {Status: StatusUnhealthy}, {Status: StatusHealthy}}, StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overall(tc.reports); got != tc.want {
				t.Errorf("Overall() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMockHealth(t *testing.T) {
	m := &mockComponent{name: "db", health: Health{Name: "db", Status: StatusDegraded, Message: "slow"}}
	var hc HealthChecker = m
	if h := hc.Health(context.Background()); h.Status != StatusDegraded || h.Message != "slow" {
		t.Errorf("unexpected health %+v", h)
	}
}
