package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kbukum/appkit/component"
	"github.com/kbukum/appkit/config"
	"github.com/kbukum/appkit/di"
)

// Summary renders a human-readable startup report of a container.
type Summary struct {
	serviceName     string
	version         string
	flavor          config.Flavor
	runID           string
	startupDuration time.Duration
	failures        int
}

// NewSummary creates a startup summary for a service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetFlavor records the flavor the service started under.
func (s *Summary) SetFlavor(f config.Flavor) { s.flavor = f }

// SetRunID records the bootstrap run id.
func (s *Summary) SetRunID(id string) { s.runID = id }

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// SetFailures records how many hooks failed under an error handler.
func (s *Summary) SetFailures(n int) { s.failures = n }

// Render writes the summary to w: the container's registrations, the
// held instances that describe themselves, and live health of the held
// instances that report it.
func (s *Summary) Render(ctx context.Context, w io.Writer, c *di.Container) {
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs [%s]\n", s.serviceName, s.version, s.startupDuration.Seconds(), s.flavor)
	if s.runID != "" {
		fmt.Fprintf(w, "   run %s\n", s.runID)
	}
	fmt.Fprintln(w)

	regs := c.Registrations()
	fmt.Fprintf(w, "📦 Registrations (%d)\n", len(regs))
	if len(regs) == 0 {
		fmt.Fprintf(w, "   └── No dependencies registered\n")
	}
	for i, r := range regs {
		name := r.Type
		if r.Named {
			name = fmt.Sprintf("%s %q", r.Type, r.Name)
		}
		fmt.Fprintf(w, "   %s %s %s (%s)\n", treePrefix(i, len(regs)), lifecycleIcon(r), name, r.Lifecycle)
	}

	var described []component.Description
	var health []component.Health
	c.Instances(func(info di.RegistrationInfo, instance any) bool {
		if d, ok := instance.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name == "" {
				desc.Name = info.Type
				if comp, ok := instance.(component.Component); ok {
					desc.Name = comp.Name()
				}
			}
			described = append(described, desc)
		}
		if hc, ok := instance.(component.HealthChecker); ok {
			health = append(health, hc.Health(ctx))
		}
		return true
	})

	if len(described) > 0 {
		fmt.Fprintf(w, "\n📊 Components\n")
		for i, d := range described {
			line := d.Name
			if d.Type != "" {
				line = fmt.Sprintf("%s [%s]", line, d.Type)
			}
			if d.Details != "" {
				line = fmt.Sprintf("%s: %s", line, d.Details)
			}
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(described)), line)
		}
	}

	if len(health) > 0 {
		fmt.Fprintf(w, "\n🏥 Health Check\n")
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " - " + h.Message
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(health)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
		}
	}

	fmt.Fprintln(w)
	switch {
	case s.failures > 0:
		fmt.Fprintf(w, "⚠️  %d hook(s) failed during startup\n", s.failures)
	case component.Overall(health) != component.StatusHealthy:
		fmt.Fprintf(w, "⚠️  Some components report issues\n")
	default:
		fmt.Fprintf(w, "✅ Startup complete\n")
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func lifecycleIcon(r di.RegistrationInfo) string {
	switch r.Lifecycle {
	case di.LifecycleSingleton:
		return "✅"
	case di.LifecycleLazySingleton:
		if r.Cached {
			return "✅"
		}
		return "⚡"
	case di.LifecycleFactory:
		return "🏭"
	default:
		return "❓"
	}
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
