package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/jobgraph/component"
)

// Summary is the startup report printed once the application is ready.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a summary for a service that took d to start.
func NewSummary(serviceName, version string, d time.Duration) *Summary {
	return &Summary{serviceName: serviceName, version: version, startupDuration: d}
}

// Write prints the components the registry describes and their live health.
func (s *Summary) Write(ctx context.Context, w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	descs := registry.Describe()
	if len(descs) > 0 {
		fmt.Fprintf(w, "\nComponents\n")
		for i, d := range descs {
			fmt.Fprintf(w, "   %s %s [%s] %s\n", branch(i, len(descs)), d.Name, d.Type, d.Details)
		}
	}

	health := registry.HealthAll(ctx)
	if len(health) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}
	fmt.Fprintf(w, "\nHealth (%s)\n", component.Overall(health))
	for i, h := range health {
		msg := ""
		if h.Message != "" {
			msg = " - " + h.Message
		}
		fmt.Fprintf(w, "   %s %s %s: %s%s\n", branch(i, len(health)), healthIcon(h.Status), h.Name,
			strings.ToLower(string(h.Status)), msg)
	}
	fmt.Fprintln(w)
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus) string {
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
