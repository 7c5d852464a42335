package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skillsenselab/jobhunt/internal/component"
)

// BusinessInfo records a business-layer component for the summary.
type BusinessInfo struct {
	Name         string
	Type         string
	Dependencies []string
}

// ClientInfo records an upstream client connection.
type ClientInfo struct {
	Name   string
	Target string
	Type   string
}

// infrastructureRow is a display row collected from a Describable
// component at display time.
type infrastructureRow struct {
	name    string
	details string
	port    int
	healthy bool
}

// Summary tracks and displays the application bootstrap process.
// Infrastructure, routes and health are collected live from the
// component registry; business components and clients are tracked
// explicitly during configuration.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	business        []BusinessInfo
	clients         []ClientInfo
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		business:    make([]BusinessInfo, 0),
		clients:     make([]ClientInfo, 0),
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackBusiness records a business-layer component.
func (s *Summary) TrackBusiness(name, componentType string, dependencies []string) {
	s.business = append(s.business, BusinessInfo{
		Name:         name,
		Type:         componentType,
		Dependencies: dependencies,
	})
}

// TrackClient records an upstream client connection.
func (s *Summary) TrackClient(name, target, clientType string) {
	s.clients = append(s.clients, ClientInfo{
		Name:   name,
		Target: target,
		Type:   clientType,
	})
}

// Display prints the startup banner to stdout.
func (s *Summary) Display(registry *component.Registry) {
	fmt.Printf("\n")
	fmt.Printf("🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	var healthList []component.Health
	healthByName := make(map[string]component.Health)
	var rows []infrastructureRow
	var routes []component.Route

	if registry != nil {
		healthList = registry.HealthAll(context.Background())
		for _, h := range healthList {
			healthByName[h.Name] = h
		}
		for _, c := range registry.All() {
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				name := desc.Name
				if name == "" {
					name = c.Name()
				}
				rows = append(rows, infrastructureRow{
					name:    name,
					details: desc.Details,
					port:    desc.Port,
					healthy: healthByName[c.Name()].Status != component.StatusUnhealthy,
				})
			}
			if rp, ok := c.(component.RouteProvider); ok {
				routes = append(routes, rp.Routes()...)
			}
		}
	}

	if len(rows) > 0 {
		fmt.Printf("📊 Infrastructure\n")
		for i, row := range rows {
			icon := "✅"
			if !row.healthy {
				icon = "❌"
			}
			details := row.details
			if row.port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, row.port)
			}
			fmt.Printf("   %s %s %s: %s\n", treePrefix(i, len(rows)), icon, row.name, details)
		}
		fmt.Printf("\n")
	}

	if len(s.business) > 0 {
		fmt.Printf("💼 Business Layer\n")
		for i, b := range s.business {
			last := i == len(s.business)-1
			fmt.Printf("   %s %s %s (%s)\n", treePrefix(i, len(s.business)), businessIcon(b.Type), b.Name, b.Type)
			for j, dep := range b.Dependencies {
				stem := "│  "
				if last {
					stem = "   "
				}
				fmt.Printf("   %s %s 🔗 %s\n", stem, treePrefix(j, len(b.Dependencies)), dep)
			}
		}
		fmt.Printf("\n")
	}

	if len(s.clients) > 0 {
		fmt.Printf("🔌 Clients\n")
		for i, c := range s.clients {
			fmt.Printf("   %s %s → %s (%s)\n", treePrefix(i, len(s.clients)), c.Name, c.Target, c.Type)
		}
		fmt.Printf("\n")
	}

	if len(routes) > 0 {
		fmt.Printf("🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Printf("   %s %-7s %s → %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
		fmt.Printf("\n")
	}

	if len(healthList) > 0 {
		fmt.Printf("🏥 Health\n")
		for i, h := range healthList {
			msg := ""
			if h.Message != "" {
				msg = ", " + h.Message
			}
			fmt.Printf("   %s %s %s: %s%s\n",
				treePrefix(i, len(healthList)), healthIcon(h.Status), h.Name,
				strings.ToLower(string(h.Status)), msg)
		}
	}

	fmt.Printf("\n")
}

func treePrefix(i, n int) string {
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

func businessIcon(componentType string) string {
	switch componentType {
	case "service":
		return "⚙️"
	case "handler":
		return "🎯"
	default:
		return "💼"
	}
}
