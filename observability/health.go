package observability

import "github.com/kbukum/tabkit/component"

// ServiceHealth is the aggregate health report printed by the CLI.
type ServiceHealth struct {
	Service    string                 `json:"service"`
	Version    string                 `json:"version,omitempty"`
	Status     component.HealthStatus `json:"status"`
	Components []component.Health     `json:"components,omitempty"`
}

// NewServiceHealth builds a report from component results. Any unhealthy
// component makes the service unhealthy; otherwise any degraded one makes it
// degraded.
func NewServiceHealth(service, version string, results []component.Health) ServiceHealth {
	h := ServiceHealth{
		Service:    service,
		Version:    version,
		Status:     component.StatusHealthy,
		Components: results,
	}
	for _, r := range results {
		switch r.Status {
		case component.StatusUnhealthy:
			h.Status = component.StatusUnhealthy
		case component.StatusDegraded:
			if h.Status == component.StatusHealthy {
				h.Status = component.StatusDegraded
			}
		}
	}
	return h
}

// Healthy reports whether every component is healthy.
func (h ServiceHealth) Healthy() bool {
	return h.Status == component.StatusHealthy
}
