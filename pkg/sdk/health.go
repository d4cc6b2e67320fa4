package phyrestorm

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/phyrestorm/internal/usecase/health"
)

// HealthStatus is the outcome of a Health call.
type HealthStatus struct {
	Status string            // "ok" or "error"
	Checks map[string]string // component name to "ok"/"error"
}

// OK reports whether every checked component responded.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Health pings the results database. The SDK never runs a page cache,
// so the report has a single "database" check.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	h := HealthStatus{
		Status: string(report.Status),
		Checks: make(map[string]string, len(report.Checks)),
	}
	for name, res := range report.Checks {
		h.Checks[name] = string(res)
	}

	var err error
	if !h.OK() {
		err = ErrStorageUnavailable
	}
	c.obs.observe("health", start, err)
	return h
}
