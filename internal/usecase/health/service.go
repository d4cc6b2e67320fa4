package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status is the aggregated health of the service.
type Status string

const (
	// Healthy means results and cache (if any) respond.
	Healthy Status = "ok"
	// Degraded means the page cache is failing while results are still served.
	Degraded Status = "degraded"
	// Unhealthy means the results database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one component probe.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDatabase = "database"
	ComponentCache    = "cache"
)

const defaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service probes the results database and the optional page cache.
type Service struct {
	db      Pinger
	cache   Pinger
	timeout time.Duration
}

// New creates a Service. cache can be nil.
func New(db, cache Pinger) *Service {
	return &Service{db: db, cache: cache, timeout: defaultCheckTimeout}
}

// WithTimeout bounds each component probe. Non-positive values are ignored.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check probes all components concurrently. A hung component
// reports an error after the probe timeout instead of blocking the caller.
func (s *Service) Check(ctx context.Context) Report {
	probes := map[string]Pinger{ComponentDatabase: s.db}
	if s.cache != nil {
		probes[ComponentCache] = s.cache
	}

	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, len(probes))
	)
	var g errgroup.Group
	for name, p := range probes {
		g.Go(func() error {
			res := s.probe(ctx, p)
			mu.Lock()
			checks[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return Report{Status: aggregate(checks), Checks: checks}
}

func (s *Service) probe(ctx context.Context, p Pinger) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}

func aggregate(checks map[string]CheckResult) Status {
	if checks[ComponentDatabase] != CheckOK {
		return Unhealthy
	}
	if checks[ComponentCache] == CheckError {
		return Degraded
	}
	return Healthy
}
