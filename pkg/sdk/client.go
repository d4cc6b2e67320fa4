package phyrestorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/phyrestorm/internal/db"
	"github.com/kailas-cloud/phyrestorm/internal/db/postgres"
	"github.com/kailas-cloud/phyrestorm/internal/db/sqlite"
	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
	"github.com/kailas-cloud/phyrestorm/internal/domain/rewrite"
	hitrepo "github.com/kailas-cloud/phyrestorm/internal/repository/hit"
	healthuc "github.com/kailas-cloud/phyrestorm/internal/usecase/health"
	resultsuc "github.com/kailas-cloud/phyrestorm/internal/usecase/results"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"

	defaultReadinessTimeout = 10 * time.Second
)

// resultsUseCase is the internal interface for paging, swapped out in tests.
type resultsUseCase interface {
	GetPage(ctx context.Context, jobID string, after *int64, limit *int) (page.Result, error)
	Count(ctx context.Context, jobID string) (int, error)
	Walk(ctx context.Context, jobID string, pageSize int, fn func(hit.Hit) error) error
}

// migratingStore is a results store that can bring its own schema up to date.
type migratingStore interface {
	db.Store
	Migrate(ctx context.Context) error
}

// Client is the phyrestorm SDK entry point.
type Client struct {
	store      db.Store
	resultsSvc resultsUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a phyrestorm Client and connects to the database.
// The provided context is used for the readiness check and migrations.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn == "" {
		return nil, errors.New("phyrestorm: database required (use WithSQLite or WithPostgres)")
	}

	bounds := page.DefaultBounds()
	if cfg.defaultPageSize > 0 {
		bounds.Default = cfg.defaultPageSize
	}
	if cfg.maxPageSize > 0 {
		bounds.Max = cfg.maxPageSize
	}
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("phyrestorm: %w", err)
	}

	rules, err := compileSubstitutions(cfg.substitutions)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("phyrestorm: database not ready: %w", err)
	}
	if cfg.migrate {
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("phyrestorm: migrate: %w", err)
		}
	}

	return wireClient(store, bounds, rules, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (migratingStore, error) {
	switch cfg.driver {
	case driverSQLite:
		s, err := sqlite.NewStore(sqlite.Config{
			DSN:          cfg.dsn,
			MaxOpenConns: cfg.maxOpenConns,
			QueryTimeout: cfg.queryTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("phyrestorm: create sqlite store: %w", err)
		}
		return s, nil
	case driverPostgres:
		s, err := postgres.NewStore(ctx, postgres.Config{
			URL:          cfg.dsn,
			MaxOpenConns: cfg.maxOpenConns,
			QueryTimeout: cfg.queryTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("phyrestorm: create postgres store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("phyrestorm: unknown driver %q", cfg.driver)
	}
}

func compileSubstitutions(subs []substitution) (rewrite.Rules, error) {
	specs := make([]rewrite.Spec, len(subs))
	for i, s := range subs {
		specs[i] = rewrite.Spec{Pattern: s.pattern, Replacement: s.replacement}
	}
	rules, err := rewrite.Compile(specs)
	if err != nil {
		return nil, fmt.Errorf("phyrestorm: path substitution: %w", err)
	}
	return rules, nil
}

func wireClient(store db.Store, bounds page.Bounds, rules rewrite.Rules, obs *observer) *Client {
	resultsSvc := resultsuc.New(hitrepo.New(store)).
		WithPagination(bounds.Default, bounds.Max).
		WithRewrite(rules)

	return &Client{
		store:      store,
		resultsSvc: resultsSvc,
		healthSvc:  healthuc.New(store, nil),
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Results returns the result reader for a job.
func (c *Client) Results(jobID string) *ResultSet {
	return &ResultSet{jobID: jobID, svc: c.resultsSvc, obs: c.obs}
}
