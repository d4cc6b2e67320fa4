package phyrestorm

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type substitution struct {
	pattern     string
	replacement string
}

type clientConfig struct {
	driver       string // "sqlite" or "postgres"
	dsn          string
	maxOpenConns int
	queryTimeout time.Duration
	migrate      bool

	defaultPageSize int
	maxPageSize     int
	substitutions   []substitution

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSQLite opens an SQLite database file, or ":memory:".
func WithSQLite(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverSQLite
		c.dsn = dsn
	})
}

// WithPostgres connects to PostgreSQL with a pgx connection URL.
func WithPostgres(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverPostgres
		c.dsn = url
	})
}

// WithMaxOpenConns caps the number of open database connections.
func WithMaxOpenConns(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxOpenConns = n
	})
}

// WithQueryTimeout bounds every database statement. Default: no bound beyond the caller's context.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithMigrations creates or upgrades the results schema on connect.
func WithMigrations() Option {
	return optionFunc(func(c *clientConfig) {
		c.migrate = true
	})
}

// WithPageSizes sets the default page size and the exclusive maximum.
// Defaults: 100 and 1000.
func WithPageSizes(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	})
}

// WithPathSubstitution appends a regex rewrite applied to every hit's AuxPath.
// Substitutions apply in the order they are given. The replacement may use
// ${1} or \1 group references.
func WithPathSubstitution(pattern, replacement string) Option {
	return optionFunc(func(c *clientConfig) {
		c.substitutions = append(c.substitutions, substitution{pattern: pattern, replacement: replacement})
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
