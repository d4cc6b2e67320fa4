package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
	"github.com/kailas-cloud/phyrestorm/internal/domain/rewrite"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the phyrestorm API configuration.
type Config struct {
	HTTP              HTTPConfig         `yaml:"http"`
	Database          DatabaseConfig     `yaml:"database"`
	Cache             CacheConfig        `yaml:"cache"`
	Paging            PagingConfig       `yaml:"paging"`
	PathSubstitutions []PathSubstitution `yaml:"path_substitutions"`
	Auth              AuthConfig         `yaml:"auth"`
	Logging           LoggingConfig      `yaml:"logging"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"` // empty = auth disabled
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	SQL   bool   `yaml:"sql"`   // log every statement at debug level
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds results database settings.
type DatabaseConfig struct {
	Driver           string `yaml:"driver"` // sqlite, postgres (default: sqlite)
	DSN              string `yaml:"dsn"`
	MaxOpenConns     int    `yaml:"max_open_conns"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
	QueryTimeoutSec  int    `yaml:"query_timeout_sec"` // 0 = request deadline only
	Migrate          bool   `yaml:"migrate"`
}

// CacheConfig holds page cache settings.
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// PagingConfig holds page size limits. Limits at or above MaxPageSize are rejected.
type PagingConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// PathSubstitution is one aux path rewrite rule. Rules apply in list order.
type PathSubstitution struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded first.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	// Substitute env variables of the form ${VAR} in parsed values
	expandNode(&root)

	var cfg Config
	if !root.IsZero() {
		if err := root.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Paging.DefaultPageSize <= 0 {
		c.Paging.DefaultPageSize = page.DefaultPageSize
	}
	if c.Paging.MaxPageSize <= 0 {
		c.Paging.MaxPageSize = page.MaxPageSize
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("database.max_open_conns must not be negative, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.QueryTimeoutSec < 0 {
		return fmt.Errorf("database.query_timeout_sec must not be negative, got %d", c.Database.QueryTimeoutSec)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache.enabled is set")
	}
	if err := c.Bounds().Validate(); err != nil {
		return fmt.Errorf("paging: %w", err)
	}
	if _, err := c.RewriteRules(); err != nil {
		return fmt.Errorf("path_substitutions: %w", err)
	}
	return nil
}

// Bounds returns the page size policy.
func (c *Config) Bounds() page.Bounds {
	return page.Bounds{Default: c.Paging.DefaultPageSize, Max: c.Paging.MaxPageSize}
}

// RewriteRules compiles the path substitutions in order.
func (c *Config) RewriteRules() (rewrite.Rules, error) {
	specs := make([]rewrite.Spec, len(c.PathSubstitutions))
	for i, s := range c.PathSubstitutions {
		specs[i] = rewrite.Spec{Pattern: s.Pattern, Replacement: s.Replacement}
	}
	return rewrite.Compile(specs)
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// envVarRegex matches ${VAR} and ${VAR:-default}. Names start with a letter or underscore.
var envVarRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// rawKeys are mapping keys whose values are taken verbatim. Substitution
// replacements use ${1}/${name} for capture groups.
var rawKeys = map[string]bool{"path_substitutions": true}

// expandNode expands env variables in every scalar under n except rawKeys subtrees.
func expandNode(n *yaml.Node) {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			expandNode(c)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if rawKeys[n.Content[i].Value] {
				continue
			}
			expandNode(n.Content[i+1])
		}
	case yaml.ScalarNode:
		expanded := expandEnvVars(n.Value)
		if expanded == n.Value {
			return
		}
		n.Value = expanded
		if n.Style == 0 {
			// Re-resolve so ${PORT:-8080} decodes as an int.
			n.Tag = ""
		}
	}
}

func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		sub := envVarRegex.FindStringSubmatch(match)
		if val := os.Getenv(sub[1]); val != "" {
			return val
		}
		return sub[2]
	})
}
