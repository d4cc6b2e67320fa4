// Package redis implements db.CacheStore via rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/phyrestorm/internal/db"
)

var _ db.CacheStore = (*Store)(nil)

const (
	defaultClientName  = "phyrestorm"
	defaultDialTimeout = 5 * time.Second
)

// Config holds connection parameters for the page cache.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int

	// ClientName is sent with CLIENT SETNAME. Empty means "phyrestorm".
	ClientName string
	// DialTimeout bounds each connection attempt. Zero means 5s.
	DialTimeout time.Duration
	// Standalone forces a single-node client even when Addrs lists several nodes.
	Standalone bool
}

// Store is a Redis-backed page cache.
type Store struct {
	client rueidis.Client
}

// NewStore creates a Store. Server-assisted client caching stays off;
// cached pages are whole JSON blobs with their own TTL.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: addrs is required")
	}

	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:       cfg.Addrs,
		Username:          cfg.Username,
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		ClientName:        name,
		ConnWriteTimeout:  dial,
		Dialer:            net.Dialer{Timeout: dial},
		ForceSingleClient: cfg.Standalone,
		DisableCache:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: create client: %w", err)
	}
	return &Store{client: client}, nil
}

// Ping sends PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the cache responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}
