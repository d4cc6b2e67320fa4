// Package pagecache caches result pages in a key-value store.
package pagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/phyrestorm/internal/db"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
)

const keyPrefix = "phyrestorm:page:"

// DefaultTTL applies when New is given a non-positive ttl.
const DefaultTTL = 5 * time.Minute

// store is the consumer interface for the page cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// source produces pages on a cache miss.
type source interface {
	Fetch(ctx context.Context, req page.Request) (page.Result, error)
}

// Cache is a read-through page cache. Only successful pages are cached.
type Cache struct {
	inner      source
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner source,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Fetch returns a cached page or reads it from the inner source.
// Cache failures are logged and fall through to the inner source.
func (c *Cache) Fetch(ctx context.Context, req page.Request) (page.Result, error) {
	key := cacheKey(req)

	if res, ok := c.getFromCache(ctx, key, req.JobID()); ok {
		c.incCache("hit")
		return res, nil
	}

	c.incCache("miss")

	res, err := c.inner.Fetch(ctx, req)
	if err != nil {
		return page.Result{}, err
	}

	c.putToCache(ctx, key, res)
	return res, nil
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(req page.Request) string {
	h := sha256.Sum256([]byte(req.JobID()))
	after := "-"
	if id, ok := req.After(); ok {
		after = strconv.FormatInt(id, 10)
	}
	return keyPrefix + hex.EncodeToString(h[:]) + ":" + after + ":" + strconv.Itoa(req.Limit())
}

func (c *Cache) getFromCache(ctx context.Context, key, jobID string) (page.Result, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached page", zap.String("key", key), zap.Error(err))
		}
		return page.Result{}, false
	}
	if len(data) == 0 {
		return page.Result{}, false
	}

	var dto pageDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		c.logger.Warn("Failed to parse cached page", zap.String("key", key), zap.Error(err))
		return page.Result{}, false
	}
	return fromDTO(jobID, dto), true
}

func (c *Cache) putToCache(ctx context.Context, key string, res page.Result) {
	data, err := json.Marshal(toDTO(res))
	if err != nil {
		c.logger.Warn("Failed to encode page", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache page", zap.String("key", key), zap.Error(err))
	}
}
