package db

import (
	"context"
	"time"
)

// Store is the relational results store facade.
type Store interface {
	Pinger
	HitReader
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HitRow is one alignment joined with its structure.
type HitRow struct {
	JobID          string
	StructureID    int64
	Name           string
	PrimaryScore   float64
	SecondaryScore float64
	AuxPath        *string
	ClusterIndex   int
	ChildIndex     int
}

// HitReader opens scoped read sessions.
type HitReader interface {
	// Acquire takes a connection from the pool. The caller must Release it.
	Acquire(ctx context.Context) (Session, error)
}

// Session is a single pooled connection serving one request.
// Rows are always ordered by score DESC, structure_id ASC.
type Session interface {
	// Score returns the primary score of a hit, or ErrNoRows.
	Score(ctx context.Context, jobID string, structureID int64) (float64, error)
	// FirstPage returns the top limit hits of a job.
	FirstPage(ctx context.Context, jobID string, limit int) ([]HitRow, error)
	// PageAfter returns up to limit hits ranked strictly after (score, structureID).
	PageAfter(ctx context.Context, jobID string, score float64, structureID int64, limit int) ([]HitRow, error)
	// Count returns the number of hits in a job.
	Count(ctx context.Context, jobID string) (int, error)
	// Release returns the connection to the pool. Safe to call more than once.
	Release()
}

// CacheStore is a TTL key-value store used for page caching.
type CacheStore interface {
	Pinger
	KVStore
	Close()
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// WaitForReady polls p until it responds or timeout expires.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := p.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return &Error{Op: OpPing, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}
