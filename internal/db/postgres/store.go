// Package postgres implements db.Store over a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kailas-cloud/phyrestorm/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Schema creates the relations read by the store. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS structures (
    structure_id BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    cluster_index INTEGER,
    child_index INTEGER
);

CREATE TABLE IF NOT EXISTS alignments (
    job_id TEXT NOT NULL,
    structure_id BIGINT NOT NULL REFERENCES structures(structure_id),
    tm1 DOUBLE PRECISION NOT NULL,
    tm2 DOUBLE PRECISION,
    aln_img TEXT,
    PRIMARY KEY (job_id, structure_id)
);

CREATE INDEX IF NOT EXISTS idx_alignments_rank
    ON alignments(job_id, tm1 DESC, structure_id ASC);
`

const selectHits = `
SELECT s.name, s.structure_id, a.tm1, COALESCE(a.tm2, 0), a.aln_img,
        COALESCE(s.cluster_index, 0), COALESCE(s.child_index, 0)
    FROM alignments a
    INNER JOIN structures s ON a.structure_id = s.structure_id`

const (
	scoreQuery = `SELECT tm1 FROM alignments WHERE job_id = $1 AND structure_id = $2`

	firstPageQuery = selectHits + `
    WHERE a.job_id = $1
    ORDER BY a.tm1 DESC, a.structure_id ASC
    LIMIT $2`

	pageAfterQuery = selectHits + `
    WHERE a.job_id = $1
        AND (a.tm1 < $2 OR (a.tm1 = $2 AND a.structure_id > $3))
    ORDER BY a.tm1 DESC, a.structure_id ASC
    LIMIT $4`

	countQuery = `SELECT COUNT(*) FROM alignments WHERE job_id = $1`
)

// Config holds connection parameters for a PostgreSQL store.
type Config struct {
	URL          string
	MaxOpenConns int
	QueryTimeout time.Duration
	Logger       *zap.Logger
}

// Store implements db.Store via pgxpool.
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	log     *zap.Logger
}

// NewStore creates the pool. Connections are opened lazily.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}

	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns) //nolint:gosec // bounded by config validation
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{pool: pool, timeout: cfg.QueryTimeout, log: log}, nil
}

// Migrate creates the schema if it is missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Acquire checks one connection out of the pool.
func (s *Store) Acquire(ctx context.Context) (db.Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, &db.Error{Op: db.OpAcquire, Err: err}
	}
	return &session{conn: conn, timeout: s.timeout, log: s.log}, nil
}

type session struct {
	conn     *pgxpool.Conn
	timeout  time.Duration
	log      *zap.Logger
	once     sync.Once
	released bool
}

func (s *session) Score(ctx context.Context, jobID string, structureID int64) (float64, error) {
	if s.released {
		return 0, &db.Error{Op: db.OpScore, Err: db.ErrSessionClosed}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.trace(db.OpScore, jobID, structureID)
	var score float64
	err := s.conn.QueryRow(ctx, scoreQuery, jobID, structureID).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, db.ErrNoRows
	}
	if err != nil {
		return 0, &db.Error{Op: db.OpScore, Err: err}
	}
	return score, nil
}

func (s *session) FirstPage(ctx context.Context, jobID string, limit int) ([]db.HitRow, error) {
	if s.released {
		return nil, &db.Error{Op: db.OpFirstPage, Err: db.ErrSessionClosed}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.trace(db.OpFirstPage, jobID, limit)
	rows, err := s.conn.Query(ctx, firstPageQuery, jobID, limit)
	if err != nil {
		return nil, &db.Error{Op: db.OpFirstPage, Err: err}
	}
	return scanHits(db.OpFirstPage, jobID, rows, limit)
}

func (s *session) PageAfter(
	ctx context.Context, jobID string, score float64, structureID int64, limit int,
) ([]db.HitRow, error) {
	if s.released {
		return nil, &db.Error{Op: db.OpPageAfter, Err: db.ErrSessionClosed}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.trace(db.OpPageAfter, jobID, score, structureID, limit)
	rows, err := s.conn.Query(ctx, pageAfterQuery, jobID, score, structureID, limit)
	if err != nil {
		return nil, &db.Error{Op: db.OpPageAfter, Err: err}
	}
	return scanHits(db.OpPageAfter, jobID, rows, limit)
}

func (s *session) Count(ctx context.Context, jobID string) (int, error) {
	if s.released {
		return 0, &db.Error{Op: db.OpCount, Err: db.ErrSessionClosed}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.trace(db.OpCount, jobID)
	var n int64
	if err := s.conn.QueryRow(ctx, countQuery, jobID).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return int(n), nil
}

func (s *session) Release() {
	s.once.Do(func() {
		s.released = true
		s.conn.Release()
	})
}

func (s *session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *session) trace(op string, args ...any) {
	if ce := s.log.Check(zap.DebugLevel, "sql"); ce != nil {
		ce.Write(zap.String("op", op), zap.Any("args", args))
	}
}

func scanHits(op, jobID string, rows pgx.Rows, limit int) ([]db.HitRow, error) {
	defer rows.Close()

	out := make([]db.HitRow, 0, limit)
	for rows.Next() {
		var r db.HitRow
		var cluster, child int32
		if err := rows.Scan(
			&r.Name, &r.StructureID, &r.PrimaryScore, &r.SecondaryScore,
			&r.AuxPath, &cluster, &child,
		); err != nil {
			return nil, &db.Error{Op: op, Err: err}
		}
		r.JobID = jobID
		r.ClusterIndex = int(cluster)
		r.ChildIndex = int(child)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	return out, nil
}
