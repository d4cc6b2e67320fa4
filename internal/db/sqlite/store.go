// Package sqlite implements db.Store over database/sql and an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/phyrestorm/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const selectHits = `
SELECT structures.name, structures.structure_id, alignments.tm1,
        COALESCE(alignments.tm2, 0), alignments.aln_img,
        COALESCE(structures.cluster_index, 0), COALESCE(structures.child_index, 0)
    FROM alignments
    INNER JOIN structures
        ON alignments.structure_id = structures.structure_id`

const (
	scoreQuery = `
SELECT tm1 FROM alignments
    WHERE job_id = ?1 AND structure_id = ?2`

	firstPageQuery = selectHits + `
    WHERE alignments.job_id = ?1
    ORDER BY alignments.tm1 DESC, alignments.structure_id ASC
    LIMIT ?2`

	pageAfterQuery = selectHits + `
    WHERE alignments.job_id = ?1
        AND (alignments.tm1 < ?2
            OR (alignments.tm1 = ?2 AND alignments.structure_id > ?3))
    ORDER BY alignments.tm1 DESC, alignments.structure_id ASC
    LIMIT ?4`

	countQuery = `
SELECT COUNT(*) FROM alignments WHERE job_id = ?1`
)

// Config holds connection parameters for a SQLite store.
type Config struct {
	// DSN is a file path or ":memory:".
	DSN          string
	MaxOpenConns int
	// QueryTimeout bounds each statement. Zero means only the caller's deadline applies.
	QueryTimeout time.Duration
	Logger       *zap.Logger
}

// Store implements db.Store via database/sql.
type Store struct {
	db      *sql.DB
	timeout time.Duration
	log     *zap.Logger
}

// NewStore opens the database. It does not migrate; call Migrate for that.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	conn, err := sql.Open(DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DSN, err)
	}

	// Every connection to ":memory:" is a separate database.
	if isMemory(cfg.DSN) {
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Store{db: conn, timeout: cfg.QueryTimeout, log: log}, nil
}

// Migrate brings the schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.db)
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Acquire reserves one connection for the lifetime of a request.
func (s *Store) Acquire(ctx context.Context) (db.Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, &db.Error{Op: db.OpAcquire, Err: err}
	}
	return &session{conn: conn, timeout: s.timeout, log: s.log}, nil
}

type session struct {
	conn    *sql.Conn
	timeout time.Duration
	log     *zap.Logger
	once    sync.Once
}

func (s *session) Score(ctx context.Context, jobID string, structureID int64) (float64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.trace(db.OpScore, jobID, structureID)
	var score float64
	err := s.conn.QueryRowContext(ctx, scoreQuery, jobID, structureID).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, db.ErrNoRows
	}
	if err != nil {
		return 0, wrap(db.OpScore, err)
	}
	return score, nil
}

func (s *session) FirstPage(ctx context.Context, jobID string, limit int) ([]db.HitRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.trace(db.OpFirstPage, jobID, limit)
	rows, err := s.conn.QueryContext(ctx, firstPageQuery, jobID, limit)
	if err != nil {
		return nil, wrap(db.OpFirstPage, err)
	}
	return scanHits(db.OpFirstPage, jobID, rows, limit)
}

func (s *session) PageAfter(
	ctx context.Context, jobID string, score float64, structureID int64, limit int,
) ([]db.HitRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.trace(db.OpPageAfter, jobID, score, structureID, limit)
	rows, err := s.conn.QueryContext(ctx, pageAfterQuery, jobID, score, structureID, limit)
	if err != nil {
		return nil, wrap(db.OpPageAfter, err)
	}
	return scanHits(db.OpPageAfter, jobID, rows, limit)
}

func (s *session) Count(ctx context.Context, jobID string) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.trace(db.OpCount, jobID)
	var n int
	if err := s.conn.QueryRowContext(ctx, countQuery, jobID).Scan(&n); err != nil {
		return 0, wrap(db.OpCount, err)
	}
	return n, nil
}

func (s *session) Release() {
	s.once.Do(func() {
		if err := s.conn.Close(); err != nil {
			s.log.Warn("release connection", zap.Error(err))
		}
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

func scanHits(op, jobID string, rows *sql.Rows, limit int) ([]db.HitRow, error) {
	defer func() { _ = rows.Close() }()

	out := make([]db.HitRow, 0, limit)
	for rows.Next() {
		var (
			r   db.HitRow
			aux sql.NullString
		)
		if err := rows.Scan(
			&r.Name, &r.StructureID, &r.PrimaryScore, &r.SecondaryScore,
			&aux, &r.ClusterIndex, &r.ChildIndex,
		); err != nil {
			return nil, wrap(op, err)
		}
		r.JobID = jobID
		if aux.Valid {
			p := aux.String
			r.AuxPath = &p
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return out, nil
}

func wrap(op string, err error) error {
	if errors.Is(err, sql.ErrConnDone) {
		err = db.ErrSessionClosed
	}
	return &db.Error{Op: op, Err: err}
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
