package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/kailas-cloud/phyrestorm/internal/db"
)

// Migration is one versioned schema change.
type Migration struct {
	Version string
	Up      string
}

// AllMigrations lists schema changes in ascending version order.
var AllMigrations = []Migration{
	{Version: "1.0.0", Up: migrationV1},
	{Version: "1.1.0", Up: migrationV1_1},
}

const migrationV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS structures (
    structure_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    cluster_index INTEGER,
    child_index INTEGER
);

CREATE TABLE IF NOT EXISTS alignments (
    job_id TEXT NOT NULL,
    structure_id INTEGER NOT NULL REFERENCES structures(structure_id),
    tm1 REAL NOT NULL,
    tm2 REAL,
    aln_img TEXT,
    PRIMARY KEY (job_id, structure_id)
);
`

// Covers the ranking order so page queries never sort.
const migrationV1_1 = `
CREATE INDEX IF NOT EXISTS idx_alignments_rank
    ON alignments(job_id, tm1 DESC, structure_id ASC);
`

// Migrate applies every migration newer than the recorded schema version.
func Migrate(ctx context.Context, conn *sql.DB) error {
	current, err := SchemaVersion(ctx, conn)
	if err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}

	for _, m := range AllMigrations {
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("invalid migration version %s: %w", m.Version, err)}
		}
		if !current.LessThan(v) {
			continue
		}
		if _, err := conn.ExecContext(ctx, m.Up); err != nil {
			return &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("apply %s: %w", m.Version, err)}
		}
		if _, err := conn.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?1)", m.Version); err != nil {
			return &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("record %s: %w", m.Version, err)}
		}
		current = v
	}
	return nil
}

// SchemaVersion returns the highest applied version, or 0.0.0 on a fresh database.
func SchemaVersion(ctx context.Context, conn *sql.DB) (*semver.Version, error) {
	zero := semver.MustParse("0.0.0")

	var name string
	err := conn.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&name)
	if err == sql.ErrNoRows {
		return zero, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check schema_version table: %w", err)
	}

	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("read schema_version: %w", err)
	}
	defer func() { _ = rows.Close() }()

	current := zero
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan schema_version: %w", err)
		}
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", s, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, rows.Err()
}

// LatestVersion returns the version the schema reaches after Migrate.
func LatestVersion() *semver.Version {
	return semver.MustParse(AllMigrations[len(AllMigrations)-1].Version)
}
