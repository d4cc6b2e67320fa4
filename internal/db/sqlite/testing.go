package sqlite

import (
	"context"
	"fmt"
)

// Fixture is one alignment row with its structure, used to seed a store.
type Fixture struct {
	JobID          string
	StructureID    int64
	Name           string
	PrimaryScore   float64
	SecondaryScore float64
	AuxPath        *string
	ClusterIndex   int
	ChildIndex     int
}

// NewMemoryStoreForTest opens a migrated in-memory store (test-only).
func NewMemoryStoreForTest(ctx context.Context) (*Store, error) {
	s, err := NewStore(Config{DSN: ":memory:"})
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Seed inserts fixtures. Structures shared between jobs are inserted once.
func (s *Store) Seed(ctx context.Context, rows ...Fixture) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO structures (structure_id, name, cluster_index, child_index)
			VALUES (?1, ?2, ?3, ?4)`,
			r.StructureID, r.Name, r.ClusterIndex, r.ChildIndex,
		); err != nil {
			return fmt.Errorf("seed structure %d: %w", r.StructureID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO alignments (job_id, structure_id, tm1, tm2, aln_img)
			VALUES (?1, ?2, ?3, ?4, ?5)`,
			r.JobID, r.StructureID, r.PrimaryScore, r.SecondaryScore, r.AuxPath,
		); err != nil {
			return fmt.Errorf("seed alignment %s/%d: %w", r.JobID, r.StructureID, err)
		}
	}
	return tx.Commit()
}
