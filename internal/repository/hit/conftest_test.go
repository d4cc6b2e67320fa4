package hit

import (
	"context"

	"github.com/kailas-cloud/phyrestorm/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	acquireFn func(ctx context.Context) (db.Session, error)
}

func (m *mockStore) Acquire(ctx context.Context) (db.Session, error) {
	if m.acquireFn != nil {
		return m.acquireFn(ctx)
	}
	return &mockSession{}, nil
}

// mockSession implements db.Session for tests.
type mockSession struct {
	scoreFn     func(ctx context.Context, jobID string, structureID int64) (float64, error)
	firstPageFn func(ctx context.Context, jobID string, limit int) ([]db.HitRow, error)
	pageAfterFn func(ctx context.Context, jobID string, score float64, structureID int64, limit int) ([]db.HitRow, error)
	countFn     func(ctx context.Context, jobID string) (int, error)
	releases    int
}

func (m *mockSession) Score(ctx context.Context, jobID string, structureID int64) (float64, error) {
	if m.scoreFn != nil {
		return m.scoreFn(ctx, jobID, structureID)
	}
	return 0, db.ErrNoRows
}

func (m *mockSession) FirstPage(ctx context.Context, jobID string, limit int) ([]db.HitRow, error) {
	if m.firstPageFn != nil {
		return m.firstPageFn(ctx, jobID, limit)
	}
	return nil, nil
}

func (m *mockSession) PageAfter(
	ctx context.Context, jobID string, score float64, structureID int64, limit int,
) ([]db.HitRow, error) {
	if m.pageAfterFn != nil {
		return m.pageAfterFn(ctx, jobID, score, structureID, limit)
	}
	return nil, nil
}

func (m *mockSession) Count(ctx context.Context, jobID string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, jobID)
	}
	return 0, nil
}

func (m *mockSession) Release() { m.releases++ }

func strPtr(s string) *string { return &s }
