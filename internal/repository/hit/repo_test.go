package hit

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/phyrestorm/internal/db"
	"github.com/kailas-cloud/phyrestorm/internal/db/sqlite"
	"github.com/kailas-cloud/phyrestorm/internal/domain"
	domhit "github.com/kailas-cloud/phyrestorm/internal/domain/hit"
)

func TestBegin_AcquireError(t *testing.T) {
	ms := &mockStore{acquireFn: func(_ context.Context) (db.Session, error) {
		return nil, &db.Error{Op: db.OpAcquire, Err: errors.New("pool exhausted")}
	}}
	_, err := New(ms).Begin(context.Background())
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestLookup_Found(t *testing.T) {
	sess := &mockSession{scoreFn: func(_ context.Context, jobID string, id int64) (float64, error) {
		if jobID != "J1" || id != 2 {
			t.Errorf("unexpected lookup %s/%d", jobID, id)
		}
		return 0.9, nil
	}}
	r := &reader{sess: sess}

	key, found, err := r.Lookup(context.Background(), "J1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected found")
	}
	if key != (domhit.Key{Score: 0.9, StructureID: 2}) {
		t.Errorf("key = %+v", key)
	}
}

func TestLookup_Missing(t *testing.T) {
	r := &reader{sess: &mockSession{}}
	_, found, err := r.Lookup(context.Background(), "J1", 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected not found")
	}
}

func TestPageAfter_PassesCursor(t *testing.T) {
	var gotScore float64
	var gotID int64
	sess := &mockSession{pageAfterFn: func(_ context.Context, _ string, score float64, id int64, limit int) ([]db.HitRow, error) {
		gotScore, gotID = score, id
		return []db.HitRow{{JobID: "J1", StructureID: 3, Name: "c", PrimaryScore: 0.5, AuxPath: strPtr("/x.png")}}, nil
	}}
	r := &reader{sess: sess}

	hits, err := r.PageAfter(context.Background(), "J1", domhit.Key{Score: 0.9, StructureID: 2}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotScore != 0.9 || gotID != 2 {
		t.Errorf("cursor passed as (%v, %d)", gotScore, gotID)
	}
	if len(hits) != 1 || hits[0].StructureID() != 3 || hits[0].Name() != "c" {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	if p, ok := hits[0].AuxPath(); !ok || p != "/x.png" {
		t.Errorf("AuxPath() = %q, %v", p, ok)
	}
}

func TestClassify(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want error
	}{
		{"deadline", context.Background(), &db.Error{Op: db.OpCount, Err: context.DeadlineExceeded}, domain.ErrTimeout},
		{"canceled", context.Background(), context.Canceled, domain.ErrCanceled},
		{"driver interrupt after cancel", canceled, errors.New("interrupted (9)"), domain.ErrCanceled},
		{"other", context.Background(), errors.New("disk I/O error"), domain.ErrStorageUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.ctx, "count", tc.err)
			if !errors.Is(err, tc.want) {
				t.Errorf("classify() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCount_Error(t *testing.T) {
	sess := &mockSession{countFn: func(_ context.Context, _ string) (int, error) {
		return 0, errors.New("database is locked")
	}}
	r := &reader{sess: sess}
	if _, err := r.Count(context.Background(), "J1"); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestClose_ReleasesSession(t *testing.T) {
	sess := &mockSession{}
	ms := &mockStore{acquireFn: func(_ context.Context) (db.Session, error) { return sess, nil }}

	rd, err := New(ms).Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rd.Close()
	if sess.releases != 1 {
		t.Errorf("releases = %d, want 1", sess.releases)
	}
}

func TestRepo_SQLite(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.NewMemoryStoreForTest(ctx)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	if err := s.Seed(ctx,
		sqlite.Fixture{JobID: "J1", StructureID: 1, Name: "a", PrimaryScore: 0.9},
		sqlite.Fixture{JobID: "J1", StructureID: 2, Name: "b", PrimaryScore: 0.9},
		sqlite.Fixture{JobID: "J1", StructureID: 3, Name: "c", PrimaryScore: 0.5},
	); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rd, err := New(s).Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer rd.Close()

	key, found, err := rd.Lookup(ctx, "J1", 1)
	if err != nil || !found {
		t.Fatalf("lookup: %v, found=%v", err, found)
	}
	hits, err := rd.PageAfter(ctx, "J1", key, 1)
	if err != nil {
		t.Fatalf("page after: %v", err)
	}
	if len(hits) != 1 || hits[0].StructureID() != 2 {
		t.Fatalf("expected [2], got %+v", hits)
	}
	n, err := rd.Count(ctx, "J1")
	if err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}
}
