package phyrestorm

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/phyrestorm/internal/domain"
	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
)

func TestResultSet_Page(t *testing.T) {
	mock := &mockResultsUC{
		getPageFn: func(_ context.Context, jobID string, after *int64, limit *int) (page.Result, error) {
			if jobID != "J1" {
				t.Errorf("jobID = %q, want J1", jobID)
			}
			if after != nil || limit == nil || *limit != 2 {
				t.Errorf("after = %v, limit = %v", after, limit)
			}
			return page.Result{Hits: j1Hits()[:2], TotalCount: 3}, nil
		},
	}

	p, err := testClient(mock).Results("J1").Page(context.Background(), nil, Limit(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalCount != 3 || len(p.Hits) != 2 {
		t.Fatalf("page = %+v", p)
	}

	first := p.Hits[0]
	if first.StructureID != 1 || first.Name != "a" || first.ClusterIndex != 2 {
		t.Errorf("first = %+v", first)
	}
	if first.AuxPath == nil || *first.AuxPath != "/data/jobs/J1/1.png" {
		t.Errorf("AuxPath = %v", first.AuxPath)
	}
	if p.Hits[1].AuxPath != nil {
		t.Errorf("second AuxPath = %q, want nil", *p.Hits[1].AuxPath)
	}
	if next := p.NextAfter(); next == nil || *next != 2 {
		t.Errorf("NextAfter() = %v, want 2", next)
	}
}

func TestResultSet_Page_Error(t *testing.T) {
	mock := &mockResultsUC{
		getPageFn: func(context.Context, string, *int64, *int) (page.Result, error) {
			return page.Result{}, domain.NewCursorNotFound("J1", 9)
		},
	}

	_, err := testClient(mock).Results("J1").Page(context.Background(), After(9), nil)
	if !errors.Is(err, ErrCursorNotFound) {
		t.Fatalf("expected ErrCursorNotFound, got %v", err)
	}
}

func TestPage_NextAfter_Empty(t *testing.T) {
	if (Page{}).NextAfter() != nil {
		t.Error("empty page should have no next cursor")
	}
}

func TestResultSet_Count(t *testing.T) {
	mock := &mockResultsUC{
		countFn: func(_ context.Context, jobID string) (int, error) {
			return 3, nil
		},
	}

	n, err := testClient(mock).Results("J1").Count(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("Count() = %d, %v", n, err)
	}
}

func TestResultSet_Count_Error(t *testing.T) {
	mock := &mockResultsUC{
		countFn: func(context.Context, string) (int, error) {
			return 0, domain.ErrStorageUnavailable
		},
	}

	if _, err := testClient(mock).Results("J1").Count(context.Background()); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestResultSet_Walk(t *testing.T) {
	mock := &mockResultsUC{
		walkFn: func(_ context.Context, _ string, pageSize int, fn func(hit.Hit) error) error {
			if pageSize != 2 {
				t.Errorf("pageSize = %d, want 2", pageSize)
			}
			for _, h := range j1Hits() {
				if err := fn(h); err != nil {
					return err
				}
			}
			return nil
		},
	}

	var ids []int64
	err := testClient(mock).Results("J1").Walk(context.Background(), 2, func(h Hit) error {
		ids = append(ids, h.StructureID)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("ids = %v, want [1 2 3]", ids)
	}
}

func TestResultSet_Walk_StopsOnError(t *testing.T) {
	stop := errors.New("stop")
	mock := &mockResultsUC{
		walkFn: func(_ context.Context, _ string, _ int, fn func(hit.Hit) error) error {
			for _, h := range j1Hits() {
				if err := fn(h); err != nil {
					return err
				}
			}
			return nil
		},
	}

	calls := 0
	err := testClient(mock).Results("J1").Walk(context.Background(), 10, func(Hit) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
