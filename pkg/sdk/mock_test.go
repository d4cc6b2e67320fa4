package phyrestorm

import (
	"context"

	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
)

// --- resultsUseCase mock ---

type mockResultsUC struct {
	getPageFn func(ctx context.Context, jobID string, after *int64, limit *int) (page.Result, error)
	countFn   func(ctx context.Context, jobID string) (int, error)
	walkFn    func(ctx context.Context, jobID string, pageSize int, fn func(hit.Hit) error) error
}

func (m *mockResultsUC) GetPage(ctx context.Context, jobID string, after *int64, limit *int) (page.Result, error) {
	return m.getPageFn(ctx, jobID, after, limit)
}

func (m *mockResultsUC) Count(ctx context.Context, jobID string) (int, error) {
	return m.countFn(ctx, jobID)
}

func (m *mockResultsUC) Walk(ctx context.Context, jobID string, pageSize int, fn func(hit.Hit) error) error {
	return m.walkFn(ctx, jobID, pageSize, fn)
}

// --- helpers ---

func testClient(svc resultsUseCase) *Client {
	return &Client{resultsSvc: svc}
}

func strPtr(s string) *string { return &s }

func j1Hits() []hit.Hit {
	return []hit.Hit{
		hit.New("J1", 1, "a", 0.9, 0.3, strPtr("/data/jobs/J1/1.png"), 2, 0),
		hit.New("J1", 2, "b", 0.9, 0.2, nil, 2, 1),
		hit.New("J1", 3, "c", 0.5, 0.1, nil, 5, 0),
	}
}
