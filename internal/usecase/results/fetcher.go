package results

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
)

// Fetcher reads pages from the repository, one read session per call.
type Fetcher struct {
	repo Repository
}

// NewFetcher creates a fetcher.
func NewFetcher(repo Repository) *Fetcher {
	return &Fetcher{repo: repo}
}

// Fetch returns the page described by req together with the job's total count.
// A zero limit still resolves the cursor and counts, but skips the page query.
func (f *Fetcher) Fetch(ctx context.Context, req page.Request) (page.Result, error) {
	rd, err := f.repo.Begin(ctx)
	if err != nil {
		return page.Result{}, fmt.Errorf("begin read: %w", err)
	}
	defer rd.Close()

	jobID := req.JobID()
	after, hasAfter := req.After()

	var cursor hit.Key
	if hasAfter {
		cursor, err = resolveCursor(ctx, rd, jobID, after)
		if err != nil {
			return page.Result{}, err
		}
	}

	hits := []hit.Hit{}
	if req.Limit() > 0 {
		if hasAfter {
			hits, err = rd.PageAfter(ctx, jobID, cursor, req.Limit())
		} else {
			hits, err = rd.FirstPage(ctx, jobID, req.Limit())
		}
		if err != nil {
			return page.Result{}, fmt.Errorf("fetch page: %w", err)
		}
	}

	total, err := rd.Count(ctx, jobID)
	if err != nil {
		return page.Result{}, fmt.Errorf("count hits: %w", err)
	}

	return page.Result{Hits: hits, TotalCount: total}, nil
}
