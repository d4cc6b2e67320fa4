package phyrestorm

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
)

// ResultSet reads the ranked hits of one job.
type ResultSet struct {
	jobID string
	svc   resultsUseCase
	obs   *observer
}

// JobID returns the job this result set reads.
func (r *ResultSet) JobID() string { return r.jobID }

// Page returns up to limit hits ranked after the hit with structure ID after.
// A nil after starts at the top; a nil limit uses the default page size.
// An after that is not a hit of the job fails with ErrCursorNotFound.
func (r *ResultSet) Page(ctx context.Context, after *int64, limit *int) (p Page, err error) {
	start := time.Now()
	defer func() { r.obs.observe("results.page", start, err, "job_id", r.jobID) }()

	res, err := r.svc.GetPage(ctx, r.jobID, after, limit)
	if err != nil {
		return Page{}, fmt.Errorf("page %s: %w", r.jobID, err)
	}
	r.obs.observePage(len(res.Hits))
	return pageFromDomain(res), nil
}

// Count returns the number of hits in the job. An unknown job has zero hits.
func (r *ResultSet) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { r.obs.observe("results.count", start, err, "job_id", r.jobID) }()

	n, err = r.svc.Count(ctx, r.jobID)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.jobID, err)
	}
	return n, nil
}

// Walk calls fn for every hit of the job in ranking order, pageSize hits per query.
// Returning an error from fn stops the walk with that error.
func (r *ResultSet) Walk(ctx context.Context, pageSize int, fn func(Hit) error) (err error) {
	start := time.Now()
	visited := 0
	defer func() { r.obs.observe("results.walk", start, err, "job_id", r.jobID, "hits", visited) }()

	return r.svc.Walk(ctx, r.jobID, pageSize, func(h hit.Hit) error {
		visited++
		return fn(hitFromDomain(h))
	})
}
