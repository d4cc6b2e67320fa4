package results

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/phyrestorm/internal/domain"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
	"github.com/kailas-cloud/phyrestorm/internal/domain/rewrite"
	"github.com/kailas-cloud/phyrestorm/internal/metrics"
)

// Service serves ranked result pages for a job.
type Service struct {
	repo   Repository
	source PageSource
	rules  rewrite.Rules
	bounds page.Bounds
	rec    Recorder
}

// New creates a results service reading pages straight from repo.
func New(repo Repository) *Service {
	return &Service{
		repo:   repo,
		source: NewFetcher(repo),
		bounds: page.DefaultBounds(),
		rec:    nopRecorder{},
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.bounds.Default = defaultPageSize
	}
	if maxPageSize > 0 {
		s.bounds.Max = maxPageSize
	}
	return s
}

// WithSource replaces the page source, e.g. with a caching decorator over a Fetcher.
func (s *Service) WithSource(src PageSource) *Service {
	if src != nil {
		s.source = src
	}
	return s
}

// WithRewrite sets the aux path substitutions applied to every served page.
func (s *Service) WithRewrite(rules rewrite.Rules) *Service {
	s.rules = rules
	return s
}

// WithRecorder sets the page metrics recorder.
func (s *Service) WithRecorder(rec Recorder) *Service {
	if rec != nil {
		s.rec = rec
	}
	return s
}

// Bounds returns the active page size policy.
func (s *Service) Bounds() page.Bounds { return s.bounds }

// GetPage returns up to limit hits of a job, starting after the hit named by after.
// A nil after starts at the top of the ranking; a nil limit uses the default page size.
func (s *Service) GetPage(ctx context.Context, jobID string, after *int64, limit *int) (page.Result, error) {
	req, err := page.NewRequest(jobID, after, limit, s.bounds)
	if err != nil {
		return page.Result{}, err
	}

	res, err := s.source.Fetch(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrCursorNotFound) {
			s.rec.CursorMiss()
		}
		return page.Result{}, fmt.Errorf("get page: %w", err)
	}

	res.Hits = s.rules.ApplyAll(res.Hits)

	kind := metrics.KindFirst
	if _, ok := req.After(); ok {
		kind = metrics.KindAfter
	}
	s.rec.PageServed(kind, len(res.Hits))

	return res, nil
}

// Count returns the number of hits in a job.
func (s *Service) Count(ctx context.Context, jobID string) (int, error) {
	if jobID == "" {
		return 0, fmt.Errorf("job id is required: %w", domain.ErrInvalidArgument)
	}

	rd, err := s.repo.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin read: %w", err)
	}
	defer rd.Close()

	n, err := rd.Count(ctx, jobID)
	if err != nil {
		return 0, fmt.Errorf("count hits: %w", err)
	}
	return n, nil
}

type nopRecorder struct{}

func (nopRecorder) PageServed(string, int) {}
func (nopRecorder) CursorMiss()            {}
