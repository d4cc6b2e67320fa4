package results

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/phyrestorm/internal/domain"
	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
)

// Walk visits every hit of a job in ranking order, resuming each page after the
// last hit of the previous one until a page comes back empty.
// It stops early and returns the error if fn fails.
func Walk(ctx context.Context, p Pager, jobID string, pageSize int, fn func(hit.Hit) error) error {
	if pageSize <= 0 {
		return fmt.Errorf("walk page size %d must be positive: %w", pageSize, domain.ErrInvalidArgument)
	}

	var after *int64
	for {
		res, err := p.GetPage(ctx, jobID, after, &pageSize)
		if err != nil {
			return fmt.Errorf("walk %s: %w", jobID, err)
		}
		last, ok := res.Last()
		if !ok {
			return nil
		}
		for _, h := range res.Hits {
			if err := fn(h); err != nil {
				return err
			}
		}
		after = &last
	}
}

// Walk visits every hit of a job in ranking order. See Walk.
func (s *Service) Walk(ctx context.Context, jobID string, pageSize int, fn func(hit.Hit) error) error {
	return Walk(ctx, s, jobID, pageSize, fn)
}
