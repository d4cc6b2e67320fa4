package results

import (
	"context"

	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
)

// Repository opens read sessions over stored hits.
type Repository interface {
	Begin(ctx context.Context) (hit.Reader, error)
}

// PageSource produces one page for a validated request.
type PageSource interface {
	Fetch(ctx context.Context, req page.Request) (page.Result, error)
}

// Pager serves pages from raw request parameters.
type Pager interface {
	GetPage(ctx context.Context, jobID string, after *int64, limit *int) (page.Result, error)
}

// Recorder observes served pages.
type Recorder interface {
	PageServed(kind string, hits int)
	CursorMiss()
}
