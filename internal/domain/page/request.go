package page

import (
	"fmt"

	"github.com/kailas-cloud/phyrestorm/internal/domain"
)

// Page size limits.
const (
	// DefaultPageSize is used when the caller omits a limit.
	DefaultPageSize = 100
	// MaxPageSize is the exclusive upper bound on a limit.
	MaxPageSize = 1000
)

// Bounds holds the page size policy. Default must be below Max.
type Bounds struct {
	Default int
	Max     int
}

// DefaultBounds returns the built-in page size policy.
func DefaultBounds() Bounds {
	return Bounds{Default: DefaultPageSize, Max: MaxPageSize}
}

// Validate checks the policy itself.
func (b Bounds) Validate() error {
	if b.Max <= 0 {
		return fmt.Errorf("max page size must be positive, got %d", b.Max)
	}
	if b.Default < 0 || b.Default >= b.Max {
		return fmt.Errorf("default page size %d must be in [0, %d)", b.Default, b.Max)
	}
	return nil
}

// Request is a validated page request.
type Request struct {
	jobID    string
	after    int64
	hasAfter bool
	limit    int
}

// NewRequest validates page parameters.
// A nil limit means bounds.Default. A limit outside [0, bounds.Max) is rejected, not clamped.
func NewRequest(jobID string, after *int64, limit *int, bounds Bounds) (Request, error) {
	if jobID == "" {
		return Request{}, fmt.Errorf("job id is required: %w", domain.ErrInvalidArgument)
	}

	n := bounds.Default
	if limit != nil {
		n = *limit
	}
	if n < 0 || n >= bounds.Max {
		return Request{}, fmt.Errorf("limit %d outside [0, %d): %w", n, bounds.Max, domain.ErrInvalidArgument)
	}

	r := Request{jobID: jobID, limit: n}
	if after != nil {
		r.after = *after
		r.hasAfter = true
	}
	return r, nil
}

// JobID returns the job whose hits are paged.
func (r Request) JobID() string { return r.jobID }

// After returns the resume cursor and whether one was given.
func (r Request) After() (int64, bool) { return r.after, r.hasAfter }

// Limit returns the maximum number of hits in the page.
func (r Request) Limit() int { return r.limit }

// Next returns the request for the page following res, resuming after its last hit.
// ok is false when res is empty, which is how exhaustion is signalled.
func (r Request) Next(res Result) (Request, bool) {
	last, ok := res.Last()
	if !ok {
		return Request{}, false
	}
	next := r
	next.after = last
	next.hasAfter = true
	return next, true
}
