package phyrestorm

import (
	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
)

// Hit is one ranked alignment of a job.
type Hit struct {
	JobID          string
	StructureID    int64
	Name           string
	PrimaryScore   float64
	SecondaryScore float64
	AuxPath        *string // nil when the alignment has no image
	ClusterIndex   int
	ChildIndex     int
}

// Page is one bounded slice of a job's ranking.
type Page struct {
	Hits       []Hit
	TotalCount int // hits in the whole job, independent of the cursor
}

// NextAfter returns the cursor for the following page, or nil for an empty page.
func (p Page) NextAfter() *int64 {
	if len(p.Hits) == 0 {
		return nil
	}
	id := p.Hits[len(p.Hits)-1].StructureID
	return &id
}

// Limit returns a pointer to n, for the limit argument of Page.
func Limit(n int) *int { return &n }

// After returns a pointer to id, for the after argument of Page.
func After(id int64) *int64 { return &id }

func hitFromDomain(h hit.Hit) Hit {
	out := Hit{
		JobID:          h.JobID(),
		StructureID:    h.StructureID(),
		Name:           h.Name(),
		PrimaryScore:   h.PrimaryScore(),
		SecondaryScore: h.SecondaryScore(),
		ClusterIndex:   h.ClusterIndex(),
		ChildIndex:     h.ChildIndex(),
	}
	if p, ok := h.AuxPath(); ok {
		out.AuxPath = &p
	}
	return out
}

func pageFromDomain(r page.Result) Page {
	hits := make([]Hit, len(r.Hits))
	for i, h := range r.Hits {
		hits[i] = hitFromDomain(h)
	}
	return Page{Hits: hits, TotalCount: r.TotalCount}
}
