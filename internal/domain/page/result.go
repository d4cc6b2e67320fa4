package page

import "github.com/kailas-cloud/phyrestorm/internal/domain/hit"

// Result is one bounded page of hits in ranking order.
// TotalCount covers the whole job regardless of cursor and limit.
type Result struct {
	Hits       []hit.Hit
	TotalCount int
}

// Empty reports whether the page carries no hits.
func (r Result) Empty() bool { return len(r.Hits) == 0 }

// Last returns the structure ID of the last hit, the cursor for the next page.
func (r Result) Last() (int64, bool) {
	if len(r.Hits) == 0 {
		return 0, false
	}
	return r.Hits[len(r.Hits)-1].StructureID(), true
}
