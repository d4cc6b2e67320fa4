package results

import (
	"context"
	"slices"

	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
)

// memRepo is an in-memory Repository over a fixed set of hits.
type memRepo struct {
	hits     []hit.Hit
	beginErr error
	countErr error
	pageErr  error
	opened   int
	closed   int
	lookups  int
	pages    int
}

func (m *memRepo) Begin(_ context.Context) (hit.Reader, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.opened++
	return &memReader{repo: m}, nil
}

type memReader struct {
	repo   *memRepo
	closed bool
}

func (r *memReader) job(jobID string) []hit.Hit {
	var out []hit.Hit
	for _, h := range r.repo.hits {
		if h.JobID() == jobID {
			out = append(out, h)
		}
	}
	hit.Sort(out)
	return out
}

func (r *memReader) Lookup(_ context.Context, jobID string, structureID int64) (hit.Key, bool, error) {
	r.repo.lookups++
	for _, h := range r.job(jobID) {
		if h.StructureID() == structureID {
			return h.Key(), true, nil
		}
	}
	return hit.Key{}, false, nil
}

func (r *memReader) FirstPage(_ context.Context, jobID string, limit int) ([]hit.Hit, error) {
	r.repo.pages++
	if r.repo.pageErr != nil {
		return nil, r.repo.pageErr
	}
	all := r.job(jobID)
	return all[:min(limit, len(all))], nil
}

func (r *memReader) PageAfter(_ context.Context, jobID string, cursor hit.Key, limit int) ([]hit.Hit, error) {
	r.repo.pages++
	if r.repo.pageErr != nil {
		return nil, r.repo.pageErr
	}
	out := []hit.Hit{}
	for _, h := range r.job(jobID) {
		if len(out) == limit {
			break
		}
		if h.Key().Follows(cursor) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *memReader) Count(_ context.Context, jobID string) (int, error) {
	if r.repo.countErr != nil {
		return 0, r.repo.countErr
	}
	return len(r.job(jobID)), nil
}

func (r *memReader) Close() {
	if !r.closed {
		r.closed = true
		r.repo.closed++
	}
}

// mockRecorder counts recorder calls.
type mockRecorder struct {
	kinds  []string
	sizes  []int
	misses int
}

func (m *mockRecorder) PageServed(kind string, hits int) {
	m.kinds = append(m.kinds, kind)
	m.sizes = append(m.sizes, hits)
}

func (m *mockRecorder) CursorMiss() { m.misses++ }

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

// j1 returns the reference job: (1, 0.9), (2, 0.9), (3, 0.5).
func j1() []hit.Hit {
	return []hit.Hit{
		hit.New("J1", 3, "c", 0.5, 0.1, nil, 0, 0),
		hit.New("J1", 1, "a", 0.9, 0.3, strPtr("/scratch/J1/a.png"), 0, 0),
		hit.New("J1", 2, "b", 0.9, 0.2, nil, 0, 1),
	}
}

func ids(hits []hit.Hit) []int64 {
	out := make([]int64, len(hits))
	for i, h := range hits {
		out[i] = h.StructureID()
	}
	return out
}

func idsEqual(a []int64, b ...int64) bool { return slices.Equal(a, b) }
