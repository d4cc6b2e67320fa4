package pagecache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/phyrestorm/internal/db"
	"github.com/kailas-cloud/phyrestorm/internal/domain/hit"
	"github.com/kailas-cloud/phyrestorm/internal/domain/page"
)

type mockSource struct {
	result page.Result
	err    error
	calls  int
}

func (m *mockSource) Fetch(_ context.Context, _ page.Request) (page.Result, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

// memKVStore is a map-backed store.
type memKVStore struct {
	data map[string][]byte
}

func (m *memKVStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKVStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_page_cache_total"}, []string{"result"})
}

func newTestCache(t *testing.T, inner *mockSource, s store) (*Cache, *prometheus.CounterVec) {
	t.Helper()
	counter := newCounter()
	return New(inner, s, time.Minute, counter, zap.NewNop()), counter
}

func mustRequest(t *testing.T, jobID string, after *int64, limit int) page.Request {
	t.Helper()
	req, err := page.NewRequest(jobID, after, &limit, page.DefaultBounds())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return req
}

func samplePage() page.Result {
	p := "/scratch/a.png"
	return page.Result{
		Hits: []hit.Hit{
			hit.New("J1", 1, "a", 0.9, 0.7, &p, 2, 3),
			hit.New("J1", 2, "b", 0.9, 0.6, nil, 0, 0),
		},
		TotalCount: 3,
	}
}

func int64Ptr(v int64) *int64 { return &v }
