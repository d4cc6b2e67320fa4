package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "phyrestorm"

// Page kinds.
const (
	KindFirst = "first"
	KindAfter = "after"
)

// Result Prometheus metrics.
var (
	PagesServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_served_total",
			Help:      "Result pages served",
		},
		[]string{"kind"}, // "first" / "after"
	)

	PageSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_size_hits",
			Help:      "Number of hits per served page",
			Buckets:   []float64{0, 1, 10, 50, 100, 250, 500, 999},
		},
	)

	CursorMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cursor_misses_total",
			Help:      "Page requests whose cursor named no hit of the job",
		},
	)

	PageCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_cache_total",
			Help:      "Page cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var resultMetricsRegistered bool

// RegisterResultMetrics registers Prometheus result metrics. Must be called once from main.
func RegisterResultMetrics() {
	if resultMetricsRegistered {
		return
	}
	prometheus.MustRegister(PagesServedTotal)
	prometheus.MustRegister(PageSize)
	prometheus.MustRegister(CursorMissesTotal)
	prometheus.MustRegister(PageCacheTotal)
	resultMetricsRegistered = true
}

// Recorder feeds the result metrics. The zero value is ready to use.
type Recorder struct{}

// PageServed records one served page.
func (Recorder) PageServed(kind string, hits int) {
	PagesServedTotal.WithLabelValues(kind).Inc()
	PageSize.Observe(float64(hits))
}

// CursorMiss records a request with an unknown cursor.
func (Recorder) CursorMiss() {
	CursorMissesTotal.Inc()
}
