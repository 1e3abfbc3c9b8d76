package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// Search attempt outcomes.
const (
	SearchOK          = "ok"
	SearchEmpty       = "empty"
	SearchRateLimited = "rate_limited"
	SearchFailed      = "failed"
)

// Fetch outcomes.
const (
	FetchOK     = "ok"
	FetchEmpty  = "empty"
	FetchFailed = "failed"
	FetchInline = "inline"
)

// Summarize outcomes.
const (
	SummarizeOK    = "ok"
	SummarizeError = "error"
)

// Recorder publishes Prometheus metrics for the pipeline. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	lookups     *prometheus.CounterVec
	searches    *prometheus.CounterVec
	fetches     *prometheus.CounterVec
	results     *prometheus.CounterVec
	summarize   *prometheus.HistogramVec
	swept       prometheus.Counter
	missLatency prometheus.Histogram
}

// NewRecorder registers collectors on reg, or on a fresh registry when reg is nil.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	r := &Recorder{
		gatherer: reg,
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skimmer", Subsystem: "cache", Name: "lookups_total",
			Help: "Cache lookups by outcome.",
		}, []string{"depth", "outcome"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skimmer", Subsystem: "search", Name: "attempts_total",
			Help: "Search provider attempts by outcome.",
		}, []string{"provider", "outcome"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skimmer", Subsystem: "fetch", Name: "sources_total",
			Help: "Per-source fetch results by outcome.",
		}, []string{"outcome"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skimmer", Subsystem: "pipeline", Name: "results_total",
			Help: "Miss-path results by kind.",
		}, []string{"depth", "kind"}),
		summarize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skimmer", Subsystem: "summarizer", Name: "duration_seconds",
			Help:    "Latency of summarization calls.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"outcome"}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skimmer", Subsystem: "cache", Name: "swept_records_total",
			Help: "Records deleted by the retention sweep.",
		}),
		missLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skimmer", Subsystem: "pipeline", Name: "miss_duration_seconds",
			Help:    "Wall-clock time of the full miss path.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 9),
		}),
	}
	reg.MustRegister(r.lookups, r.searches, r.fetches, r.results, r.summarize, r.swept, r.missLatency)
	return r
}

// Handler exposes the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveLookup(depth, outcome string) {
	if r == nil {
		return
	}
	r.lookups.WithLabelValues(depth, outcome).Inc()
}

func (r *Recorder) ObserveSearchAttempt(provider, outcome string) {
	if r == nil {
		return
	}
	r.searches.WithLabelValues(provider, outcome).Inc()
}

func (r *Recorder) ObserveFetch(outcome string) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveSummarize(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.summarize.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveResult records the terminal kind of one miss path ("ok" on success).
func (r *Recorder) ObserveResult(depth, kind string, d time.Duration) {
	if r == nil {
		return
	}
	r.results.WithLabelValues(depth, kind).Inc()
	r.missLatency.Observe(d.Seconds())
}

func (r *Recorder) ObserveSwept(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.swept.Add(float64(n))
}
