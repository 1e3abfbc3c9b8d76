package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	rec := NewRecorder(prometheus.NewRegistry())
	rec.ObserveLookup("less", LookupHit)
	rec.ObserveLookup("less", LookupHit)
	rec.ObserveLookup("less", LookupMiss)
	rec.ObserveSearchAttempt("tavily", SearchRateLimited)
	rec.ObserveFetch(FetchFailed)
	rec.ObserveSwept(3)
	rec.ObserveSwept(0)

	if got := testutil.ToFloat64(rec.lookups.WithLabelValues("less", LookupHit)); got != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(rec.searches.WithLabelValues("tavily", SearchRateLimited)); got != 1 {
		t.Fatalf("expected 1 rate limited attempt, got %v", got)
	}
	if got := testutil.ToFloat64(rec.swept); got != 3 {
		t.Fatalf("expected 3 swept, got %v", got)
	}
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	rec := NewRecorder(nil)
	rec.ObserveResult("high", "ok", 2*time.Second)

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `skimmer_pipeline_results_total{depth="high",kind="ok"} 1`) {
		t.Fatalf("results counter missing from scrape:\n%s", body)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.ObserveLookup("less", LookupHit)
	rec.ObserveSummarize("ok", time.Second)
	rec.ObserveResult("less", "ok", time.Second)
	if rec.Handler() == nil {
		t.Fatal("expected a handler even for nil recorder")
	}
}
