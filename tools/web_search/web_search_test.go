package web_search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mohammad-safakhou/skimmer/config"
	"github.com/mohammad-safakhou/skimmer/internal/httpjson"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/brave"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/serper"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/tavily"
)

func TestNewWebSearcher(t *testing.T) {
	for _, p := range []string{"tavily", "Brave", "serper"} {
		if _, err := NewWebSearcher(config.WebSearchConfig{Provider: p, Timeout: time.Second}); err != nil {
			t.Fatalf("%s: unexpected error %v", p, err)
		}
	}
	if _, err := NewWebSearcher(config.WebSearchConfig{Provider: "duckduckgo"}); !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestTavilyDiscoverPrefersRawContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Authorization"))
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["include_raw_content"] != true || body["search_depth"] != "advanced" {
			t.Errorf("unexpected body %v", body)
		}
		_, _ = w.Write([]byte(`{"results":[
			{"title":"A","url":"https://a.example","content":"snippet a","raw_content":"full a"},
			{"title":"B","url":"https://b.example","content":"snippet b","raw_content":null}
		]}`))
	}))
	defer srv.Close()

	s := tavily.Search{ApiKey: "key", BaseURL: srv.URL, HTTP: httpjson.New(time.Second, srv.Client())}
	res, err := s.Discover(context.Background(), "q", 6, "advanced")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(res) != 2 || res[0].Content != "full a" {
		t.Fatalf("unexpected results %+v", res)
	}
	if res[1].Content != "" || res[1].Snippet != "snippet b" {
		t.Fatalf("snippet-only hit must be left for the fetcher: %+v", res[1])
	}
}

func TestTavilyRateLimitIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := tavily.Search{ApiKey: "key", BaseURL: srv.URL, HTTP: httpjson.New(time.Second, srv.Client())}
	_, err := s.Discover(context.Background(), "q", 3, "basic")
	if !IsRateLimit(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestBraveDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "key" || r.URL.Query().Get("q") != "go" {
			t.Errorf("unexpected request %v", r.URL)
		}
		_, _ = w.Write([]byte(`{"web":{"results":[{"title":"Go","url":"https://go.dev","description":"lang"}]}}`))
	}))
	defer srv.Close()

	s := brave.Search{ApiKey: "key", BaseURL: srv.URL, HTTP: httpjson.New(time.Second, srv.Client())}
	res, err := s.Discover(context.Background(), "go", 3, "")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(res) != 1 || res[0].URL != "https://go.dev" {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestSerperDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "key" {
			t.Errorf("missing api key header")
		}
		_, _ = w.Write([]byte(`{"organic":[{"title":"Go","link":"https://go.dev","snippet":"lang"},{"title":"Blog","link":"https://go.dev/blog","snippet":"posts"}]}`))
	}))
	defer srv.Close()

	s := serper.Search{ApiKey: "key", BaseURL: srv.URL, HTTP: httpjson.New(time.Second, srv.Client())}
	res, err := s.Discover(context.Background(), "go", 1, "")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(res) != 1 || res[0].URL != "https://go.dev" {
		t.Fatalf("unexpected results %+v", res)
	}
}
