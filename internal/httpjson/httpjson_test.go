package httpjson

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" || r.Header.Get("X-Key") != "k" {
			t.Errorf("missing headers: %v", r.Header)
		}
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	var out struct{ Value string }
	err := New(0, srv.Client()).Do(context.Background(), http.MethodPost, srv.URL, map[string]string{"X-Key": "k"}, map[string]int{"n": 1}, &out)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out.Value != "ok" {
		t.Fatalf("unexpected value %q", out.Value)
	}
}

func TestDoReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := New(0, srv.Client()).Do(context.Background(), http.MethodGet, srv.URL, nil, nil, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if !se.RateLimited() || se.Body != "slow down" {
		t.Fatalf("unexpected status error %+v", se)
	}
}
