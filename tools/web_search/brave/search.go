package brave

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mohammad-safakhou/skimmer/internal/httpjson"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/models"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1"

type Search struct {
	ApiKey  string
	BaseURL string
	HTTP    *httpjson.Client
}

// Discover ignores the quality hint; Brave has no equivalent knob.
func (s Search) Discover(ctx context.Context, q string, k int, _ string) ([]models.Result, error) {
	// https://api.search.brave.com/app/documentation/web-search
	base := s.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("count", fmt.Sprintf("%d", k))
	params.Set("text_decorations", "0")
	endpoint := strings.TrimRight(base, "/") + "/web/search?" + params.Encode()

	var raw struct {
		Web struct {
			Results []struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Snippet string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	headers := map[string]string{"X-Subscription-Token": s.ApiKey}
	if err := s.HTTP.Do(ctx, http.MethodGet, endpoint, headers, nil, &raw); err != nil {
		return nil, err
	}
	var out []models.Result
	for i, r := range raw.Web.Results {
		if i >= k {
			break
		}
		out = append(out, models.Result{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	return out, nil
}
