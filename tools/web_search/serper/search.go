package serper

import (
	"context"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/skimmer/internal/httpjson"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/models"
	"github.com/mohammad-safakhou/skimmer/utils"
)

const defaultBaseURL = "https://google.serper.dev"

type Search struct {
	ApiKey  string
	BaseURL string
	HTTP    *httpjson.Client
}

func (s Search) Discover(ctx context.Context, q string, k int, _ string) ([]models.Result, error) {
	// https://serper.dev/ docs
	base := s.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	payload := map[string]any{"q": q, "num": k}
	headers := map[string]string{"X-API-KEY": s.ApiKey}

	var raw map[string]any
	if err := s.HTTP.Do(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/search", headers, payload, &raw); err != nil {
		return nil, err
	}

	var out []models.Result
	if items, ok := raw["organic"].([]any); ok {
		for i, it := range items {
			if i >= k {
				break
			}
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, models.Result{
				Title: utils.Str(m["title"]), URL: utils.Str(m["link"]), Snippet: utils.Str(m["snippet"]),
			})
		}
	}
	return out, nil
}
