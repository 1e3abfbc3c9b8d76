package tavily

import (
	"context"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/skimmer/internal/httpjson"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/models"
)

const defaultBaseURL = "https://api.tavily.com"

type Search struct {
	ApiKey  string
	BaseURL string
	HTTP    *httpjson.Client
}

type request struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth,omitempty"`
	MaxResults        int    `json:"max_results"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type response struct {
	Results []struct {
		Title      string  `json:"title"`
		URL        string  `json:"url"`
		Content    string  `json:"content"`
		RawContent *string `json:"raw_content"`
	} `json:"results"`
}

// Discover asks Tavily for k results with page text inlined when Tavily has it. quality maps to
// Tavily's search_depth ("basic" or "advanced").
func (s Search) Discover(ctx context.Context, q string, k int, quality string) ([]models.Result, error) {
	// https://docs.tavily.com/documentation/api-reference/endpoint/search
	base := s.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	payload := request{Query: q, SearchDepth: quality, MaxResults: k, IncludeRawContent: true}
	headers := map[string]string{"Authorization": "Bearer " + s.ApiKey}

	var raw response
	if err := s.HTTP.Do(ctx, http.MethodPost, strings.TrimRight(base, "/")+"/search", headers, payload, &raw); err != nil {
		return nil, err
	}

	out := make([]models.Result, 0, len(raw.Results))
	for i, r := range raw.Results {
		if i >= k {
			break
		}
		// snippets are too short to summarize; leave those hits to the fetcher
		var content string
		if r.RawContent != nil && strings.TrimSpace(*r.RawContent) != "" {
			content = *r.RawContent
		}
		out = append(out, models.Result{Title: r.Title, URL: r.URL, Snippet: r.Content, Content: content})
	}
	return out, nil
}
