package web_search

import (
	"context"
	"errors"
	"strings"

	"github.com/mohammad-safakhou/skimmer/config"
	"github.com/mohammad-safakhou/skimmer/internal/httpjson"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/brave"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/models"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/serper"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/tavily"
)

// WebSearcher is a single search provider call: query, result count hint and
// quality hint in, ranked results out.
type WebSearcher interface {
	Discover(ctx context.Context, q string, k int, quality string) ([]models.Result, error)
}

type Provider string

const (
	TavilyProvider Provider = "tavily"
	SerperProvider Provider = "serper"
	BraveProvider  Provider = "brave"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported search provider")
	// ErrRateLimited may be wrapped by providers that signal throttling
	// without an HTTP 429.
	ErrRateLimited = errors.New("search provider rate limited")
)

// IsRateLimit reports whether err is the retryable rate-limit class.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var se *httpjson.StatusError
	return errors.As(err, &se) && se.RateLimited()
}

func NewWebSearcher(cfg config.WebSearchConfig) (WebSearcher, error) {
	client := httpjson.New(cfg.Timeout, nil)
	switch Provider(strings.ToLower(cfg.Provider)) {
	case TavilyProvider:
		return tavily.Search{ApiKey: cfg.TavilyAPIKey, BaseURL: cfg.BaseURL, HTTP: client}, nil
	case SerperProvider:
		return serper.Search{ApiKey: cfg.SerperAPIKey, BaseURL: cfg.BaseURL, HTTP: client}, nil
	case BraveProvider:
		return brave.Search{ApiKey: cfg.BraveAPIKey, BaseURL: cfg.BaseURL, HTTP: client}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
