package web_search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohammad-safakhou/skimmer/internal/depth"
	"github.com/mohammad-safakhou/skimmer/internal/metrics"
	smodels "github.com/mohammad-safakhou/skimmer/models"
	"github.com/mohammad-safakhou/skimmer/tools/web_search/models"
	"github.com/mohammad-safakhou/skimmer/utils"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 2 * time.Second
)

type AdapterOptions struct {
	Provider    string
	MaxAttempts int
	Backoff     time.Duration
	Logger      *zap.Logger
	Metrics     *metrics.Recorder
}

// Adapter wraps a WebSearcher with the retry policy: only rate-limit errors
// are retried, with exponential backoff. It never returns an error; every
// failure collapses into an empty result after being logged.
type Adapter struct {
	searcher    WebSearcher
	provider    string
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
	metrics     *metrics.Recorder
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewAdapter(s WebSearcher, opts AdapterOptions) *Adapter {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Provider == "" {
		opts.Provider = "unknown"
	}
	return &Adapter{
		searcher:    s,
		provider:    opts.Provider,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		sleep:       sleepCtx,
	}
}

// Search returns up to profile.Breadth distinct candidates for topic.
func (a *Adapter) Search(ctx context.Context, topic string, profile depth.Profile) []smodels.Candidate {
	log := a.logger.With(zap.String("topic", topic), zap.Int("breadth", profile.Breadth))
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		results, err := a.searcher.Discover(ctx, topic, profile.Breadth, profile.SearchQuality)
		if err == nil {
			out := toCandidates(results, profile.Breadth)
			if len(out) == 0 {
				a.metrics.ObserveSearchAttempt(a.provider, metrics.SearchEmpty)
				log.Info("search returned no results")
			} else {
				a.metrics.ObserveSearchAttempt(a.provider, metrics.SearchOK)
			}
			return out
		}

		if !IsRateLimit(err) {
			a.metrics.ObserveSearchAttempt(a.provider, metrics.SearchFailed)
			log.Warn("search failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return nil
		}
		a.metrics.ObserveSearchAttempt(a.provider, metrics.SearchRateLimited)
		if attempt == a.maxAttempts-1 {
			log.Warn("search rate limited, attempts exhausted", zap.Error(err), zap.Int("attempts", a.maxAttempts))
			return nil
		}

		wait := a.backoff << attempt
		log.Info("search rate limited, backing off", zap.Int("attempt", attempt+1), zap.Duration("wait", wait))
		if err := a.sleep(ctx, wait); err != nil {
			log.Warn("search abandoned during backoff", zap.Error(err))
			return nil
		}
	}
	return nil
}

func toCandidates(results []models.Result, limit int) []smodels.Candidate {
	seen := make(map[string]struct{}, len(results))
	out := make([]smodels.Candidate, 0, len(results))
	for _, r := range results {
		u := strings.TrimSpace(r.URL)
		if u == "" {
			continue
		}
		key, err := utils.CanonicalURL(u)
		if err != nil {
			key = u
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, smodels.Candidate{URL: u, Title: r.Title, Content: r.Content})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
