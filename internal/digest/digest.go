// Package digest answers topic queries from the cache when it can and runs
// search, fetch and summarize when it cannot.
package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/mohammad-safakhou/skimmer/internal/depth"
	"github.com/mohammad-safakhou/skimmer/internal/keylock"
	"github.com/mohammad-safakhou/skimmer/internal/metrics"
	"github.com/mohammad-safakhou/skimmer/internal/store"
	"github.com/mohammad-safakhou/skimmer/models"
	"github.com/mohammad-safakhou/skimmer/provider"
	"github.com/mohammad-safakhou/skimmer/tools/web_fetch"
)

// Searcher returns ranked candidates; an empty slice covers every failure.
type Searcher interface {
	Search(ctx context.Context, topic string, profile depth.Profile) []models.Candidate
}

// Fetcher returns page text; an empty Text covers every failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string, charLimit int) models.SourceDocument
}

const (
	defaultConcurrency    = 4
	defaultLockTTL        = 2 * time.Minute
	defaultPollInterval   = 500 * time.Millisecond
	defaultRequestTimeout = 3 * time.Minute
)

type Options struct {
	Retention time.Duration
	// RequestTimeout bounds one miss path. The work is shared by every
	// waiter on the key, so it must always end; zero means the default.
	RequestTimeout time.Duration
	LockTTL        time.Duration
	PollInterval   time.Duration
	Concurrency    int
	// PoliteDelay is the minimum spacing between fetch starts within one
	// request. Zero disables the cap.
	PoliteDelay time.Duration
	Locker      keylock.Locker
	Logger      *zap.Logger
	Metrics     *metrics.Recorder
	Now         func() time.Time
}

// Result tells callers whether the record came from the cache.
type Result struct {
	Record models.CacheRecord
	Cached bool
}

type Orchestrator struct {
	store      store.RecordStore
	searcher   Searcher
	fetcher    Fetcher
	summarizer provider.Summarizer
	locker     keylock.Locker
	group      singleflight.Group

	retention      time.Duration
	requestTimeout time.Duration
	lockTTL        time.Duration
	pollInterval   time.Duration
	concurrency    int
	politeDelay    time.Duration

	logger  *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

func New(st store.RecordStore, s Searcher, f Fetcher, sum provider.Summarizer, opts Options) *Orchestrator {
	if opts.Retention <= 0 {
		opts.Retention = models.DefaultRetention
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Locker == nil {
		opts.Locker = keylock.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		store:          st,
		searcher:       s,
		fetcher:        f,
		summarizer:     sum,
		locker:         opts.Locker,
		retention:      opts.Retention,
		requestTimeout: opts.RequestTimeout,
		lockTTL:        opts.LockTTL,
		pollInterval:   opts.PollInterval,
		concurrency:    opts.Concurrency,
		politeDelay:    opts.PoliteDelay,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
		now:            opts.Now,
	}
}

// Handle returns a fresh summary for (topic, depth), producing one if needed.
func (o *Orchestrator) Handle(ctx context.Context, topic, depthLabel string) (models.CacheRecord, error) {
	res, err := o.HandleResult(ctx, topic, depthLabel)
	return res.Record, err
}

// HandleResult is Handle plus whether the record was served from the cache.
func (o *Orchestrator) HandleResult(ctx context.Context, topic, depthLabel string) (Result, error) {
	key, err := models.NewCacheKey(topic, depthLabel)
	if err != nil {
		return Result{}, newError(KindInvalidInput, err)
	}

	rec, ok, err := o.lookup(ctx, key)
	if err != nil {
		return Result{}, err
	}
	if ok {
		return Result{Record: rec, Cached: true}, nil
	}

	ch := o.group.DoChan(key.String(), func() (res any, err error) {
		// DoChan re-panics on a fresh goroutine where nothing can recover it
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("miss path panicked", zap.String("key", key.String()), zap.Any("panic", r), zap.Stack("stack"))
				res, err = nil, newError(KindUpstreamUnavailable, fmt.Errorf("panic: %v", r))
			}
		}()
		// shared by every waiter on key, so no single caller may cancel it
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.requestTimeout)
		defer cancel()
		return o.coordinate(wctx, key)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return r.Val.(Result), nil
	case <-ctx.Done():
		return Result{}, newError(KindUpstreamUnavailable, ctx.Err())
	}
}

// Lookup is the cache-only read path.
func (o *Orchestrator) Lookup(ctx context.Context, topic, depthLabel string) (models.CacheRecord, error) {
	key, err := models.NewCacheKey(topic, depthLabel)
	if err != nil {
		return models.CacheRecord{}, newError(KindInvalidInput, err)
	}
	rec, ok, err := o.lookup(ctx, key)
	if err != nil {
		return models.CacheRecord{}, err
	}
	if !ok {
		return models.CacheRecord{}, ErrNotCached
	}
	return rec, nil
}

func (o *Orchestrator) lookup(ctx context.Context, key models.CacheKey) (models.CacheRecord, bool, error) {
	rec, ok, err := o.store.Get(ctx, key, o.now().Add(-o.retention))
	switch {
	case err != nil:
		o.metrics.ObserveLookup(string(key.Depth), metrics.LookupError)
		o.logger.Error("cache lookup failed", zap.String("key", key.String()), zap.Error(err))
		return models.CacheRecord{}, false, newError(KindUpstreamUnavailable, err)
	case ok:
		o.metrics.ObserveLookup(string(key.Depth), metrics.LookupHit)
		return rec, true, nil
	default:
		o.metrics.ObserveLookup(string(key.Depth), metrics.LookupMiss)
		return models.CacheRecord{}, false, nil
	}
}

// coordinate serializes miss paths for key across processes. A caller that
// loses the lock waits for the holder's record until the lock would have
// expired and then runs the pipeline itself.
func (o *Orchestrator) coordinate(ctx context.Context, key models.CacheKey) (Result, error) {
	release, acquired, err := o.locker.TryAcquire(ctx, key.String(), o.lockTTL)
	if err != nil {
		o.logger.Warn("key lock unavailable, running unlocked", zap.String("key", key.String()), zap.Error(err))
		release, acquired = func() {}, true
	}
	if !acquired {
		rec, ok, err := o.waitForHolder(ctx, key)
		if err != nil {
			return Result{}, err
		}
		if ok {
			return Result{Record: rec, Cached: true}, nil
		}
		o.logger.Warn("lock holder produced no record, running pipeline", zap.String("key", key.String()))
	} else {
		defer release()
		// another process may have finished between our lookup and the lock
		rec, ok, err := o.lookup(ctx, key)
		if err != nil {
			return Result{}, err
		}
		if ok {
			return Result{Record: rec, Cached: true}, nil
		}
	}
	rec, err := o.run(ctx, key)
	if err != nil {
		return Result{}, err
	}
	return Result{Record: rec}, nil
}

func (o *Orchestrator) waitForHolder(ctx context.Context, key models.CacheKey) (models.CacheRecord, bool, error) {
	deadline := time.NewTimer(o.lockTTL)
	defer deadline.Stop()
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return models.CacheRecord{}, false, newError(KindUpstreamUnavailable, ctx.Err())
		case <-deadline.C:
			return models.CacheRecord{}, false, nil
		case <-ticker.C:
			rec, ok, err := o.lookup(ctx, key)
			if err != nil || ok {
				return rec, ok, err
			}
		}
	}
}

// run is the miss path: search, fetch, summarize, store.
func (o *Orchestrator) run(ctx context.Context, key models.CacheKey) (models.CacheRecord, error) {
	t0 := o.now()
	log := o.logger.With(zap.String("run_id", uuid.NewString()), zap.String("topic", key.Topic), zap.String("depth", string(key.Depth)))
	fail := func(kind Kind, err error) (models.CacheRecord, error) {
		o.metrics.ObserveResult(string(key.Depth), string(kind), o.now().Sub(t0))
		log.Warn("miss path failed", zap.String("kind", string(kind)), zap.Error(err))
		return models.CacheRecord{}, newError(kind, err)
	}

	profile, err := depth.ProfileFor(key.Depth)
	if err != nil {
		return fail(KindInvalidInput, err)
	}

	candidates := o.searcher.Search(ctx, key.Topic, profile)
	if len(candidates) == 0 {
		return fail(KindNoSourcesFound, nil)
	}
	log.Info("sources found", zap.Int("candidates", len(candidates)))

	docs := o.gather(ctx, candidates, profile.CharLimitPerSource)
	corpus := BuildCorpus(docs)
	if corpus == "" {
		return fail(KindNoReadableContent, nil)
	}

	summary, err := o.summarizer.Summarize(ctx, corpus, key.Topic, profile.Instruction)
	if err != nil {
		return fail(KindSummarization, err)
	}

	rec, err := o.store.Upsert(ctx, models.CacheRecord{
		Topic:     key.Topic,
		Depth:     key.Depth,
		Summary:   summary,
		CreatedAt: o.now(),
	})
	if err != nil {
		return fail(KindUpstreamUnavailable, err)
	}
	o.metrics.ObserveResult(string(key.Depth), "ok", o.now().Sub(t0))
	log.Info("summary stored", zap.Int("corpus_chars", len(corpus)), zap.Duration("took", o.now().Sub(t0)))
	return rec, nil
}

// gather fetches candidates concurrently. Output order follows candidates.
func (o *Orchestrator) gather(ctx context.Context, candidates []models.Candidate, charLimit int) []models.SourceDocument {
	docs := make([]models.SourceDocument, len(candidates))
	limiter := rate.NewLimiter(rate.Inf, 1)
	if o.politeDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(o.politeDelay), 1)
	}

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, c := range candidates {
		if c.Content != "" {
			o.metrics.ObserveFetch(metrics.FetchInline)
			docs[i] = web_fetch.FromInline(c, charLimit)
			continue
		}
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				docs[i] = models.SourceDocument{URL: c.URL}
				return nil
			}
			docs[i] = o.fetcher.Fetch(ctx, c.URL, charLimit)
			return nil
		})
	}
	_ = g.Wait()
	return docs
}

// IsCacheMiss reports whether err came from Lookup finding nothing.
func IsCacheMiss(err error) bool { return errors.Is(err, ErrNotCached) }
