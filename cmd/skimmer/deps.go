package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/skimmer/config"
	"github.com/mohammad-safakhou/skimmer/internal/digest"
	"github.com/mohammad-safakhou/skimmer/internal/keylock"
	"github.com/mohammad-safakhou/skimmer/internal/logging"
	"github.com/mohammad-safakhou/skimmer/internal/metrics"
	"github.com/mohammad-safakhou/skimmer/internal/store"
	"github.com/mohammad-safakhou/skimmer/provider"
	"github.com/mohammad-safakhou/skimmer/tools/web_fetch"
	"github.com/mohammad-safakhou/skimmer/tools/web_search"
)

// app holds the process-wide dependencies shared by commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Recorder
	store   store.Backend
	closers []func() error
}

// bootstrap loads config, validates the sections in check and opens the
// record store.
func bootstrap(ctx context.Context, cfgPath string, check func(*config.Config) error) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := check(cfg); err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.General)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	if cfg.Telemetry.Enabled {
		a.metrics = metrics.NewRecorder(prometheus.NewRegistry())
	}

	st, err := store.Open(ctx, cfg.Storage, cfg.Cache.Retention)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, st.Close)
	return a, nil
}

func validateAll(cfg *config.Config) error { return cfg.Validate() }

func validateStorage(cfg *config.Config) error {
	return errors.Join(cfg.Cache.Validate(), cfg.Storage.Validate())
}

// orchestrator wires search, fetch, summarize and the key lock.
func (a *app) orchestrator(ctx context.Context) (*digest.Orchestrator, error) {
	cfg := a.cfg
	searcher, err := web_search.NewWebSearcher(cfg.Sources.WebSearch)
	if err != nil {
		return nil, err
	}
	adapter := web_search.NewAdapter(searcher, web_search.AdapterOptions{
		Provider:    strings.ToLower(cfg.Sources.WebSearch.Provider),
		MaxAttempts: cfg.Sources.WebSearch.MaxAttempts,
		Backoff:     cfg.Sources.WebSearch.Backoff,
		Logger:      a.logger.Named("search"),
		Metrics:     a.metrics,
	})

	fetcher, err := web_fetch.NewFetcherFromConfig(cfg.Sources.Fetch, a.logger.Named("fetch"), a.metrics)
	if err != nil {
		return nil, err
	}

	summarizer, err := provider.NewSummarizer(ctx, cfg.LLM, a.logger, a.metrics)
	if err != nil {
		return nil, err
	}

	var locker keylock.Locker = keylock.Noop{}
	if cfg.Cache.DistributedLock {
		rdb, err := store.OpenRedis(ctx, cfg.Storage.Redis)
		if err != nil {
			return nil, fmt.Errorf("distributed lock: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		locker = keylock.Redis{Rdb: rdb}
	}

	return digest.New(a.store, adapter, fetcher, summarizer, digest.Options{
		Retention:      cfg.Cache.Retention,
		RequestTimeout: cfg.Cache.RequestTimeout,
		LockTTL:        cfg.Cache.LockTTL,
		Concurrency:    cfg.Sources.Fetch.Concurrency,
		PoliteDelay:    cfg.Sources.Fetch.PoliteDelay,
		Locker:         locker,
		Logger:         a.logger.Named("orchestrator"),
		Metrics:        a.metrics,
	}), nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
