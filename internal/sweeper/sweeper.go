package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/skimmer/internal/metrics"
	"github.com/mohammad-safakhou/skimmer/internal/store"
)

// Sweeper deletes records that fell out of the retention window.
type Sweeper struct {
	Store     store.RecordStore
	Retention time.Duration
	Expr      *cronexpr.Expression
	Logger    *zap.Logger
	Metrics   *metrics.Recorder

	now      func() time.Time
	tick     time.Duration
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// New parses spec as a cron expression ("@hourly", "0 3 * * *", ...).
func New(st store.RecordStore, retention time.Duration, spec string, logger *zap.Logger, m *metrics.Recorder) (*Sweeper, error) {
	expr, err := cronexpr.Parse(spec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		Store:     st,
		Retention: retention,
		Expr:      expr,
		Logger:    logger,
		Metrics:   m,
		now:       time.Now,
		tick:      time.Minute,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// RunOnce deletes everything created before now minus retention.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.Retention)
	n, err := s.Store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.Logger.Error("sweep failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return n, err
	}
	s.Metrics.ObserveSwept(n)
	s.Logger.Info("sweep finished", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	return n, nil
}

// Start checks the schedule on a ticker until Close.
func (s *Sweeper) Start() {
	s.started = true
	ticker := time.NewTicker(s.tick)
	next := s.Expr.Next(s.now())
	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.stop:
				ticker.Stop()
				return
			case <-ticker.C:
				now := s.now()
				if now.Before(next) {
					continue
				}
				_, _ = s.RunOnce(context.Background())
				next = s.Expr.Next(now)
			}
		}
	}()
}

// Close stops the loop and waits for it to exit. It is safe to call more
// than once.
func (s *Sweeper) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.started {
		<-s.done
	}
}
