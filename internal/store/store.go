package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/skimmer/config"
	"github.com/mohammad-safakhou/skimmer/models"
)

var ErrUnsupportedDriver = errors.New("unsupported storage driver")

// RecordStore persists one summary per (topic, depth).
type RecordStore interface {
	// Get returns the record for key when it was created after notBefore.
	Get(ctx context.Context, key models.CacheKey, notBefore time.Time) (models.CacheRecord, bool, error)
	// Upsert replaces any existing record for the same key.
	Upsert(ctx context.Context, rec models.CacheRecord) (models.CacheRecord, error)
	// DeleteOlderThan removes records created before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Backend is a RecordStore that owns a connection.
type Backend interface {
	RecordStore
	Close() error
}

// Open connects the driver selected in cfg. retention is used as the key TTL
// by the redis driver.
func Open(ctx context.Context, cfg config.StorageConfig, retention time.Duration) (Backend, error) {
	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		db, err := OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return &Store{DB: db}, nil
	case "redis":
		rdb, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(rdb, retention), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}

// OpenPostgres opens and pings a lib/pq connection.
func OpenPostgres(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, pingTimeout(cfg.Timeout))
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// OpenRedis creates a client and verifies connectivity.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, pingTimeout(cfg.Timeout))
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func pingTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 5 * time.Second
	}
	return d
}

func prepare(rec models.CacheRecord) (models.CacheRecord, error) {
	if rec.Topic == "" {
		return rec, models.ErrEmptyTopic
	}
	if _, err := models.ParseDepth(string(rec.Depth)); err != nil {
		return rec, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}
