package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/skimmer/models"
)

const recordKeyPrefix = "skimmer:record:"

// RedisStore keeps each record as a JSON string that expires after ttl.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = models.DefaultRetention
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func recordKey(key models.CacheKey) string {
	return recordKeyPrefix + string(key.Depth) + ":" + key.Topic
}

func (s *RedisStore) Get(ctx context.Context, key models.CacheKey, notBefore time.Time) (models.CacheRecord, bool, error) {
	raw, err := s.rdb.Get(ctx, recordKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.CacheRecord{}, false, nil
	}
	if err != nil {
		return models.CacheRecord{}, false, fmt.Errorf("get search record: %w", err)
	}
	var rec models.CacheRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.CacheRecord{}, false, fmt.Errorf("decode search record: %w", err)
	}
	if !rec.CreatedAt.After(notBefore) {
		return models.CacheRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *RedisStore) Upsert(ctx context.Context, rec models.CacheRecord) (models.CacheRecord, error) {
	rec, err := prepare(rec)
	if err != nil {
		return models.CacheRecord{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return models.CacheRecord{}, err
	}
	if err := s.rdb.Set(ctx, recordKey(rec.Key()), b, s.ttl).Err(); err != nil {
		return models.CacheRecord{}, fmt.Errorf("upsert search record: %w", err)
	}
	return rec, nil
}

// DeleteOlderThan scans the record prefix. Keys also expire on their own, so
// this only matters when the configured retention shrinks.
func (s *RedisStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, fmt.Errorf("cutoff must be provided")
	}
	var deleted int64
	iter := s.rdb.Scan(ctx, 0, recordKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		raw, err := s.rdb.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		var rec models.CacheRecord
		if err := json.Unmarshal(raw, &rec); err == nil && !rec.CreatedAt.Before(cutoff) {
			continue
		}
		n, err := s.rdb.Del(ctx, k).Result()
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
