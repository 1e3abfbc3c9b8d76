package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/skimmer/models"
)

// Store is the Postgres RecordStore.
type Store struct {
	DB *sql.DB
}

func (s *Store) Get(ctx context.Context, key models.CacheKey, notBefore time.Time) (models.CacheRecord, bool, error) {
	var (
		rec   models.CacheRecord
		depth string
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, topic, depth, summary, created_at FROM search_records WHERE topic=$1 AND depth=$2 AND created_at > $3`,
		key.Topic, string(key.Depth), notBefore,
	).Scan(&rec.ID, &rec.Topic, &depth, &rec.Summary, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CacheRecord{}, false, nil
	}
	if err != nil {
		return models.CacheRecord{}, false, fmt.Errorf("get search record: %w", err)
	}
	rec.Depth = models.Depth(depth)
	return rec, true, nil
}

// Upsert keeps the row id of an existing (topic, depth) and overwrites the rest.
func (s *Store) Upsert(ctx context.Context, rec models.CacheRecord) (models.CacheRecord, error) {
	rec, err := prepare(rec)
	if err != nil {
		return models.CacheRecord{}, err
	}
	var (
		out   models.CacheRecord
		depth string
	)
	err = s.DB.QueryRowContext(ctx, `
INSERT INTO search_records (id, topic, depth, summary, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (topic, depth) DO UPDATE SET summary=EXCLUDED.summary, created_at=EXCLUDED.created_at
RETURNING id, topic, depth, summary, created_at`,
		uuid.NewString(), rec.Topic, string(rec.Depth), rec.Summary, rec.CreatedAt,
	).Scan(&out.ID, &out.Topic, &depth, &out.Summary, &out.CreatedAt)
	if err != nil {
		return models.CacheRecord{}, fmt.Errorf("upsert search record: %w", err)
	}
	out.Depth = models.Depth(depth)
	return out, nil
}

func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, fmt.Errorf("cutoff must be provided")
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM search_records WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) Close() error { return s.DB.Close() }
