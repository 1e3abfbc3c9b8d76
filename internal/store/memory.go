package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/skimmer/models"
)

// MemoryStore is a process-local RecordStore.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[models.CacheKey]models.CacheRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[models.CacheKey]models.CacheRecord)}
}

func (m *MemoryStore) Get(_ context.Context, key models.CacheKey, notBefore time.Time) (models.CacheRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key]
	if !ok || !rec.CreatedAt.After(notBefore) {
		return models.CacheRecord{}, false, nil
	}
	return rec, true, nil
}

func (m *MemoryStore) Upsert(_ context.Context, rec models.CacheRecord) (models.CacheRecord, error) {
	rec, err := prepare(rec)
	if err != nil {
		return models.CacheRecord{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.records[rec.Key()]; ok {
		rec.ID = prev.ID
	} else if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.records[rec.Key()] = rec
	return rec, nil
}

func (m *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, fmt.Errorf("cutoff must be provided")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, rec := range m.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryStore) Close() error { return nil }
