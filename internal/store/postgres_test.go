package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/mohammad-safakhou/skimmer/models"
)

func TestStoreGetHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	created := time.Now().Add(-time.Hour).UTC()
	notBefore := time.Now().Add(-96 * time.Hour)
	key := models.CacheKey{Topic: "Quantum Computing", Depth: models.DepthLess}

	mock.ExpectQuery(`SELECT id, topic, depth, summary, created_at FROM search_records WHERE topic=\$1 AND depth=\$2 AND created_at > \$3`).
		WithArgs("Quantum Computing", "less", notBefore).
		WillReturnRows(sqlmock.NewRows([]string{"id", "topic", "depth", "summary", "created_at"}).
			AddRow("6c1f6f1e-4a55-4b88-9b8b-6f4f1bb3f1a2", "Quantum Computing", "less", "# QC", created))

	rec, ok, err := st.Get(context.Background(), key, notBefore)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !ok || rec.Summary != "# QC" || rec.Depth != models.DepthLess || !rec.CreatedAt.Equal(created) {
		t.Fatalf("unexpected record %+v (ok=%v)", rec, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreGetMiss(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectQuery(`SELECT id, topic, depth, summary, created_at FROM search_records`).
		WillReturnError(sql.ErrNoRows)

	_, ok, err := st.Get(context.Background(), models.CacheKey{Topic: "x", Depth: models.DepthHigh}, time.Now())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}

func TestStoreUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO search_records \(id, topic, depth, summary, created_at\)`).
		WithArgs(sqlmock.AnyArg(), "Go", "medium", "# Go", created).
		WillReturnRows(sqlmock.NewRows([]string{"id", "topic", "depth", "summary", "created_at"}).
			AddRow("a5d0f0f8-0f4b-4d57-8a7e-1de2f1c7b001", "Go", "medium", "# Go", created))

	rec, err := st.Upsert(context.Background(), models.CacheRecord{Topic: "Go", Depth: models.DepthMedium, Summary: "# Go", CreatedAt: created})
	if err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if rec.ID == "" || rec.Depth != models.DepthMedium {
		t.Fatalf("unexpected record %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreUpsertRejectsInvalidDepth(t *testing.T) {
	st := &Store{}
	if _, err := st.Upsert(context.Background(), models.CacheRecord{Topic: "Go", Depth: "deep"}); err == nil {
		t.Fatal("expected error for invalid depth")
	}
}

func TestStoreDeleteOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	cutoff := time.Now().Add(-96 * time.Hour)

	mock.ExpectExec(`DELETE FROM search_records WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := st.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("DeleteOlderThan returned error: %v", err)
	}
	if deleted != 4 {
		t.Fatalf("expected 4 records deleted, got %d", deleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteOlderThanWithZeroCutoff(t *testing.T) {
	stores := map[string]RecordStore{
		"postgres": &Store{},
		"memory":   NewMemoryStore(),
		"redis":    &RedisStore{},
	}
	for name, st := range stores {
		if _, err := st.DeleteOlderThan(context.Background(), time.Time{}); err == nil {
			t.Fatalf("%s: expected error for zero cutoff", name)
		}
	}
}
