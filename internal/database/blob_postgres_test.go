package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newTestPostgresRepo(t *testing.T) (*PostgresBlobRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresBlobRepository(db), mock
}

// --- GetBlob ---

func TestPostgresGetBlob(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored value", func(t *testing.T) {
		repo, mock := newTestPostgresRepo(t)
		mock.ExpectQuery("SELECT value FROM blobs WHERE key").
			WithArgs("favs").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"a@x.com":[5]}`))

		data, err := repo.GetBlob(ctx, "favs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"a@x.com":[5]}` {
			t.Errorf("unexpected data: %s", data)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("returns ErrNotFound for missing key", func(t *testing.T) {
		repo, mock := newTestPostgresRepo(t)
		mock.ExpectQuery("SELECT value FROM blobs WHERE key").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		_, err := repo.GetBlob(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("wraps query failure", func(t *testing.T) {
		repo, mock := newTestPostgresRepo(t)
		mock.ExpectQuery("SELECT value FROM blobs WHERE key").
			WillReturnError(fmt.Errorf("connection failed"))

		_, err := repo.GetBlob(ctx, "favs")
		if err == nil || errors.Is(err, ErrNotFound) {
			t.Fatalf("expected wrapped query error, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("rejects empty key without querying", func(t *testing.T) {
		repo, mock := newTestPostgresRepo(t)

		_, err := repo.GetBlob(ctx, "")
		if !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected ErrInvalidKey, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unexpected queries: %v", err)
		}
	})
}

// --- PutBlob ---

func TestPostgresPutBlob(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts value", func(t *testing.T) {
		repo, mock := newTestPostgresRepo(t)
		mock.ExpectExec("INSERT INTO blobs .+ ON CONFLICT").
			WithArgs("favs", `{}`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.PutBlob(ctx, "favs", []byte(`{}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("returns error on exec failure", func(t *testing.T) {
		repo, mock := newTestPostgresRepo(t)
		mock.ExpectExec("INSERT INTO blobs").
			WillReturnError(fmt.Errorf("disk full"))

		if err := repo.PutBlob(ctx, "favs", []byte(`{}`)); err == nil {
			t.Fatal("expected error, got nil")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

// --- DeleteBlob ---

func TestPostgresDeleteBlob(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing key", func(t *testing.T) {
		repo, mock := newTestPostgresRepo(t)
		mock.ExpectExec("DELETE FROM blobs WHERE key").
			WithArgs("favs").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := repo.DeleteBlob(ctx, "favs"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("returns ErrNotFound when no rows affected", func(t *testing.T) {
		repo, mock := newTestPostgresRepo(t)
		mock.ExpectExec("DELETE FROM blobs WHERE key").
			WithArgs("favs").
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := repo.DeleteBlob(ctx, "favs"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
