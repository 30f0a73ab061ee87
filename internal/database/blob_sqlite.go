package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteBlobRepository implements BlobRepository using SQLite.
type SQLiteBlobRepository struct {
	db *sql.DB
}

// NewSQLiteBlobRepository creates a SQLiteBlobRepository backed by a database
// opened with OpenSQLite.
func NewSQLiteBlobRepository(db *sql.DB) *SQLiteBlobRepository {
	return &SQLiteBlobRepository{db: db}
}

func (r *SQLiteBlobRepository) GetBlob(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying blob: %w", err)
	}
	return []byte(value), nil
}

func (r *SQLiteBlobRepository) PutBlob(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	const query = `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query, key, string(data), time.Now().Unix()); err != nil {
		return fmt.Errorf("upserting blob: %w", err)
	}
	return nil
}

func (r *SQLiteBlobRepository) DeleteBlob(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteBlobRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
