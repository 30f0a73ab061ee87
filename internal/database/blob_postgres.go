package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresBlobRepository implements BlobRepository using PostgreSQL.
type PostgresBlobRepository struct {
	db *sql.DB
}

// NewPostgresBlobRepository creates a PostgresBlobRepository backed by the given *sql.DB.
func NewPostgresBlobRepository(db *sql.DB) *PostgresBlobRepository {
	return &PostgresBlobRepository{db: db}
}

func (r *PostgresBlobRepository) GetBlob(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	const query = `SELECT value FROM blobs WHERE key = $1`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying blob: %w", err)
	}
	return []byte(value), nil
}

func (r *PostgresBlobRepository) PutBlob(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	const query = `
		INSERT INTO blobs (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, key, string(data)); err != nil {
		return fmt.Errorf("upserting blob: %w", err)
	}
	return nil
}

func (r *PostgresBlobRepository) DeleteBlob(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	const query = `DELETE FROM blobs WHERE key = $1`

	result, err := r.db.ExecContext(ctx, query, key)
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

func (r *PostgresBlobRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
