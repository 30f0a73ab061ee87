package database

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("blob key must not be empty")
)

// BlobRepository stores opaque JSON documents under string keys. It is the
// persistence boundary of the favourites index: one key, one document.
type BlobRepository interface {
	// GetBlob returns the document stored under key, or ErrNotFound.
	GetBlob(ctx context.Context, key string) ([]byte, error)
	// PutBlob replaces the document stored under key.
	PutBlob(ctx context.Context, key string, data []byte) error
	// DeleteBlob removes key. Deleting a missing key returns ErrNotFound.
	DeleteBlob(ctx context.Context, key string) error
	// Ping checks that the backend is reachable. Intended for readiness probes.
	Ping(ctx context.Context) error
}

func checkKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
