package database

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory BlobRepository. It backs the "memory"
// storage backend and unit tests. ReadErr and WriteErr, when set, are
// returned by every read or write so callers can exercise storage failures.
type MemoryRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	ReadErr  error
	WriteErr error
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		blobs: make(map[string][]byte),
	}
}

func (r *MemoryRepository) GetBlob(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.ReadErr != nil {
		return nil, r.ReadErr
	}
	data, exists := r.blobs[key]
	if !exists {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (r *MemoryRepository) PutBlob(_ context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.WriteErr != nil {
		return r.WriteErr
	}
	r.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (r *MemoryRepository) DeleteBlob(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.WriteErr != nil {
		return r.WriteErr
	}
	if _, exists := r.blobs[key]; !exists {
		return ErrNotFound
	}
	delete(r.blobs, key)
	return nil
}

func (r *MemoryRepository) Ping(_ context.Context) error {
	return nil
}

// SetFailures changes the injected read and write errors under the lock.
func (r *MemoryRepository) SetFailures(readErr, writeErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ReadErr = readErr
	r.WriteErr = writeErr
}
