package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileBlobRepository implements BlobRepository with one JSON file per key
// inside a directory. Writes go through a temp file and a rename so a reader
// never observes a half-written document.
type FileBlobRepository struct {
	dir string
}

// NewFileBlobRepository creates the directory if needed and returns a repository rooted at it.
func NewFileBlobRepository(dir string) (*FileBlobRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &FileBlobRepository{dir: dir}, nil
}

func (r *FileBlobRepository) path(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(r.dir, key+".json"), nil
}

func (r *FileBlobRepository) GetBlob(_ context.Context, key string) ([]byte, error) {
	p, err := r.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob file: %w", err)
	}
	return data, nil
}

func (r *FileBlobRepository) PutBlob(_ context.Context, key string, data []byte) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replacing blob file: %w", err)
	}
	return nil
}

func (r *FileBlobRepository) DeleteBlob(_ context.Context, key string) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("removing blob file: %w", err)
	}
	return nil
}

// Ping verifies the directory still exists and is a directory.
func (r *FileBlobRepository) Ping(_ context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("stat blob directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("blob path %s is not a directory", r.dir)
	}
	return nil
}
