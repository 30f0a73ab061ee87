package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// StorageConfig selects and configures a BlobRepository backend.
type StorageConfig struct {
	Backend string
	// Path is the directory for the file backend and the database file for sqlite.
	Path        string
	PostgresDSN string
}

// Open builds the BlobRepository selected by cfg. The returned close function
// releases any underlying connection and is never nil.
func Open(cfg StorageConfig) (BlobRepository, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(cfg.Backend) {
	case BackendMemory, "":
		return NewMemoryRepository(), noop, nil

	case BackendFile:
		repo, err := NewFileBlobRepository(cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	case BackendSQLite:
		path := cfg.Path
		if path == "" {
			return nil, noop, fmt.Errorf("sqlite backend requires a database path")
		}
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "favourites.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, noop, fmt.Errorf("creating sqlite directory: %w", err)
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return NewSQLiteBlobRepository(db), db.Close, nil

	case BackendPostgres:
		db, err := Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return NewPostgresBlobRepository(db), db.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
