package badger

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"
)

// Config holds the on-disk location of the store.
type Config struct {
	Path string
}

// DB wraps an embedded badgerhold store.
type DB struct {
	Store *badgerhold.Store
}

// NewDB opens (creating if needed) the store at cfg.Path.
func NewDB(cfg Config) (*DB, error) {
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = cfg.Path
	options.ValueDir = cfg.Path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &DB{Store: store}, nil
}

func (d *DB) Close() error {
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
