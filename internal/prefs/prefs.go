// Package prefs stores small UI preferences (currently the last active tab)
// in a string key-value store. Several backends are available; the config
// file picks one.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/kingrea/wasteless/internal/config"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("prefs: key not found")

// Store is a string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the backend selected in cfg.
func Open(ctx context.Context, cfg config.PrefsConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFile, "":
		var fs *FileStore
		fs, err = NewFileStore(cfg.Path)
		store = fs
	case config.BackendSQLite:
		var db *SQLiteStore
		db, err = OpenSQLite(ctx, cfg.Path)
		store = db
	case config.BackendRedis:
		var rs *RedisStore
		rs, err = OpenRedis(ctx, RedisOptions{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		store = rs
	default:
		return nil, fmt.Errorf("prefs: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
