package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-ask/internal/config"
	"github.com/Veraticus/spice-ask/internal/storage"
)

// initStorage opens the configured database and brings its schema up to
// date. The caller closes it.
func initStorage(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
