package main

import (
	"context"
	"fmt"

	"github.com/jonathan/portfolio-admin/internal/db"
	"github.com/jonathan/portfolio-admin/internal/publish"
	"github.com/jonathan/portfolio-admin/internal/store"
)

// openKV opens the configured cache.
func openKV(ctx context.Context) (db.KV, error) {
	kv, err := db.Open(ctx, db.Options{Driver: cfg.CacheDriver, DSN: cfg.CacheDSN})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return kv, nil
}

// newStore builds a store over kv using the configured default document and
// publisher.
func newStore(kv db.KV) *store.Store {
	return store.New(kv, store.FileDefault(cfg.ContentPath),
		store.WithPublisher(publish.NewClient(cfg.PublishURL, cfg.PublishTimeoutDuration())),
		store.WithLogger(logger),
	)
}

// openStore opens the cache and loads the current document: the saved
// override when there is a valid one, otherwise the default. The returned
// close function closes the cache.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	kv, err := openKV(ctx)
	if err != nil {
		return nil, nil, err
	}
	st := newStore(kv)
	if _, err := st.LoadCurrent(ctx); err != nil {
		_ = kv.Close()
		return nil, nil, err
	}
	return st, func() { _ = kv.Close() }, nil
}
