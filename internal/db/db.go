// Package db provides the key-value cache that holds the local content
// override and admin sessions. SQLite backs a single local admin; PostgreSQL
// lets several admin processes share one cache.
package db

import (
	"context"
	"errors"
	"fmt"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv store is closed")

// KV is a string key-value store.
type KV interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and addresses a backend.
type Options struct {
	Driver string
	// DSN is a file path (or ":memory:") for SQLite and a connection URL for PostgreSQL.
	DSN string
}

// Open connects to the backend named by opts.Driver and makes sure its table exists.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		if opts.DSN == ":memory:" {
			return OpenMemory()
		}
		return OpenSQLite(opts.DSN)
	case DriverPostgres:
		return Connect(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", opts.Driver)
	}
}
