// Package kv is the key-value byte store underneath the persisted
// collections. Values are opaque bytes; every backend replaces a value in
// full on Set.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Store is a flat key-value byte store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists the keys starting with prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Driver identifies a backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverRedis    Driver = "redis"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Driver Driver `mapstructure:"driver"`
	// DSN is the sqlite file path or the postgres connection string.
	DSN string `mapstructure:"dsn"`

	RedisURL     string        `mapstructure:"redis_url" split_words:"true"`
	KeyPrefix    string        `mapstructure:"key_prefix" split_words:"true"`
	PoolSize     int           `mapstructure:"pool_size" split_words:"true"`
	MinIdleConns int           `mapstructure:"min_idle_conns" split_words:"true"`
	MaxRetries   int           `mapstructure:"max_retries" split_words:"true"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" split_words:"true"`
}

// Open returns the backend named by cfg.Driver. An empty driver means sqlite.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverRedis:
		return NewRedis(ctx, cfg)
	case DriverSQLite, "":
		return NewSQL(ctx, DriverSQLite, cfg.DSN)
	case DriverPostgres:
		return NewSQL(ctx, DriverPostgres, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown kv driver %q", cfg.Driver)
	}
}
