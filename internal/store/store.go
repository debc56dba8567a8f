// Package store provides the durable key/value backends the ledger persists
// to: a SQLite file, a Redis server, or process memory.
package store

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Backend names a storage implementation.
type Backend string

// Supported backends.
const (
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// KV is the contract shared by every backend.
type KV interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
	SaveAll(ctx context.Context, values map[string]string) error
	Close() error
}

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Options selects and configures a backend.
type Options struct {
	Backend    Backend
	SQLitePath string
	Redis      RedisOptions
}

// Open returns the backend described by opts.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		return OpenSQLite(opts.SQLitePath)
	case BackendRedis:
		return DialRedis(ctx, opts.Redis)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, errors.WithStack(fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend))
	}
}
