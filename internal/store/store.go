// Package store keeps the set of claimed emails and usernames that the
// availability service answers from.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iiroan/formwatch/internal/validate"
)

// ErrUnknownBackend is returned by Open for unsupported backends.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store records which values are claimed per field kind.
type Store interface {
	Taken(ctx context.Context, kind validate.Kind, value string) (bool, error)
	Claim(ctx context.Context, kind validate.Kind, value string) error
	Release(ctx context.Context, kind validate.Kind, value string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SQLDriver string
	SQLDSN    string

	// Seed values are claimed right after the store opens.
	Seed map[validate.Kind][]string
}

// Open connects to the backend named in opts and claims the seed values.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "memory":
		s = NewMemory()
	case "redis":
		s, err = NewRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case "sql", "sqlite", "postgres":
		driver := opts.SQLDriver
		if driver == "" {
			driver = "sqlite3"
		}
		s, err = NewSQL(ctx, driver, opts.SQLDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := Seed(ctx, s, opts.Seed); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Seed claims every listed value.
func Seed(ctx context.Context, s Store, values map[validate.Kind][]string) error {
	for kind, list := range values {
		for _, v := range list {
			if err := s.Claim(ctx, kind, v); err != nil {
				return fmt.Errorf("seeding %s %q: %w", kind, v, err)
			}
		}
	}
	return nil
}
