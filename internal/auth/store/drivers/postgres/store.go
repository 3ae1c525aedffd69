// Package postgres backs the store interfaces with the production LMS
// database via a pgx connection pool. The pool is the only shared resource
// between concurrent authentications; every call borrows one connection for
// one query and pgxpool guarantees release on every exit path.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/campuscode/lmsauthd/internal/auth/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
	cfg  store.TableConfig
}

// NewStore opens a pgx connection pool with conservative defaults and
// validates connectivity before returning.
func NewStore(ctx context.Context, dsn string, cfg store.TableConfig) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres: empty database dsn")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	// Reasonable defaults for a small service; the DSN can override them.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool, cfg: cfg}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the pool can still reach the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Users() store.Users {
	return &usersRepo{pool: s.pool, cfg: s.cfg}
}
