// Package sqlite backs the store interfaces with an embedded database that
// mimics the LMS user table. It exists for local development and the test
// suite; production deployments point the postgres driver at the real LMS.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campuscode/lmsauthd/internal/auth/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	cfg store.TableConfig
}

func NewStore(dsn string, cfg store.TableConfig) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, cfg: cfg}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Users() store.Users {
	return &usersRepo{db: s.db, cfg: s.cfg}
}

// SeedUser inserts a fixture row and returns its generated id. Only the
// development driver offers this; the production table belongs to the LMS.
func (s *Store) SeedUser(ctx context.Context, u SeedUserParams) (int64, error) {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (username, password_hash, firstname, lastname, email, auth_method, confirmed, deleted, suspended, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.cfg.UserTable()),
		u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Email,
		u.AuthMethod, boolToInt(u.Confirmed), boolToInt(u.Deleted), boolToInt(u.Suspended), u.LastLoginAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SeedUserParams mirrors the LMS user table columns for fixtures.
type SeedUserParams struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	AuthMethod   string
	Confirmed    bool
	Deleted      bool
	Suspended    bool
	LastLoginAt  int64 // epoch seconds
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
