package store

import (
	"context"
	"errors"

	"github.com/campuscode/lmsauthd/internal/auth/domain"
)

var (
	// ErrNotFound reports that no eligible account exists for a username.
	// It is returned uniformly whether the account is absent, deleted,
	// suspended, unconfirmed or uses a non-manual auth method; callers must
	// not branch observable behaviour on the reason.
	ErrNotFound = errors.New("store: not found")

	// ErrUnavailable reports an infrastructure failure (connection refused,
	// pool exhausted, query error unrelated to data). Drivers wrap the
	// underlying error so callers can distinguish "no such account" from
	// "the store is down".
	ErrUnavailable = errors.New("store: unavailable")
)

// TableConfig locates the LMS user table and names the auth method eligible
// rows must use. Both come from deployment configuration; the LMS schema
// prefixes every table with a site-specific string.
type TableConfig struct {
	Prefix     string // table name prefix, e.g. "mdl_"
	AuthMethod string // eligible auth method, e.g. "manual"
}

// UserTable returns the fully prefixed user table name.
func (c TableConfig) UserTable() string { return c.Prefix + "user" }

// Store is the root data access interface over the external LMS database.
// Concrete drivers (postgres for production, sqlite for development and
// tests) implement it. The service layer only ever sees this interface so
// tests can substitute a fake.
type Store interface {
	Users() Users

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Close releases the underlying pool or handle.
	Close() error
}

// Users reads the LMS user table. The table is owned by the LMS; this
// service never mutates it beyond the last-login timestamp.
type Users interface {
	// FindEligible returns the single account allowed to authenticate under
	// the given username: exact case-sensitive match, not deleted, not
	// suspended, confirmed, manual auth. The predicate lives in the query
	// itself so a row deleted since the caller last looked is silently
	// excluded. Returns ErrNotFound for any ineligibility.
	FindEligible(ctx context.Context, username string) (domain.User, error)

	// TouchLastLogin records the time of a successful authentication.
	// Callers treat it as best effort; a failure must not fail the login.
	TouchLastLogin(ctx context.Context, id int64) error
}
