package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campuscode/lmsauthd/internal/auth/domain"
	"github.com/campuscode/lmsauthd/internal/auth/store"
)

type usersRepo struct {
	db  *sql.DB
	cfg store.TableConfig
}

// The eligibility predicate is load-bearing: dropping any clause widens who
// may authenticate. SQLite compares TEXT with BINARY collation, so the
// username match is case sensitive as required.
func (r *usersRepo) FindEligible(ctx context.Context, username string) (domain.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, password_hash, firstname, lastname, email, auth_method, confirmed, deleted, suspended, last_login_at
		FROM %s
		WHERE username = ? AND deleted = 0 AND suspended = 0 AND confirmed = 1 AND auth_method = ?
		LIMIT 1`, r.cfg.UserTable())

	var (
		u                             domain.User
		confirmed, deleted, suspended int
		lastLogin                     int64
	)
	err := r.db.QueryRowContext(ctx, query, username, r.cfg.AuthMethod).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Email,
		&u.AuthMethod, &confirmed, &deleted, &suspended, &lastLogin,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Confirmed = confirmed == 1
	u.Deleted = deleted == 1
	u.Suspended = suspended == 1
	if lastLogin > 0 {
		u.LastLoginAt = time.Unix(lastLogin, 0).UTC()
	}
	return u, nil
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET last_login_at = ? WHERE id = ?`, r.cfg.UserTable())
	if _, err := r.db.ExecContext(ctx, query, time.Now().Unix(), id); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}
