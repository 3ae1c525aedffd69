package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campuscode/lmsauthd/internal/auth/domain"
	"github.com/campuscode/lmsauthd/internal/auth/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct {
	pool *pgxpool.Pool
	cfg  store.TableConfig
}

// The eligibility predicate is load-bearing: dropping any clause widens who
// may authenticate. Postgres text equality is case sensitive, matching the
// exact-match requirement on usernames.
func (r *usersRepo) FindEligible(ctx context.Context, username string) (domain.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, password_hash, firstname, lastname, email, auth_method, confirmed, deleted, suspended, last_login_at
		FROM %s
		WHERE username = $1 AND deleted = 0 AND suspended = 0 AND confirmed = 1 AND auth_method = $2
		LIMIT 1`, r.cfg.UserTable())

	var (
		u                             domain.User
		confirmed, deleted, suspended int16
		lastLogin                     int64
	)
	err := r.pool.QueryRow(ctx, query, username, r.cfg.AuthMethod).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Email,
		&u.AuthMethod, &confirmed, &deleted, &suspended, &lastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
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
	query := fmt.Sprintf(`UPDATE %s SET last_login_at = $1 WHERE id = $2`, r.cfg.UserTable())
	if _, err := r.pool.Exec(ctx, query, time.Now().Unix(), id); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}
