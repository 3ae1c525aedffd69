package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/campuscode/lmsauthd/internal/auth/domain"
	"github.com/campuscode/lmsauthd/internal/auth/store"
	"github.com/campuscode/lmsauthd/pkg/legacyhash"
	"github.com/campuscode/lmsauthd/pkg/slogx"
)

// Reason codes surfaced to the HTTP layer. "invalid_credentials" deliberately
// covers both "no such account" and "wrong password" so responses cannot be
// used to enumerate usernames.
var (
	ErrMissingCredentials = errors.New("missing_credentials")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// MaxUsernameLength bounds usernames after trimming surrounding whitespace.
const MaxUsernameLength = 100

// AdminIdentity is the single statically configured privileged account. It
// is matched by plain equality against configuration, never against the LMS
// store, so it keeps working when the store is unreachable.
type AdminIdentity struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

// Authenticator resolves a username/password pair against the LMS user
// store. It is stateless between calls; the store's connection pool is the
// only shared resource.
type Authenticator struct {
	Store store.Store
	Admin AdminIdentity
}

// Authenticate is the sole entry point the HTTP layer calls. Single pass, no
// retries, terminal on the first decision:
//
//	validate input -> static admin -> fetch account -> verify password
//
// On success the last-login timestamp is updated best effort; its failure is
// logged and never surfaces to the caller. Plaintext passwords are never
// logged at any point.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (domain.Identity, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Identity{}, ErrMissingCredentials
	}
	if len(username) > MaxUsernameLength {
		return domain.Identity{}, ErrInvalidUsername
	}

	if a.matchesAdmin(username, password) {
		l.Info("static admin authenticated", slog.String("username", username))
		return domain.Identity{
			Username:  a.Admin.Username,
			FirstName: a.Admin.FirstName,
			LastName:  a.Admin.LastName,
			Email:     a.Admin.Email,
			IsAdmin:   true,
		}, nil
	}

	user, err := a.Store.Users().FindEligible(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Absent and ineligible accounts are indistinguishable from a
			// wrong password externally; the distinction stays in this log.
			l.Info("login rejected, no eligible account", slog.String("username", username))
			return domain.Identity{}, ErrInvalidCredentials
		}
		l.Error("user store unavailable", slog.String("err", err.Error()))
		return domain.Identity{}, ErrServiceUnavailable
	}

	if enc := legacyhash.Classify(user.PasswordHash); enc == legacyhash.EncodingUnknown {
		l.Warn("unrecognised password hash encoding",
			slog.Int64("user_id", user.ID),
			slog.String("hash_prefix", legacyhash.Prefix(user.PasswordHash)),
		)
	}

	if !legacyhash.Verify(password, user.PasswordHash) {
		l.Info("login rejected, password mismatch", slog.Int64("user_id", user.ID))
		return domain.Identity{}, ErrInvalidCredentials
	}

	if err := a.Store.Users().TouchLastLogin(ctx, user.ID); err != nil {
		l.Warn("last-login update failed", slog.Int64("user_id", user.ID), slog.String("err", err.Error()))
	}

	return domain.Identity{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil
}

// matchesAdmin compares both fields in constant time. An unset admin
// username disables the short circuit entirely.
func (a *Authenticator) matchesAdmin(username, password string) bool {
	if a.Admin.Username == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.Admin.Password)) == 1
	return userOK && passOK
}
