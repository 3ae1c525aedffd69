package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campuscode/lmsauthd/internal/auth/domain"
	"github.com/campuscode/lmsauthd/internal/auth/service"
	"github.com/campuscode/lmsauthd/internal/auth/store"
	"github.com/campuscode/lmsauthd/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newLoginHandler(t *testing.T) *LoginHandler {
	t.Helper()

	st, err := sqlite.NewStore(":memory:", store.TableConfig{Prefix: "mdl_", AuthMethod: "manual"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = st.SeedUser(context.Background(), sqlite.SeedUserParams{
		Username:     "alice",
		PasswordHash: string(hash),
		FirstName:    "Alice",
		LastName:     "Anderson",
		Email:        "alice@example.edu",
		AuthMethod:   "manual",
		Confirmed:    true,
	})
	require.NoError(t, err)

	return &LoginHandler{Authenticator: &service.Authenticator{
		Store: st,
		Admin: service.AdminIdentity{Username: "root", Password: "super-secret", Email: "admin@example.edu"},
	}}
}

func doLogin(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	h := newLoginHandler(t)

	t.Run("valid credentials return the identity payload", func(t *testing.T) {
		rec := doLogin(t, h, `{"username":"alice","password":"secret"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var identity domain.Identity
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&identity))
		require.Equal(t, "alice", identity.Username)
		require.Equal(t, "alice@example.edu", identity.Email)
		require.False(t, identity.IsAdmin)
	})

	t.Run("static admin", func(t *testing.T) {
		rec := doLogin(t, h, `{"username":"root","password":"super-secret"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var identity domain.Identity
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&identity))
		require.True(t, identity.IsAdmin)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doLogin(t, h, `{"username":"alice","password":"nope"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		requireErrorCode(t, rec, "invalid_credentials")
	})

	t.Run("unknown user has the same shape as wrong password", func(t *testing.T) {
		rec := doLogin(t, h, `{"username":"mallory","password":"secret"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		requireErrorCode(t, rec, "invalid_credentials")
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := doLogin(t, h, `{"username":"","password":""}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		requireErrorCode(t, rec, "missing_credentials")
	})

	t.Run("overlong username", func(t *testing.T) {
		rec := doLogin(t, h, `{"username":"`+strings.Repeat("a", 101)+`","password":"x"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		requireErrorCode(t, rec, "invalid_username")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doLogin(t, h, `{"username":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		requireErrorCode(t, rec, "missing_credentials")
	})
}

// failingStore simulates an unreachable LMS database.
type failingStore struct{}

func (failingStore) Users() store.Users             { return failingUsers{} }
func (failingStore) Ping(ctx context.Context) error { return store.ErrUnavailable }
func (failingStore) Close() error                   { return nil }

type failingUsers struct{}

func (failingUsers) FindEligible(ctx context.Context, username string) (domain.User, error) {
	return domain.User{}, store.ErrUnavailable
}
func (failingUsers) TouchLastLogin(ctx context.Context, id int64) error { return store.ErrUnavailable }

func TestLoginHandlerStoreDown(t *testing.T) {
	t.Parallel()

	h := &LoginHandler{Authenticator: &service.Authenticator{Store: failingStore{}}}

	rec := doLogin(t, h, `{"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	requireErrorCode(t, rec, "service_unavailable")
}

func TestRouterRoutes(t *testing.T) {
	t.Parallel()

	handler := newLoginHandler(t)
	logger := discardLogger()

	router := NewRouter("test", handler.Authenticator.Store, logger)
	router.Authenticator = handler.Authenticator
	router.ApplyRoutes()

	t.Run("livez", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/livez", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readyz", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("login route registered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(`{"username":"alice","password":"secret"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, want, resp.Error)
}
