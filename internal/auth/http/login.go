package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campuscode/lmsauthd/internal/auth/service"
	"github.com/campuscode/lmsauthd/pkg/httpx"
)

const maxLoginBodyBytes = 4 << 10

// LoginHandler exposes the authenticator over POST /v1/login. The handler is
// deliberately thin: the authenticator never sees request or response
// objects, and nothing internal (driver errors, SQL) crosses back out.
type LoginHandler struct {
	Authenticator *service.Authenticator
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	body := http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: service.ErrMissingCredentials.Error()})
		return
	}

	identity, err := h.Authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteJSON(w, statusForAuthError(err), errorResponse{Error: err.Error()})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identity)
}

func statusForAuthError(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingCredentials), errors.Is(err, service.ErrInvalidUsername):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		// invalid_credentials covers unknown users, ineligible accounts and
		// wrong passwords alike.
		return http.StatusUnauthorized
	}
}
