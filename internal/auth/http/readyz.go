package http

import (
	"net/http"
	"time"

	"github.com/campuscode/lmsauthd/internal/auth/store"
	"github.com/campuscode/lmsauthd/pkg/httpx"
)

// ReadyzHandler is the readiness probe. It pings the LMS store; a service
// that cannot reach the user table can only answer 503 to logins anyway.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &healthChecks{Database: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "unreachable"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, healthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
