package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskvault/internal/common"
	"github.com/dmitrijs2005/taskvault/internal/server/auth"
	"github.com/dmitrijs2005/taskvault/internal/server/models"
	"github.com/google/uuid"
)

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// currentUser returns the authenticated user placed into the context by
// withAuth. The second value is false on routes that skipped the middleware.
func currentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(currentUserKey).(*models.User)
	return u, ok
}

// statusRecorder captures the status code written by a handler so the
// request log line can include it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

// withAuth verifies the bearer token, resolves its subject to a stored user,
// and places the user into the request context. Every failure mode (missing
// header, bad signature, expired token, deleted subject) produces the same
// challenge response.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeChallenge(w)
			return
		}

		subject, err := auth.GetSubjectFromToken(token, s.jwtSecret)
		if err != nil {
			writeChallenge(w)
			return
		}

		user, err := s.users.GetByEmail(r.Context(), subject)
		if err != nil {
			writeChallenge(w)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withAdmin gates administrative endpoints behind the shared admin token,
// compared in constant time.
func (s *Server) withAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := []byte(r.Header.Get(common.AdminTokenHeaderName))
		if subtle.ConstantTimeCompare(provided, s.adminToken) != 1 {
			writeError(w, http.StatusUnauthorized, "Invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
