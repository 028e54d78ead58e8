package middleware

import (
	"context"
	"net/http"

	"github.com/agriguru/agriguru-backend/pkg/auth"
	"github.com/agriguru/agriguru-backend/pkg/logger"
	"github.com/agriguru/agriguru-backend/pkg/response"
)

type sessionContextKey string

const sessionUserKey sessionContextKey = "session_user"

// RequireSession authenticates a request against the shared session
// store: the JWT must parse and the session its sid claim names must
// still exist. A logged-out token is rejected here no matter how long
// its expiry has left.
func RequireSession(secret string, sessions auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				response.Unauthorized(w, "Authentication required")
				return
			}

			claims, err := auth.Parse(token, secret)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			_, ok, err := sessions.Lookup(r.Context(), claims.SessionID)
			if err != nil {
				logger.ErrorContext(r.Context(), "session lookup failed", "error", err)
				response.StorageError(w, "Unable to verify session")
				return
			}
			if !ok {
				response.Unauthorized(w, "Session expired or revoked")
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, sessionUserKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionUserID returns the authenticated user id set by
// RequireSession, or zero outside it.
func SessionUserID(r *http.Request) int64 {
	if id, ok := r.Context().Value(sessionUserKey).(int64); ok {
		return id
	}
	return 0
}
