package middleware

import (
	"net/http"
	"strings"

	"capsule-hotel/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderSessionID = "X-Session-ID"
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
)

// Identity copies the caller identity set by the upstream auth gateway into
// the request context. Authentication itself happens before this service.
func Identity(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(HeaderSessionID))

			var userID *uuid.UUID
			if raw := r.Header.Get(HeaderUserID); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					logger.Warn("Invalid user id header", zap.String("user_id", raw))
					utils.ResponseBadRequest(w, "Invalid "+HeaderUserID+" header", nil)
					return
				}
				userID = &id
			}

			role := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole)))
			switch role {
			case "", utils.RoleGuest, utils.RoleManager:
			default:
				utils.ResponseBadRequest(w, "Invalid "+HeaderUserRole+" header", nil)
				return
			}

			ctx := utils.SetCallerContext(r.Context(), sessionID, userID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a session id.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetSessionIDFromContext(r.Context()); !ok {
			utils.ResponseUnauthorized(w, HeaderSessionID+" header is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Manager lets only the manager role through.
func Manager(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller := utils.GetCallerFromContext(r.Context()); !caller.IsManager() {
				logger.Warn("Manager check: access denied",
					zap.String("session_id", caller.SessionID),
					zap.String("path", r.URL.Path),
				)
				utils.ResponseForbidden(w, "Manager access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
