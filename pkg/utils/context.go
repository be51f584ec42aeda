package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
	UserIDKey    contextKey = "user_id"
	RoleKey      contextKey = "role"
)

const (
	RoleGuest   = "guest"
	RoleManager = "manager"
)

// Caller is the identity the upstream auth layer attached to a request.
type Caller struct {
	SessionID string
	UserID    *uuid.UUID
	Role      string
}

func (c Caller) IsManager() bool {
	return c.Role == RoleManager
}

func SetCallerContext(ctx context.Context, sessionID string, userID *uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, SessionIDKey, sessionID)
	if userID != nil {
		ctx = context.WithValue(ctx, UserIDKey, userID.String())
	}
	if role == "" {
		role = RoleGuest
	}
	ctx = context.WithValue(ctx, RoleKey, role)
	return ctx
}

func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok && sessionID != ""
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userIDStr, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// GetCallerFromContext collects everything the middleware stored.
func GetCallerFromContext(ctx context.Context) Caller {
	var caller Caller
	caller.SessionID, _ = GetSessionIDFromContext(ctx)
	if userID, ok := GetUserIDFromContext(ctx); ok {
		caller.UserID = &userID
	}
	caller.Role, _ = GetRoleFromContext(ctx)
	if caller.Role == "" {
		caller.Role = RoleGuest
	}
	return caller
}
