package httpx

import (
	"context"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session from context and a boolean indicating presence.
func GetSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// UserIDFromContext returns the user ID from the context session, or "" for
// anonymous requests. Used by handlers that track per-user engagement.
func UserIDFromContext(ctx context.Context) string {
	if session, ok := GetSessionFromContext(ctx); ok {
		return session.UserID
	}
	return ""
}
