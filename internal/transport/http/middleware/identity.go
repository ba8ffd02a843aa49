package middleware

import (
	"context"
	"net/http"

	"guestbook/internal/identity"
	"guestbook/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the caller's session
	SessionKey contextKey = "session"
)

// Identity loads the caller's display name from the identity store and puts
// a model.Session into the request context. It never rejects a request;
// anonymous callers get an empty identity.
func Identity(store identity.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := model.Session{Identity: store.Load(r)}
			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the session from the request context.
// Returns an anonymous session if none was set.
func SessionFromContext(ctx context.Context) model.Session {
	session, _ := ctx.Value(SessionKey).(model.Session)
	return session
}
