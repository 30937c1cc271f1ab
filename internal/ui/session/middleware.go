package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/navshell/internal/sidebar"
)

// CookieName is the name of the session cookie.
const CookieName = "navshell"

const idKey = "sid"

type entryKey struct{}

// FromContext returns the session entry attached by Middleware.
func FromContext(ctx context.Context) (*Entry, bool) {
	e, ok := ctx.Value(entryKey{}).(*Entry)
	return e, ok && e != nil
}

// WithEntry attaches e and its broker to ctx.
func WithEntry(ctx context.Context, e *Entry) context.Context {
	ctx = context.WithValue(ctx, entryKey{}, e)
	return sidebar.Provide(ctx, e.Broker)
}

// Middleware resolves the browser session, assigning a new id on first
// visit, and provides its sidebar broker to downstream handlers for the
// lifetime of the request.
func Middleware(store sessions.Store, reg *Registry, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Get(r, CookieName)
			if err != nil {
				// Unreadable cookie (e.g. rotated secret): start a fresh session.
				logger.Debug("discarding session cookie", "error", err)
			}

			id, _ := sess.Values[idKey].(string)
			if id == "" {
				id = uuid.NewString()
				sess.Values[idKey] = id
				if err := sess.Save(r, w); err != nil {
					http.Error(w, "failed to save session", http.StatusInternalServerError)
					return
				}
			}

			entry, err := reg.Acquire(id)
			if errors.Is(err, ErrClosed) {
				http.Error(w, "server shutting down", http.StatusServiceUnavailable)
				return
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			defer reg.Release(id)

			next.ServeHTTP(w, r.WithContext(WithEntry(r.Context(), entry)))
		})
	}
}
