// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/navshell/internal/menu"
	"github.com/leapstack-labs/navshell/internal/testutil"
	"github.com/leapstack-labs/navshell/internal/ui/notifier"
	"github.com/leapstack-labs/navshell/internal/ui/session"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Registry     *session.Registry
	Menus        *menu.Source
	Reloads      *notifier.Notifier[struct{}]
	SessionStore *sessions.CookieStore
	Logger       *slog.Logger
}

// SetupTestFixture creates a fixture serving the sample menu. When
// menuYAML is empty testutil.SampleMenuYAML is used.
func SetupTestFixture(t *testing.T, menuYAML string) *TestFixture {
	t.Helper()

	if menuYAML == "" {
		menuYAML = testutil.SampleMenuYAML
	}
	m, err := menu.Parse([]byte(menuYAML))
	require.NoError(t, err)

	logger := testutil.NewTestLogger(t)
	reg := session.NewRegistry(session.Config{Logger: logger})
	reloads := notifier.NewPing()

	t.Cleanup(func() {
		reloads.Close()
		_ = reg.Close()
	})

	return &TestFixture{
		Registry:     reg,
		Menus:        menu.StaticSource(m),
		Reloads:      reloads,
		SessionStore: NewTestSessionStore(),
		Logger:       logger,
	}
}

// Session acquires the session entry for id for the duration of the test.
func (f *TestFixture) Session(t *testing.T, id string) *session.Entry {
	t.Helper()

	e, err := f.Registry.Acquire(id)
	require.NoError(t, err)
	t.Cleanup(func() { f.Registry.Release(id) })
	return e
}

// RequestWithSession attaches a session entry and its broker to a request.
func RequestWithSession(r *http.Request, e *session.Entry) *http.Request {
	return r.WithContext(session.WithEntry(r.Context(), e))
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// RequestWithTimeout wraps a request with a context timeout. The caller
// must call the returned cancel function.
func RequestWithTimeout(r *http.Request, timeout time.Duration) (*http.Request, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	return r.WithContext(ctx), cancel
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
