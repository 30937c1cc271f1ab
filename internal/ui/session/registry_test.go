package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/navshell/internal/sidebar"
	"github.com/leapstack-labs/navshell/internal/testutil"
)

func newTestRegistry(t *testing.T) (*Registry, *time.Time) {
	t.Helper()
	reg := NewRegistry(Config{TTL: time.Minute, Logger: testutil.NewTestLogger(t)})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }
	t.Cleanup(func() { _ = reg.Close() })
	return reg, &now
}

func TestRegistry_AcquireMountsOnce(t *testing.T) {
	reg, _ := newTestRegistry(t)

	a, err := reg.Acquire("s1")
	require.NoError(t, err)
	b, err := reg.Acquire("s1")
	require.NoError(t, err)

	assert.Same(t, a.Broker, b.Broker)
	assert.True(t, a.Broker.Mounted())
	assert.Equal(t, 1, a.Window.Listeners())
	assert.Equal(t, DefaultInitialWidth, a.Window.Width())
	assert.False(t, a.Broker.State().IsMobile)
	assert.Equal(t, 1, reg.Len())

	other, err := reg.Acquire("s2")
	require.NoError(t, err)
	assert.NotSame(t, a.Broker, other.Broker)
}

func TestRegistry_WindowDrivesBroker(t *testing.T) {
	reg, _ := newTestRegistry(t)
	e, err := reg.Acquire("s1")
	require.NoError(t, err)

	e.Window.Resize(480)
	assert.True(t, e.Broker.State().IsMobile)
}

func TestRegistry_Reap(t *testing.T) {
	reg, now := newTestRegistry(t)

	held, err := reg.Acquire("held")
	require.NoError(t, err)
	idle, err := reg.Acquire("idle")
	require.NoError(t, err)
	reg.Release("idle")

	_, err = reg.Acquire("recent")
	require.NoError(t, err)

	*now = now.Add(2 * time.Minute)
	reg.Release("recent")

	removed := reg.Reap()
	assert.Equal(t, 1, removed)

	_, ok := reg.Lookup("idle")
	assert.False(t, ok, "idle session should be reaped")
	assert.False(t, idle.Broker.Mounted(), "reaped broker should be closed")
	assert.Equal(t, 0, idle.Window.Listeners(), "reaped broker must detach its resize listener")

	_, ok = reg.Lookup("held")
	assert.True(t, ok, "referenced session survives")
	assert.True(t, held.Broker.Mounted())

	_, ok = reg.Lookup("recent")
	assert.True(t, ok, "recently released session survives")
}

func TestRegistry_ReleaseUnknownIsNoop(t *testing.T) {
	reg, _ := newTestRegistry(t)
	reg.Release("nope")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_StartReaperAndClose(t *testing.T) {
	reg := NewRegistry(Config{})
	require.NoError(t, reg.StartReaper(time.Hour))

	e, err := reg.Acquire("s1")
	require.NoError(t, err)

	require.NoError(t, reg.Close())
	assert.Equal(t, 0, reg.Len())
	assert.False(t, e.Broker.Mounted())
}

func TestRegistry_AcquireAfterClose(t *testing.T) {
	reg := NewRegistry(Config{})
	require.NoError(t, reg.Close())

	e, err := reg.Acquire("late")
	require.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, e)
	assert.Equal(t, 0, reg.Len(), "no broker may be mounted after close")
}

func TestMiddleware_RejectsAfterClose(t *testing.T) {
	reg := NewRegistry(Config{})
	require.NoError(t, reg.Close())
	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))

	called := false
	handler := Middleware(store, reg, testutil.NewTestLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, called)
	assert.Equal(t, 0, reg.Len())
}

func TestMiddleware_AssignsSessionAndProvidesBroker(t *testing.T) {
	reg, _ := newTestRegistry(t)
	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))

	var seen *sidebar.Broker
	handler := Middleware(store, reg, testutil.NewTestLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := sidebar.Use(r.Context())
		require.NoError(t, err)
		seen = b

		e, ok := FromContext(r.Context())
		require.True(t, ok)
		assert.Same(t, e.Broker, b)
		w.WriteHeader(http.StatusNoContent)
	}))

	// First request: no cookie, new session
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	first := seen

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "session cookie should be set")
	assert.Equal(t, CookieName, cookies[0].Name)

	// Second request with the cookie reuses the same broker
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Same(t, first, seen)
	assert.Equal(t, 1, reg.Len())

	// A different browser gets a different broker
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotSame(t, first, seen)
	assert.Equal(t, 2, reg.Len())
}

func TestMiddleware_ReleasesAfterRequest(t *testing.T) {
	reg, _ := newTestRegistry(t)
	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))

	var id string
	handler := Middleware(store, reg, testutil.NewTestLogger(t))(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		e, _ := FromContext(r.Context())
		id = e.ID
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	e, ok := reg.Lookup(id)
	require.True(t, ok)
	reg.mu.Lock()
	refs := e.refs
	reg.mu.Unlock()
	assert.Equal(t, 0, refs)
}

func TestFromContext_Missing(t *testing.T) {
	_, ok := FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
