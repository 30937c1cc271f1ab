// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/navshell/internal/menu"
	shellFeature "github.com/leapstack-labs/navshell/internal/ui/features/shell"
	"github.com/leapstack-labs/navshell/internal/ui/notifier"
	"github.com/leapstack-labs/navshell/internal/ui/resources"
	"github.com/leapstack-labs/navshell/internal/ui/session"
)

// Deps are the shared services the routes are built on.
type Deps struct {
	Menus        *menu.Source
	Registry     *session.Registry
	SessionStore sessions.Store
	Reloads      *notifier.Notifier[struct{}]
	Logger       *slog.Logger
	IsDev        bool
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	// Hot reload endpoint for dev mode
	if deps.IsDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Everything else runs inside a session, with its sidebar broker in
	// the request context.
	var err error
	router.Group(func(r chi.Router) {
		r.Use(session.Middleware(deps.SessionStore, deps.Registry, deps.Logger))
		err = shellFeature.SetupRoutes(r, deps.Menus, deps.Reloads, deps.Logger, deps.IsDev)
	})
	return err
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
