package shell

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/navshell/internal/menu"
	"github.com/leapstack-labs/navshell/internal/ui/notifier"
)

// SetupRoutes configures routes for the shell feature. The router must
// already resolve the session broker for each request.
func SetupRoutes(
	router chi.Router,
	menus *menu.Source,
	reloads *notifier.Notifier[struct{}],
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(menus, reloads, logger, isDev)

	router.Get("/", handlers.ShellPage)
	router.Get("/shell/updates", handlers.ShellUpdates)

	router.Route("/api/sidebar", func(r chi.Router) {
		r.Get("/state", handlers.State)
		r.Post("/viewport", handlers.Viewport)
		r.Post("/toggle", handlers.Toggle)
		r.Post("/toggle-mobile", handlers.ToggleMobile)
		r.Post("/hover/{state}", handlers.Hover)
		r.Post("/active/{item}", handlers.Active)
		r.Post("/submenu/{item}", handlers.Submenu)
	})

	return nil
}
