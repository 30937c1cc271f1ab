package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/navshell/internal/menu"
	"github.com/leapstack-labs/navshell/internal/sidebar"
	"github.com/leapstack-labs/navshell/internal/ui/features/common"
	"github.com/leapstack-labs/navshell/internal/ui/notifier"
	"github.com/leapstack-labs/navshell/internal/ui/session"
)

var (
	errHoverState = errors.New("hover state must be \"on\" or \"off\"")
	errWidth      = errors.New("viewportWidth must be positive")
)

// Handlers provides HTTP handlers for the shell feature.
type Handlers struct {
	menus   *menu.Source
	reloads *notifier.Notifier[struct{}]
	logger  *slog.Logger
	isDev   bool
}

// NewHandlers creates a new Handlers instance. reloads is pinged whenever
// the menu source changes.
func NewHandlers(menus *menu.Source, reloads *notifier.Notifier[struct{}], logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		menus:   menus,
		reloads: reloads,
		logger:  logger,
		isDev:   isDev,
	}
}

// ShellPage renders the shell with the session's current sidebar state.
func (h *Handlers) ShellPage(w http.ResponseWriter, r *http.Request) {
	b, ok := h.broker(w, r)
	if !ok {
		return
	}

	if err := Page(h.shellData(b.State())).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ShellUpdates is the long-lived SSE endpoint for the shell. It patches
// signals on every sidebar change and re-renders the sidebar when the menu
// is reloaded. Nothing is sent up front; ShellPage renders the initial state.
func (h *Handlers) ShellUpdates(w http.ResponseWriter, r *http.Request) {
	b, ok := h.broker(w, r)
	if !ok {
		return
	}

	sse := datastar.NewSSE(w, r)

	changes, unsubscribe := b.Subscribe()
	defer unsubscribe()

	reloads := h.reloads.Subscribe()
	defer h.reloads.Unsubscribe(reloads)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				// Session expired and its broker was torn down.
				return
			}
			h.logger.Debug("pushing sidebar signals", "changed", c.String())
			if err := sse.MarshalAndPatchSignals(SignalsFrom(b.State())); err != nil {
				_ = sse.ConsoleError(err)
			}
		case _, ok := <-reloads:
			if !ok {
				return
			}
			if err := sse.PatchElementTempl(Sidebar(h.shellData(b.State()))); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// Toggle flips the sidebar: the mobile overlay on mobile, the desktop
// preference otherwise.
func (h *Handlers) Toggle(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(b *sidebar.Broker) error {
		b.ToggleSidebar()
		return nil
	})
}

// ToggleMobile flips the mobile overlay.
func (h *Handlers) ToggleMobile(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(b *sidebar.Broker) error {
		b.ToggleMobileSidebar()
		return nil
	})
}

// Hover records pointer enter ("on") and leave ("off").
func (h *Handlers) Hover(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(b *sidebar.Broker) error {
		switch chi.URLParam(r, "state") {
		case "on":
			b.SetHovered(true)
		case "off":
			b.SetHovered(false)
		default:
			return errHoverState
		}
		return nil
	})
}

// Active selects a navigation item.
func (h *Handlers) Active(w http.ResponseWriter, r *http.Request) {
	item := chi.URLParam(r, "item")
	h.mutate(w, r, func(b *sidebar.Broker) error {
		if _, ok := h.menus.Menu().Find(item); !ok {
			h.logger.Debug("activating item not in menu", "item", item)
		}
		b.SetActiveItem(sidebar.ItemID(item))
		return nil
	})
}

// Submenu toggles a submenu open or closed.
func (h *Handlers) Submenu(w http.ResponseWriter, r *http.Request) {
	item := chi.URLParam(r, "item")
	h.mutate(w, r, func(b *sidebar.Broker) error {
		if !h.menus.Menu().HasSubmenu(item) {
			h.logger.Debug("toggling submenu not in menu", "item", item)
		}
		b.ToggleSubmenu(sidebar.ItemID(item))
		return nil
	})
}

// Viewport receives the browser's viewport width and feeds it to the
// session's resize source.
func (h *Handlers) Viewport(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals ViewportSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, fmt.Sprintf("failed to read signals: %v", err), http.StatusBadRequest)
		return
	}
	if signals.ViewportWidth <= 0 {
		http.Error(w, errWidth.Error(), http.StatusBadRequest)
		return
	}

	entry, ok := session.FromContext(r.Context())
	if !ok {
		err := &sidebar.ConfigurationError{Msg: "viewport reported outside a session"}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entry.Window.Resize(signals.ViewportWidth)

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(SignalsFrom(entry.Broker.State())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// State returns the session's sidebar state as JSON.
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	b, ok := h.broker(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(SignalsFrom(b.State())); err != nil {
		h.logger.Error("failed to encode sidebar state", "error", err)
	}
}

// mutate applies fn to the request's broker and answers with the resulting
// signals.
func (h *Handlers) mutate(w http.ResponseWriter, r *http.Request, fn func(b *sidebar.Broker) error) {
	b, ok := h.broker(w, r)
	if !ok {
		return
	}
	if err := fn(b); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(SignalsFrom(b.State())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// broker resolves the request's broker, answering 500 when the route is not
// behind the session middleware.
func (h *Handlers) broker(w http.ResponseWriter, r *http.Request) (*sidebar.Broker, bool) {
	b, err := sidebar.Use(r.Context())
	if err != nil {
		h.logger.Error("sidebar unavailable", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return b, true
}

func (h *Handlers) shellData(s sidebar.State) common.ShellData {
	return common.BuildShellData(h.menus.Menu(), s, h.isDev)
}
