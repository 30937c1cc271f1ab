package sidebar

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/navshell/internal/ui/notifier"
	"github.com/leapstack-labs/navshell/internal/viewport"
)

// Lifecycle errors returned by Mount.
var (
	ErrAlreadyMounted = errors.New("sidebar: broker already mounted")
	ErrClosed         = errors.New("sidebar: broker closed")
)

// Broker owns one sidebar State, keeps it in sync with a viewport, and
// notifies subscribers of changes. It is safe for concurrent use.
type Broker struct {
	mu      sync.Mutex
	state   State
	mounted bool
	closed  bool
	detach  func()

	changes *notifier.Notifier[Change]
	logger  *slog.Logger
}

// Option configures a Broker.
type Option func(*Broker)

// WithLogger sets the logger used for state change debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Broker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithInitialState replaces DefaultState as the starting state.
func WithInitialState(s State) Option {
	return func(b *Broker) {
		b.state = s
	}
}

// NewBroker creates an unmounted Broker.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		state:   DefaultState(),
		changes: notifier.New(func(pending, next Change) Change { return pending | next }),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mount attaches a single resize listener to vp and applies its current
// width. Call Close to detach it.
func (b *Broker) Mount(vp viewport.Source) error {
	b.mu.Lock()
	switch {
	case b.closed:
		b.mu.Unlock()
		return ErrClosed
	case b.mounted:
		b.mu.Unlock()
		return ErrAlreadyMounted
	}
	b.mounted = true
	b.mu.Unlock()

	remove := vp.OnResize(func(int) { b.syncWidth(vp) })
	b.syncWidth(vp)

	b.mu.Lock()
	if b.closed {
		// Closed while registering.
		b.mu.Unlock()
		remove()
		return ErrClosed
	}
	b.detach = remove
	b.mu.Unlock()

	b.logger.Debug("sidebar broker mounted", "width", vp.Width())
	return nil
}

// Close detaches the resize listener and closes all subscriptions.
// It is safe to call more than once.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	detach := b.detach
	b.detach = nil
	b.mu.Unlock()

	if detach != nil {
		detach()
	}
	b.changes.Close()
	b.logger.Debug("sidebar broker closed")
	return nil
}

// Mounted reports whether the broker is attached to a viewport.
func (b *Broker) Mounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted && !b.closed
}

// HandleResize recomputes IsMobile for a viewport width. Whenever the result
// is not mobile, the mobile overlay is forced closed.
func (b *Broker) HandleResize(width int) {
	b.update("resize", func(s *State) {
		applyWidth(s, width)
	})
}

// syncWidth applies the width vp reports at the time the state lock is
// held, so whichever notification is applied last leaves the state matching
// the source, even when concurrent resizes deliver theirs out of order.
func (b *Broker) syncWidth(vp viewport.Source) {
	b.update("resize", func(s *State) {
		applyWidth(s, vp.Width())
	})
}

func applyWidth(s *State, width int) {
	s.IsMobile = width < MobileBreakpoint
	if !s.IsMobile {
		s.MobileOpen = false
	}
}

// ToggleSidebar flips the mobile overlay on mobile and the desktop
// expanded preference otherwise.
func (b *Broker) ToggleSidebar() {
	b.update("toggleSidebar", func(s *State) {
		if s.IsMobile {
			s.MobileOpen = !s.MobileOpen
		} else {
			s.ExpandedDesktop = !s.ExpandedDesktop
		}
	})
}

// ToggleMobileSidebar flips the mobile overlay regardless of viewport.
func (b *Broker) ToggleMobileSidebar() {
	b.update("toggleMobileSidebar", func(s *State) {
		s.MobileOpen = !s.MobileOpen
	})
}

// SetHovered records whether the pointer is over the sidebar.
func (b *Broker) SetHovered(hovered bool) {
	b.update("setHovered", func(s *State) {
		s.IsHovered = hovered
	})
}

// SetActiveItem selects a navigation item. The id is not validated.
func (b *Broker) SetActiveItem(id ItemID) {
	b.update("setActiveItem", func(s *State) {
		s.ActiveItem = id
	})
}

// ToggleSubmenu closes id if it is the open submenu, otherwise opens it in
// place of any other open submenu.
func (b *Broker) ToggleSubmenu(id ItemID) {
	b.update("toggleSubmenu", func(s *State) {
		if s.OpenSubmenu == id {
			s.OpenSubmenu = NoItem
		} else {
			s.OpenSubmenu = id
		}
	})
}

// State returns a snapshot of the current state.
func (b *Broker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// EffectiveExpanded returns the displayed expanded state.
func (b *Broker) EffectiveExpanded() bool {
	return b.State().EffectiveExpanded()
}

// Subscribe registers an observer. The channel receives the set of fields
// changed since the observer last received; read State for the values.
// The returned function unsubscribes. Channels are closed by Close.
func (b *Broker) Subscribe() (<-chan Change, func()) {
	ch := b.changes.Subscribe()
	return ch, func() { b.changes.Unsubscribe(ch) }
}

// Subscribers reports the number of active observers.
func (b *Broker) Subscribers() int {
	return b.changes.Len()
}

func (b *Broker) update(op string, fn func(s *State)) {
	b.mu.Lock()
	before := b.state
	fn(&b.state)
	after := b.state
	b.mu.Unlock()

	c := Diff(before, after)
	if c == 0 {
		return
	}
	b.logger.Debug("sidebar state changed", "op", op, "changed", c.String())
	b.changes.Broadcast(c)
}
