// Package session keeps one sidebar broker per browser session. Each
// session is an independent shell root: its broker is mounted on a viewport
// window that the browser drives by posting its width.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/leapstack-labs/navshell/internal/sidebar"
	"github.com/leapstack-labs/navshell/internal/viewport"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultTTL          = 30 * time.Minute
	DefaultInitialWidth = 1024
	DefaultReapInterval = time.Minute
)

// ErrClosed is returned by Acquire once the registry has been closed.
var ErrClosed = errors.New("session registry closed")

// Entry is the state root of one browser session.
type Entry struct {
	ID     string
	Broker *sidebar.Broker
	Window *viewport.Window

	lastSeen time.Time
	refs     int
}

// Config holds registry settings.
type Config struct {
	// TTL is how long an unreferenced session is kept after its last request.
	TTL time.Duration
	// InitialWidth is assumed until the browser reports its width.
	InitialWidth int
	Logger       *slog.Logger
}

// Registry maps session ids to entries.
type Registry struct {
	mu           sync.Mutex
	entries      map[string]*Entry
	ttl          time.Duration
	initialWidth int
	logger       *slog.Logger
	now          func() time.Time
	scheduler    gocron.Scheduler
	closed       bool
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.InitialWidth <= 0 {
		cfg.InitialWidth = DefaultInitialWidth
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		entries:      make(map[string]*Entry),
		ttl:          cfg.TTL,
		initialWidth: cfg.InitialWidth,
		logger:       cfg.Logger,
		now:          time.Now,
	}
}

// Acquire returns the entry for id, mounting a new broker if needed, and
// holds a reference until Release is called. It fails with ErrClosed after
// Close.
func (r *Registry) Acquire(id string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	e, ok := r.entries[id]
	if !ok {
		w := viewport.NewWindow(r.initialWidth)
		b := sidebar.NewBroker(sidebar.WithLogger(r.logger.With("session", id)))
		if err := b.Mount(w); err != nil {
			return nil, fmt.Errorf("failed to mount sidebar for session %s: %w", id, err)
		}
		e = &Entry{ID: id, Broker: b, Window: w}
		r.entries[id] = e
		r.logger.Debug("session created", "session", id)
	}
	e.refs++
	e.lastSeen = r.now()
	return e, nil
}

// Release drops a reference taken by Acquire.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok && e.refs > 0 {
		e.refs--
		e.lastSeen = r.now()
	}
}

// Lookup returns the entry for id without taking a reference.
func (r *Registry) Lookup(id string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reap closes sessions that have no references and were idle longer than
// the TTL. It returns the number of sessions removed.
func (r *Registry) Reap() int {
	r.mu.Lock()
	now := r.now()
	var expired []*Entry
	for id, e := range r.entries {
		if e.refs == 0 && now.Sub(e.lastSeen) > r.ttl {
			expired = append(expired, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		_ = e.Broker.Close()
		r.logger.Debug("session expired", "session", e.ID)
	}
	return len(expired)
}

// StartReaper runs Reap on a fixed interval until Close.
func (r *Registry) StartReaper(interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if n := r.Reap(); n > 0 {
				r.logger.Info("reaped idle sessions", "count", n)
			}
		}),
		gocron.WithName("session-reaper"),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to schedule session reaper: %w", err)
	}
	s.Start()

	r.mu.Lock()
	r.scheduler = s
	r.mu.Unlock()
	return nil
}

// Close stops the reaper and closes every session broker. Later Acquire
// calls fail.
func (r *Registry) Close() error {
	r.mu.Lock()
	r.closed = true
	s := r.scheduler
	r.scheduler = nil
	entries := r.entries
	r.entries = make(map[string]*Entry)
	r.mu.Unlock()

	var err error
	if s != nil {
		err = s.Shutdown()
	}
	for _, e := range entries {
		_ = e.Broker.Close()
	}
	return err
}
