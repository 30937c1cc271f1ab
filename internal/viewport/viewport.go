// Package viewport provides viewport width sources for hosts of the sidebar
// state. A source reports its current width and notifies listeners when the
// host is resized.
package viewport

import "sync"

// Source is a host environment that has a width and emits resize events.
type Source interface {
	// Width returns the current viewport width in pixels.
	Width() int
	// OnResize registers fn to be called synchronously on every resize and
	// returns a function that removes exactly that registration.
	OnResize(fn func(width int)) (remove func())
}

// Window is a Source whose size is driven by the host calling Resize, e.g.
// a browser posting its inner width or a terminal reporting its columns.
type Window struct {
	mu        sync.Mutex
	width     int
	nextID    uint64
	listeners map[uint64]func(int)
}

var _ Source = (*Window)(nil)

// NewWindow creates a Window with an initial width.
func NewWindow(width int) *Window {
	return &Window{
		width:     width,
		listeners: make(map[uint64]func(int)),
	}
}

// Width returns the last reported width.
func (w *Window) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

// OnResize registers a resize listener.
func (w *Window) OnResize(fn func(width int)) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.listeners, id)
			w.mu.Unlock()
		})
	}
}

// Resize records a new width and notifies every listener. Listeners run on
// the caller's goroutine after the lock is released, so they may read Width.
func (w *Window) Resize(width int) {
	w.mu.Lock()
	w.width = width
	fns := make([]func(int), 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(width)
	}
}

// Listeners reports the number of registered resize listeners.
func (w *Window) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}

// Fixed is a Source that never resizes.
type Fixed int

var _ Source = Fixed(0)

// Width returns the fixed width.
func (f Fixed) Width() int { return int(f) }

// OnResize never calls fn.
func (f Fixed) OnResize(func(int)) func() { return func() {} }
