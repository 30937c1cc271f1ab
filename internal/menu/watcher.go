package menu

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 100 * time.Millisecond

// Source holds the current menu and swaps it atomically on reload.
type Source struct {
	current atomic.Pointer[Menu]
	path    string
}

// NewSource loads the menu at path, or uses Default when path is empty.
func NewSource(path string) (*Source, error) {
	m := Default()
	if path != "" {
		var err error
		if m, err = Load(path); err != nil {
			return nil, err
		}
	}
	s := &Source{path: path}
	s.current.Store(m)
	return s, nil
}

// StaticSource wraps a fixed menu.
func StaticSource(m *Menu) *Source {
	s := &Source{}
	s.current.Store(m)
	return s
}

// Menu returns the current menu.
func (s *Source) Menu() *Menu {
	return s.current.Load()
}

// Path returns the file backing the source, or "" for static sources.
func (s *Source) Path() string {
	return s.path
}

// Reload re-reads the menu file. On error the current menu is kept.
func (s *Source) Reload() error {
	if s.path == "" {
		return nil
	}
	m, err := Load(s.path)
	if err != nil {
		return err
	}
	s.current.Store(m)
	return nil
}

// Watch reloads the menu whenever its file changes and calls onChange after
// each successful reload. It blocks until ctx is cancelled. Static sources
// return immediately.
func (s *Source) Watch(ctx context.Context, logger *slog.Logger, onChange func()) error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file via rename, which
	// drops a watch placed on the file itself.
	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				if err := s.Reload(); err != nil {
					logger.Error("menu reload failed, keeping previous menu", "path", s.path, "error", err)
					return
				}
				logger.Info("menu reloaded", "path", s.path)
				onChange()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("menu watcher error", "error", err)
		}
	}
}
