// Package ui serves the navigation shell over HTTP, one sidebar broker per
// browser session.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/navshell/internal/menu"
	"github.com/leapstack-labs/navshell/internal/ui/notifier"
	"github.com/leapstack-labs/navshell/internal/ui/router"
	"github.com/leapstack-labs/navshell/internal/ui/session"
)

// Server is the main UI server.
type Server struct {
	menus        *menu.Source
	registry     *session.Registry
	sessionStore *sessions.CookieStore
	reloads      *notifier.Notifier[struct{}]
	port         int
	reapInterval time.Duration
	isDev        bool
	logger       *slog.Logger
}

// Config holds configuration for the UI server.
type Config struct {
	Menus *menu.Source
	Port  int
	// SessionSecret signs session cookies. When empty a random key is
	// generated and sessions do not survive a restart.
	SessionSecret string
	SessionTTL    time.Duration
	ReapInterval  time.Duration
	InitialWidth  int
	IsDev         bool
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Menus == nil {
		cfg.Menus = menu.StaticSource(menu.Default())
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		cfg.Logger.Warn("no session secret configured, using a random key")
		secret = securecookie.GenerateRandomKey(32)
	}
	sessionStore := sessions.NewCookieStore(secret)
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		menus: cfg.Menus,
		registry: session.NewRegistry(session.Config{
			TTL:          cfg.SessionTTL,
			InitialWidth: cfg.InitialWidth,
			Logger:       cfg.Logger,
		}),
		sessionStore: sessionStore,
		reloads:      notifier.NewPing(),
		port:         cfg.Port,
		reapInterval: cfg.ReapInterval,
		isDev:        cfg.IsDev,
		logger:       cfg.Logger,
	}
}

// Handler builds the HTTP handler with all routes and middleware.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
			NoColor: true,
		}),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	deps := router.Deps{
		Menus:        s.menus,
		Registry:     s.registry,
		SessionStore: s.sessionStore,
		Reloads:      s.reloads,
		Logger:       s.logger,
		IsDev:        s.isDev,
	}
	if err := router.SetupRoutes(r, deps); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
// All session brokers are torn down on return.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", ln.Addr().(*net.TCPAddr).Port))

	if err := s.registry.StartReaper(s.reapInterval); err != nil {
		_ = ln.Close()
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Reload the menu and re-render open sidebars when the file changes
	eg.Go(func() error {
		return s.menus.Watch(egctx, s.logger, func() {
			s.reloads.Broadcast(struct{}{})
		})
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		// Stop accepting requests before session brokers are torn down.
		shutdownErr := srv.Shutdown(shutdownCtx)
		s.reloads.Close()
		return errors.Join(shutdownErr, s.registry.Close())
	})

	return eg.Wait()
}

// IsDev returns true if running in development mode.
func (s *Server) IsDev() bool {
	return s.isDev
}

// Registry returns the server's session registry.
func (s *Server) Registry() *session.Registry {
	return s.registry
}

// Reloads returns the notifier pinged when the menu changes.
func (s *Server) Reloads() *notifier.Notifier[struct{}] {
	return s.reloads
}
