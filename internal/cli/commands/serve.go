package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/navshell/internal/cli/config"
	"github.com/leapstack-labs/navshell/internal/menu"
	"github.com/leapstack-labs/navshell/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the navigation shell in the browser",
		Long: `Start a local web server hosting the navigation shell.

Each browser session gets its own sidebar state. The browser reports its
viewport width, so the sidebar switches to the mobile overlay below 768px.
The menu file is watched and open pages pick up changes live.`,
		Example: `  # Serve on the default port
  navshell serve

  # Serve a custom menu on port 3000 without opening a browser
  navshell serve --menu menu.yaml --port 3000 --no-browser`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", config.DefaultPort, "Port to serve on")
	cmd.Flags().Bool("no-browser", false, "Don't auto-open browser")
	cmd.Flags().Int("initial-width", config.DefaultInitialWidth, "Viewport width assumed until the browser reports it")
	cmd.Flags().Duration("session-ttl", config.DefaultSessionTTL, "Idle time after which a session's state is dropped")
	cmd.Flags().Bool("dev", false, "Development mode: hot reload and uncached assets")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	menus, err := menu.NewSource(cfg.Menu)
	if err != nil {
		return err
	}

	server := ui.NewServer(ui.Config{
		Menus:         menus,
		Port:          cfg.Serve.Port,
		SessionSecret: cfg.Serve.SessionSecret,
		SessionTTL:    cfg.Serve.SessionTTL,
		InitialWidth:  cfg.Serve.InitialWidth,
		IsDev:         cfg.Serve.Dev,
		Logger:        logger,
	})

	url := fmt.Sprintf("http://localhost:%d", cfg.Serve.Port)
	if cfg.Serve.AutoOpen {
		go openBrowser(url)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving navshell on %s\n", url)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
