package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/navshell/internal/cli/config"
	"github.com/leapstack-labs/navshell/internal/menu"
	"github.com/leapstack-labs/navshell/internal/tui"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the navigation shell in the terminal",
		Long: `Run the navigation shell as a full-screen terminal program.

The terminal width in columns times --cell-width gives the viewport width,
so narrow terminals get the mobile overlay.`,
		Example: `  navshell tui --menu menu.yaml
  navshell tui --cell-width 10 --log-file navshell.log`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, logFile)
		},
	}

	cmd.Flags().Int("cell-width", config.DefaultCellWidth, "Pixel width assumed for one terminal column")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file (the screen is taken by the shell)")

	return cmd
}

func runTUI(cmd *cobra.Command, logFile string) error {
	cfg := config.GetConfig(cmd.Context())

	logger := slog.New(slog.DiscardHandler)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // user-chosen path
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = f.Close() }()

		logger, err = config.NewLogger(f, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
	}

	menus, err := menu.NewSource(cfg.Menu)
	if err != nil {
		return err
	}

	return tui.Run(cmd.Context(), tui.Options{
		Menus:     menus,
		CellWidth: cfg.TUI.CellWidth,
		Logger:    logger,
	})
}
