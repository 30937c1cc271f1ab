package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/navshell/internal/menu"
	"github.com/leapstack-labs/navshell/internal/sidebar"
	"github.com/leapstack-labs/navshell/internal/viewport"
)

// Options configures Run.
type Options struct {
	Menus *menu.Source
	// CellWidth is the pixel width assumed for one terminal column.
	CellWidth int
	Logger    *slog.Logger
	// ProgramOptions are passed to tea.NewProgram after the defaults.
	ProgramOptions []tea.ProgramOption
}

// Run mounts a broker on the terminal and runs the interactive shell until
// the user quits or ctx is cancelled. The broker is torn down on return.
func Run(ctx context.Context, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Menus == nil {
		opts.Menus = menu.StaticSource(menu.Default())
	}

	// 80 columns until the first WindowSizeMsg arrives.
	window := viewport.NewCellWindow(80, opts.CellWidth)
	b := sidebar.NewBroker(sidebar.WithLogger(opts.Logger))
	if err := b.Mount(window); err != nil {
		return fmt.Errorf("failed to mount sidebar: %w", err)
	}
	defer func() { _ = b.Close() }()

	model, err := New(sidebar.Provide(ctx, b), opts.Menus, window)
	if err != nil {
		return err
	}
	defer model.Close()

	progOpts := append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	}, opts.ProgramOptions...)
	p := tea.NewProgram(model, progOpts...)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		err := opts.Menus.Watch(watchCtx, opts.Logger, func() {
			p.Send(menuReloadedMsg{})
		})
		if err != nil {
			opts.Logger.Warn("menu watcher stopped", "error", err)
		}
	}()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal shell failed: %w", err)
	}
	return nil
}
