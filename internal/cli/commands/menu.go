package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/navshell/internal/cli/config"
	"github.com/leapstack-labs/navshell/internal/menu"
)

// NewMenuCommand creates the menu command.
func NewMenuCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Validate and print the navigation menu",
		Long: `Load the configured menu file, validate it, and print its items.

Without --menu the built-in menu is printed.`,
		Example: `  navshell menu --menu menu.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetConfig(cmd.Context())

			src, err := menu.NewSource(cfg.Menu)
			if err != nil {
				return err
			}
			return renderMenu(cmd.OutOrStdout(), src.Menu())
		},
	}
}

func renderMenu(w io.Writer, m *menu.Menu) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", m.Title); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Label", "Href", "Submenu"})

	for _, e := range m.Flatten() {
		label := e.Label
		if e.Depth > 0 {
			label = "  " + label
		}
		submenu := ""
		switch {
		case e.HasChildren():
			submenu = fmt.Sprintf("%d items", len(e.Children))
		case e.Parent != "":
			submenu = "in " + e.Parent
		}
		t.AppendRow(table.Row{e.ID, label, e.Href, submenu})
	}

	t.Render()
	return nil
}
