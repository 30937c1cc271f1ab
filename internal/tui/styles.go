package tui

import "github.com/charmbracelet/lipgloss"

const (
	expandedWidth  = 24
	collapsedWidth = 5
)

type styles struct {
	sidebar lipgloss.Style
	title   lipgloss.Style
	item    lipgloss.Style
	child   lipgloss.Style
	active  lipgloss.Style
	cursor  lipgloss.Style
	main    lipgloss.Style
	muted   lipgloss.Style
}

func defaultStyles() styles {
	accent := lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"}
	muted := lipgloss.AdaptiveColor{Light: "#71717a", Dark: "#a1a1aa"}

	return styles{
		sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(muted),
		title:  lipgloss.NewStyle().Bold(true),
		item:   lipgloss.NewStyle(),
		child:  lipgloss.NewStyle().PaddingLeft(2),
		active: lipgloss.NewStyle().Foreground(accent).Bold(true),
		cursor: lipgloss.NewStyle().Reverse(true),
		main:   lipgloss.NewStyle().PaddingLeft(1),
		muted:  lipgloss.NewStyle().Foreground(muted),
	}
}
