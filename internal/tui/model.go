// Package tui hosts the sidebar in a terminal. The terminal width, in
// columns, is converted to pixels so the same mobile breakpoint applies as
// in the browser.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/leapstack-labs/navshell/internal/menu"
	"github.com/leapstack-labs/navshell/internal/sidebar"
	"github.com/leapstack-labs/navshell/internal/viewport"
)

// changeMsg carries a sidebar change observed on the broker subscription.
type changeMsg struct {
	change sidebar.Change
	closed bool
}

// menuReloadedMsg is sent when the menu source picked up a new file.
type menuReloadedMsg struct{}

// Model is the bubbletea model for the terminal shell.
type Model struct {
	broker      *sidebar.Broker
	menus       *menu.Source
	window      *viewport.CellWindow
	changes     <-chan sidebar.Change
	unsubscribe func()

	keys   keyMap
	help   help.Model
	styles styles

	cursor int
	width  int
	height int
}

// New creates the model for the broker provided in ctx. window must be the
// source the broker is mounted on.
func New(ctx context.Context, menus *menu.Source, window *viewport.CellWindow) (Model, error) {
	b, err := sidebar.Use(ctx)
	if err != nil {
		return Model{}, err
	}

	changes, unsubscribe := b.Subscribe()
	return Model{
		broker:      b,
		menus:       menus,
		window:      window,
		changes:     changes,
		unsubscribe: unsubscribe,
		keys:        defaultKeyMap(),
		help:        help.New(),
		styles:      defaultStyles(),
		width:       window.Cols(),
		height:      24,
	}, nil
}

// Close releases the model's broker subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan sidebar.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		return changeMsg{change: c, closed: !ok}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		// The broker hears this through its resize listener.
		m.window.ResizeCells(msg.Width)
		return m, nil

	case changeMsg:
		if msg.closed {
			return m, tea.Quit
		}
		m.clampCursor()
		return m, waitForChange(m.changes)

	case menuReloadedMsg:
		m.clampCursor()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.broker.ToggleSidebar()
		case key.Matches(msg, m.keys.ToggleMobile):
			m.broker.ToggleMobileSidebar()
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows())-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			m.activate(m.cursor)
		}
		m.clampCursor()
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	inside := msg.X < m.sidebarWidth(m.broker.State())
	if msg.Action == tea.MouseActionMotion {
		m.broker.SetHovered(inside)
		return m
	}
	if inside && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		// Row 0 is the title.
		if i := msg.Y - 1; i >= 0 && i < len(m.rows()) {
			m.cursor = i
			m.activate(i)
			m.clampCursor()
		}
	}
	return m
}

// activate opens or closes a submenu, or selects a leaf item.
func (m Model) activate(i int) {
	rows := m.rows()
	if i < 0 || i >= len(rows) {
		return
	}
	e := rows[i]
	if e.HasChildren() {
		m.broker.ToggleSubmenu(sidebar.ItemID(e.ID))
		return
	}
	m.broker.SetActiveItem(sidebar.ItemID(e.ID))
}

// rows lists the visible entries: every top-level item plus the children of
// the open submenu.
func (m Model) rows() []menu.Entry {
	open := m.broker.State().OpenSubmenu
	var out []menu.Entry
	for _, e := range m.menus.Menu().Flatten() {
		if e.Depth > 0 && sidebar.ItemID(e.Parent) != open {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (m *Model) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// sidebarWidth is the number of columns the sidebar occupies.
func (m Model) sidebarWidth(s sidebar.State) int {
	switch {
	case s.IsMobile && s.MobileOpen:
		return m.width
	case s.IsMobile:
		return 0
	case s.EffectiveExpanded():
		return min(expandedWidth, m.width)
	default:
		return min(collapsedWidth, m.width)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	s := m.broker.State()
	height := max(m.height-1, 1)
	sw := m.sidebarWidth(s)

	var body string
	switch {
	case sw == 0:
		body = m.renderMain(s, m.width, height)
	case sw >= m.width:
		body = m.renderSidebar(s, m.width, height)
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderSidebar(s, sw, height),
			m.renderMain(s, m.width-sw, height))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(m.keys))
}

func (m Model) renderSidebar(s sidebar.State, width, height int) string {
	inner := max(width-1, 1)
	expanded := s.EffectiveExpanded()
	mn := m.menus.Menu()

	lines := make([]string, 0, height)
	title := mn.Title
	if !expanded {
		title = "☰"
	}
	lines = append(lines, m.styles.title.Render(truncate(title, inner)))

	for i, e := range m.rows() {
		text := e.Label
		if !expanded {
			text = e.Icon
			if text == "" {
				text = initial(e.Label)
			}
		} else if e.Icon != "" {
			text = e.Icon + " " + e.Label
		}
		if expanded && e.HasChildren() {
			marker := "▸"
			if s.OpenSubmenu == sidebar.ItemID(e.ID) {
				marker = "▾"
			}
			text += " " + marker
		}

		style := m.styles.item
		if e.Depth > 0 {
			style = m.styles.child
		}
		if s.ActiveItem == sidebar.ItemID(e.ID) {
			style = style.Inherit(m.styles.active)
		}
		if i == m.cursor {
			style = style.Inherit(m.styles.cursor)
		}
		lines = append(lines, style.Render(truncate(text, inner-style.GetHorizontalPadding())))
	}

	return m.styles.sidebar.Width(inner).Height(height).Render(strings.Join(lines, "\n"))
}

func (m Model) renderMain(s sidebar.State, width, height int) string {
	mode := "desktop"
	if s.IsMobile {
		mode = "mobile"
	}
	active := string(s.ActiveItem)
	if active == "" {
		active = "none"
	} else if it, ok := m.menus.Menu().Find(active); ok {
		active = it.Label
	}

	lines := []string{
		m.styles.title.Render(m.menus.Menu().Title),
		"",
		"Active: " + active,
		m.styles.muted.Render(fmt.Sprintf("Viewport: %dpx (%s)", m.window.Width(), mode)),
	}
	if s.IsMobile && !s.MobileOpen {
		lines = append(lines, m.styles.muted.Render("press m for the menu"))
	}
	return m.styles.main.Width(max(width-1, 1)).Height(height).Render(strings.Join(lines, "\n"))
}

// truncate cuts s to at most n terminal cells.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return ansi.Truncate(s, n, "…")
}

func initial(label string) string {
	for _, r := range label {
		return string(r)
	}
	return "•"
}
