package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/navshell/internal/menu"
	"github.com/leapstack-labs/navshell/internal/sidebar"
	"github.com/leapstack-labs/navshell/internal/testutil"
	"github.com/leapstack-labs/navshell/internal/viewport"
)

func newTestModel(t *testing.T, cols int) (Model, *sidebar.Broker) {
	t.Helper()

	m, err := menu.Parse([]byte(testutil.SampleMenuYAML))
	require.NoError(t, err)

	window := viewport.NewCellWindow(cols, viewport.DefaultCellWidth)
	b := sidebar.NewBroker(sidebar.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, b.Mount(window))
	t.Cleanup(func() { _ = b.Close() })

	model, err := New(sidebar.Provide(context.Background(), b), menu.StaticSource(m), window)
	require.NoError(t, err)
	t.Cleanup(model.Close)

	return apply(t, model, tea.WindowSizeMsg{Width: cols, Height: 20}), b
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok, "Update returned %T, want Model", next)
	return got
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	switch k {
	case "enter":
		return apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	case "down":
		return apply(t, m, tea.KeyMsg{Type: tea.KeyDown})
	case "up":
		return apply(t, m, tea.KeyMsg{Type: tea.KeyUp})
	}
	return apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

func TestNew_WithoutBroker(t *testing.T) {
	_, err := New(context.Background(), menu.StaticSource(menu.Default()), viewport.NewCellWindow(80, 0))

	var cfgErr *sidebar.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestModel_WindowSizeDrivesMobile(t *testing.T) {
	tests := []struct {
		name       string
		cols       int
		wantMobile bool
	}{
		{name: "wide terminal", cols: 120, wantMobile: false},
		{name: "breakpoint", cols: 96, wantMobile: false},
		{name: "narrow terminal", cols: 95, wantMobile: true},
		{name: "tiny terminal", cols: 40, wantMobile: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, b := newTestModel(t, tt.cols)
			assert.Equal(t, tt.wantMobile, b.State().IsMobile)
		})
	}
}

func TestModel_ToggleKeys(t *testing.T) {
	m, b := newTestModel(t, 120)

	m = press(t, m, "b")
	assert.False(t, b.State().ExpandedDesktop)
	assert.False(t, b.EffectiveExpanded())

	m = press(t, m, "b")
	assert.True(t, b.State().ExpandedDesktop)

	press(t, m, "m")
	assert.True(t, b.State().MobileOpen, "overlay flag toggles even on desktop")
}

func TestModel_ResizeToDesktopClosesOverlay(t *testing.T) {
	m, b := newTestModel(t, 60)

	m = press(t, m, "b")
	require.True(t, b.State().MobileOpen)
	assert.Contains(t, m.View(), "Dashboard", "open overlay shows the menu")

	m = apply(t, m, tea.WindowSizeMsg{Width: 140, Height: 20})
	assert.False(t, b.State().MobileOpen)
	assert.False(t, b.State().IsMobile)
	assert.Contains(t, m.View(), "(desktop)")
}

func TestModel_NavigateAndSelect(t *testing.T) {
	m, b := newTestModel(t, 120)

	// dashboard, reports, settings
	require.Len(t, m.rows(), 3)

	m = press(t, m, "down")
	m = press(t, m, "enter")
	assert.Equal(t, sidebar.ItemID("reports"), b.State().OpenSubmenu)
	require.Len(t, m.rows(), 5)

	m = press(t, m, "down")
	m = press(t, m, "enter")
	assert.Equal(t, sidebar.ItemID("reports-sales"), b.State().ActiveItem)
	assert.Contains(t, m.View(), "Active: Sales")

	// Closing the submenu hides its children and keeps the cursor in range.
	m = press(t, m, "up")
	m = press(t, m, "enter")
	assert.Equal(t, sidebar.NoItem, b.State().OpenSubmenu)
	assert.Len(t, m.rows(), 3)

	m = press(t, m, "down")
	m = press(t, m, "down")
	m = press(t, m, "down")
	assert.Equal(t, 2, m.cursor)
}

func TestModel_MouseHover(t *testing.T) {
	m, b := newTestModel(t, 120)
	m = press(t, m, "b")
	require.False(t, b.EffectiveExpanded())

	m = apply(t, m, tea.MouseMsg{X: 2, Y: 3, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.True(t, b.State().IsHovered)
	assert.True(t, b.EffectiveExpanded(), "hover expands a collapsed rail")

	apply(t, m, tea.MouseMsg{X: 80, Y: 3, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.False(t, b.State().IsHovered)
	assert.False(t, b.EffectiveExpanded())
}

func TestModel_MouseClickSelects(t *testing.T) {
	m, b := newTestModel(t, 120)

	// Row 3 on screen is the third item.
	apply(t, m, tea.MouseMsg{X: 1, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, sidebar.ItemID("settings"), b.State().ActiveItem)
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t, 120)

	view := m.View()
	assert.Contains(t, view, "Acme Admin")
	assert.Contains(t, view, "Reports ▸")
	assert.Contains(t, view, "Viewport: 960px (desktop)")
	assert.Contains(t, view, "toggle sidebar")

	m = press(t, m, "b")
	assert.NotContains(t, m.View(), "Reports ▸", "collapsed rail shows icons only")
}

func TestModel_ViewMobileClosed(t *testing.T) {
	m, _ := newTestModel(t, 60)

	view := m.View()
	assert.Contains(t, view, "(mobile)")
	assert.Contains(t, view, "press m for the menu")
	assert.NotContains(t, view, "Settings")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"fits", "Settings", 20, "Settings"},
		{"ascii", "Settings", 5, "Sett…"},
		{"wide runes", "設定設定", 5, "設定…"},
		{"wide runes odd cut", "設定設定", 4, "設…"},
		{"single cell", "Settings", 1, "…"},
		{"zero", "Settings", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, lipgloss.Width(got), max(tt.n, 0))
		})
	}
}

func TestModel_ViewWideLabelsStayInColumn(t *testing.T) {
	m, err := menu.Parse([]byte(`title: 管理コンソール管理コンソール
items:
  - id: settings
    label: 設定設定設定設定設定設定設定設定
    icon: "⚙"
  - id: reports
    label: レポートレポートレポートレポート
`))
	require.NoError(t, err)

	window := viewport.NewCellWindow(120, viewport.DefaultCellWidth)
	b := sidebar.NewBroker()
	require.NoError(t, b.Mount(window))
	t.Cleanup(func() { _ = b.Close() })

	model, err := New(sidebar.Provide(context.Background(), b), menu.StaticSource(m), window)
	require.NoError(t, err)
	t.Cleanup(model.Close)
	model = apply(t, model, tea.WindowSizeMsg{Width: 120, Height: 10})

	sidebarView := model.renderSidebar(b.State(), expandedWidth, 8)
	for _, line := range strings.Split(sidebarView, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), expandedWidth, "line %q overflows the sidebar", line)
	}
	assert.Contains(t, sidebarView, "…")
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel(t, 120)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_QuitsWhenBrokerCloses(t *testing.T) {
	m, b := newTestModel(t, 120)

	cmd := m.Init()
	require.NoError(t, b.Close())

	msg := cmd()
	_, next := m.Update(msg)
	require.NotNil(t, next)
	assert.IsType(t, tea.QuitMsg{}, next())
}

func TestModel_ChangeReArmsSubscription(t *testing.T) {
	m, b := newTestModel(t, 120)

	cmd := m.Init()
	b.SetActiveItem("dashboard")

	msg := cmd()
	change, ok := msg.(changeMsg)
	require.True(t, ok)
	assert.True(t, change.change.Has(sidebar.ChangeActiveItem))

	_, next := m.Update(msg)
	assert.NotNil(t, next, "another wait is scheduled")
}

func TestRun_QuitsOnKey(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), Options{
			Logger: testutil.NewTestLogger(t),
			ProgramOptions: []tea.ProgramOption{
				tea.WithInput(strings.NewReader("q")),
				tea.WithOutput(io.Discard),
			},
		})
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("terminal shell did not quit")
	}
}
