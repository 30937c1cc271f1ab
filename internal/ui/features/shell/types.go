// Package shell serves the application shell: the page layout, the sidebar
// and the endpoints the browser uses to drive its session's sidebar broker.
package shell

import "github.com/leapstack-labs/navshell/internal/sidebar"

// Signals is the client-side view of the sidebar state. Field names are the
// datastar signal names bound in the shell markup.
type Signals struct {
	Expanded        bool   `json:"expanded"`
	ExpandedDesktop bool   `json:"expandedDesktop"`
	MobileOpen      bool   `json:"mobileOpen"`
	IsMobile        bool   `json:"isMobile"`
	Hovered         bool   `json:"hovered"`
	ActiveItem      string `json:"activeItem"`
	OpenSubmenu     string `json:"openSubmenu"`
}

// SignalsFrom converts a sidebar state snapshot to signals.
func SignalsFrom(s sidebar.State) Signals {
	return Signals{
		Expanded:        s.EffectiveExpanded(),
		ExpandedDesktop: s.ExpandedDesktop,
		MobileOpen:      s.MobileOpen,
		IsMobile:        s.IsMobile,
		Hovered:         s.IsHovered,
		ActiveItem:      string(s.ActiveItem),
		OpenSubmenu:     string(s.OpenSubmenu),
	}
}

// ViewportSignals is posted by the browser on load and on window resize.
type ViewportSignals struct {
	ViewportWidth int `json:"viewportWidth"`
}
