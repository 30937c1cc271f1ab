// Package sidebar owns the navigation sidebar state shared by every view of
// an application shell.
//
// A Broker is created once per shell root, mounted against a viewport
// source, and handed to descendant views either directly (constructor
// injection) or through a context.Context with Provide and Use.
package sidebar

import "strings"

// MobileBreakpoint is the viewport width, in pixels, below which the shell
// is treated as mobile.
const MobileBreakpoint = 768

// ItemID identifies a navigation item or submenu.
type ItemID string

// NoItem means no item is selected or no submenu is open.
const NoItem ItemID = ""

// State is a snapshot of the sidebar state.
type State struct {
	ExpandedDesktop bool
	MobileOpen      bool
	IsMobile        bool
	IsHovered       bool
	ActiveItem      ItemID
	OpenSubmenu     ItemID
}

// DefaultState is the state of a freshly created broker.
func DefaultState() State {
	return State{ExpandedDesktop: true}
}

// EffectiveExpanded is the expanded state the sidebar is displayed with.
// It is always false on mobile, where only the overlay open state matters.
func (s State) EffectiveExpanded() bool {
	if s.IsMobile {
		return false
	}
	return s.ExpandedDesktop
}

// Change is a set of fields modified by one mutation.
type Change uint8

// Change bits. ChangeEffectiveExpanded is reported whenever the derived
// value flips, whichever input caused it.
const (
	ChangeExpandedDesktop Change = 1 << iota
	ChangeMobileOpen
	ChangeIsMobile
	ChangeHovered
	ChangeActiveItem
	ChangeOpenSubmenu
	ChangeEffectiveExpanded
)

var changeNames = []struct {
	bit  Change
	name string
}{
	{ChangeExpandedDesktop, "expandedDesktop"},
	{ChangeMobileOpen, "mobileOpen"},
	{ChangeIsMobile, "isMobile"},
	{ChangeHovered, "hovered"},
	{ChangeActiveItem, "activeItem"},
	{ChangeOpenSubmenu, "openSubmenu"},
	{ChangeEffectiveExpanded, "expanded"},
}

// Has reports whether every bit of other is set in c.
func (c Change) Has(other Change) bool {
	return c&other == other
}

func (c Change) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for _, n := range changeNames {
		if c.Has(n.bit) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Diff returns the fields that differ between two states.
func Diff(before, after State) Change {
	var c Change
	if before.ExpandedDesktop != after.ExpandedDesktop {
		c |= ChangeExpandedDesktop
	}
	if before.MobileOpen != after.MobileOpen {
		c |= ChangeMobileOpen
	}
	if before.IsMobile != after.IsMobile {
		c |= ChangeIsMobile
	}
	if before.IsHovered != after.IsHovered {
		c |= ChangeHovered
	}
	if before.ActiveItem != after.ActiveItem {
		c |= ChangeActiveItem
	}
	if before.OpenSubmenu != after.OpenSubmenu {
		c |= ChangeOpenSubmenu
	}
	if before.EffectiveExpanded() != after.EffectiveExpanded() {
		c |= ChangeEffectiveExpanded
	}
	return c
}
