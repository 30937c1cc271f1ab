// Package common provides shared types and utilities for UI features.
package common

import "github.com/leapstack-labs/navshell/internal/sidebar"

// NavNode represents an entry in the rendered sidebar navigation.
type NavNode struct {
	ID       string
	Label    string
	Href     string
	Icon     string
	Active   bool // the item, or one of its children, is the active item
	Open     bool // submenu is expanded
	Children []NavNode
}

// HasChildren reports whether the node opens a submenu.
func (n NavNode) HasChildren() bool {
	return len(n.Children) > 0
}

// ShellData holds everything needed to render the application shell.
type ShellData struct {
	Title string
	Nav   []NavNode
	State sidebar.State
	IsDev bool
}
