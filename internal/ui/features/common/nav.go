package common

import (
	"github.com/leapstack-labs/navshell/internal/menu"
	"github.com/leapstack-labs/navshell/internal/sidebar"
)

// BuildNav combines the menu structure with the current sidebar state.
func BuildNav(m *menu.Menu, s sidebar.State) []NavNode {
	nodes := make([]NavNode, 0, len(m.Items))
	for _, it := range m.Items {
		node := toNode(it, s)
		for _, child := range it.Children {
			c := toNode(child, s)
			if c.Active {
				node.Active = true
			}
			node.Children = append(node.Children, c)
		}
		if node.HasChildren() {
			node.Open = s.OpenSubmenu == sidebar.ItemID(it.ID)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// BuildShellData assembles the shell view for a menu and state.
func BuildShellData(m *menu.Menu, s sidebar.State, isDev bool) ShellData {
	return ShellData{
		Title: m.Title,
		Nav:   BuildNav(m, s),
		State: s,
		IsDev: isDev,
	}
}

func toNode(it menu.Item, s sidebar.State) NavNode {
	return NavNode{
		ID:     it.ID,
		Label:  it.Label,
		Href:   it.Href,
		Icon:   it.Icon,
		Active: s.ActiveItem == sidebar.ItemID(it.ID),
	}
}
