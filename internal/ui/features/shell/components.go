package shell

import (
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/navshell/internal/ui/features/common"
)

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate -f shell.templ

// DatastarScript is the datastar client bundle loaded by the shell page.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// SidebarID is the element id patched when the menu changes.
const SidebarID = "sidebar"

// reportWidth posts the window width, on load and after each resize.
const reportWidth = "$viewportWidth = window.innerWidth; @post('/api/sidebar/viewport')"

type pageSignals struct {
	Signals
	ViewportWidth int `json:"viewportWidth"`
}

func pageSignalsJSON(data common.ShellData) (string, error) {
	b, err := json.Marshal(pageSignals{Signals: SignalsFrom(data.State)})
	if err != nil {
		return "", fmt.Errorf("failed to encode signals: %w", err)
	}
	return string(b), nil
}

// activeExpr is true client-side when n or one of its children is active.
func activeExpr(n common.NavNode) string {
	expr := "$activeItem == '" + n.ID + "'"
	for _, child := range n.Children {
		expr += " || $activeItem == '" + child.ID + "'"
	}
	return expr
}

func hrefOf(n common.NavNode) string {
	if n.Href == "" {
		return "#" + n.ID
	}
	return n.Href
}

func activeLabel(data common.ShellData) string {
	if data.State.ActiveItem == "" {
		return "none"
	}
	return string(data.State.ActiveItem)
}
