// Package menu defines the navigation menu rendered inside the sidebar.
package menu

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a menu definition fails validation.
var ErrInvalid = errors.New("invalid menu")

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// allowedSchemes are the link schemes an href may use. Relative links have
// no scheme.
var allowedSchemes = map[string]bool{"http": true, "https": true, "mailto": true, "tel": true}

// Menu is the navigation structure shown in the sidebar.
type Menu struct {
	Title string `yaml:"title"`
	Items []Item `yaml:"items"`
}

// Item is a navigation entry. An item with children is a submenu.
type Item struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	Href     string `yaml:"href,omitempty"`
	Icon     string `yaml:"icon,omitempty"`
	Children []Item `yaml:"children,omitempty"`
}

// HasChildren reports whether the item opens a submenu.
func (i Item) HasChildren() bool {
	return len(i.Children) > 0
}

// Default returns the menu used when no menu file is configured.
func Default() *Menu {
	return &Menu{
		Title: "navshell",
		Items: []Item{
			{ID: "home", Label: "Home", Href: "/", Icon: "⌂"},
			{ID: "workspace", Label: "Workspace", Icon: "▦", Children: []Item{
				{ID: "workspace-projects", Label: "Projects", Href: "/projects"},
				{ID: "workspace-activity", Label: "Activity", Href: "/activity"},
			}},
			{ID: "settings", Label: "Settings", Href: "/settings", Icon: "⚙"},
		},
	}
}

// Load reads and validates a menu file.
func Load(path string) (*Menu, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a YAML menu definition.
func Parse(data []byte) (*Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse menu: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the menu is non-empty, ids are present and unique,
// hrefs are relative or use a web scheme, and submenus are only one level
// deep.
func (m *Menu) Validate() error {
	if len(m.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalid)
	}
	seen := make(map[string]bool)
	check := func(it Item) error {
		if it.ID == "" {
			return fmt.Errorf("%w: item %q has no id", ErrInvalid, it.Label)
		}
		// Ids end up in URLs and client-side expressions.
		if !validID.MatchString(it.ID) {
			return fmt.Errorf("%w: id %q may only contain letters, digits, '-' and '_'", ErrInvalid, it.ID)
		}
		if seen[it.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalid, it.ID)
		}
		seen[it.ID] = true
		if err := checkHref(it.Href); err != nil {
			return fmt.Errorf("%w: item %q: %w", ErrInvalid, it.ID, err)
		}
		return nil
	}
	for _, it := range m.Items {
		if err := check(it); err != nil {
			return err
		}
		for _, child := range it.Children {
			if err := check(child); err != nil {
				return err
			}
			if child.HasChildren() {
				return fmt.Errorf("%w: %q is nested more than one level deep", ErrInvalid, child.ID)
			}
		}
	}
	return nil
}

func checkHref(href string) error {
	if href == "" {
		return nil
	}
	u, err := url.Parse(href)
	if err != nil {
		return fmt.Errorf("bad href: %w", err)
	}
	if u.Scheme != "" && !allowedSchemes[u.Scheme] {
		return fmt.Errorf("href scheme %q is not allowed", u.Scheme)
	}
	return nil
}

// Find returns the item with the given id at any level.
func (m *Menu) Find(id string) (Item, bool) {
	for _, it := range m.Items {
		if it.ID == id {
			return it, true
		}
		for _, child := range it.Children {
			if child.ID == id {
				return child, true
			}
		}
	}
	return Item{}, false
}

// HasSubmenu reports whether id names a top-level item with children.
func (m *Menu) HasSubmenu(id string) bool {
	for _, it := range m.Items {
		if it.ID == id {
			return it.HasChildren()
		}
	}
	return false
}

// ParentOf returns the id of the submenu containing id, or "".
func (m *Menu) ParentOf(id string) string {
	for _, it := range m.Items {
		for _, child := range it.Children {
			if child.ID == id {
				return it.ID
			}
		}
	}
	return ""
}

// Entry is an item in depth-first order with its parent id.
type Entry struct {
	Item
	Parent string
	Depth  int
}

// Flatten lists every item depth-first.
func (m *Menu) Flatten() []Entry {
	var out []Entry
	for _, it := range m.Items {
		out = append(out, Entry{Item: it})
		for _, child := range it.Children {
			out = append(out, Entry{Item: child, Parent: it.ID, Depth: 1})
		}
	}
	return out
}
