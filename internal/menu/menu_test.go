package menu

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/navshell/internal/testutil"
)

func TestParse(t *testing.T) {
	m, err := Parse([]byte(testutil.SampleMenuYAML))
	require.NoError(t, err)

	assert.Equal(t, "Acme Admin", m.Title)
	require.Len(t, m.Items, 3)
	assert.Equal(t, "reports", m.Items[1].ID)
	assert.True(t, m.Items[1].HasChildren())
	assert.Len(t, m.Items[1].Children, 2)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		errSubstr string
	}{
		{
			name:      "no items",
			yaml:      "title: empty\n",
			errSubstr: "no items",
		},
		{
			name:      "missing id",
			yaml:      "items:\n  - label: Orphan\n",
			errSubstr: "has no id",
		},
		{
			name:      "id with quote",
			yaml:      "items:\n  - id: \"it's\"\n    label: Bad\n",
			errSubstr: "may only contain",
		},
		{
			name:      "javascript href",
			yaml:      "items:\n  - id: x\n    label: X\n    href: \"javascript:alert(document.cookie)\"\n",
			errSubstr: `scheme "javascript" is not allowed`,
		},
		{
			name:      "mixed case scheme on child",
			yaml:      "items:\n  - id: p\n    label: P\n    children:\n      - id: c\n        label: C\n        href: \"JavaScript:void(0)\"\n",
			errSubstr: `scheme "javascript" is not allowed`,
		},
		{
			name:      "data href",
			yaml:      "items:\n  - id: x\n    label: X\n    href: \"data:text/html,hi\"\n",
			errSubstr: "is not allowed",
		},
		{
			name: "duplicate id across levels",
			yaml: `items:
  - id: a
    label: A
    children:
      - id: a
        label: Again
`,
			errSubstr: `duplicate id "a"`,
		},
		{
			name: "nested too deep",
			yaml: `items:
  - id: a
    label: A
    children:
      - id: b
        label: B
        children:
          - id: c
            label: C
`,
			errSubstr: "more than one level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("items: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse menu")
}

func TestParse_AllowedHrefs(t *testing.T) {
	for _, href := range []string{"/reports", "reports/sales", "#top", "https://example.com/a?b=c", "mailto:ops@example.com", "tel:+15550100"} {
		t.Run(href, func(t *testing.T) {
			yaml := "items:\n  - id: x\n    label: X\n    href: \"" + href + "\"\n"
			m, err := Parse([]byte(yaml))
			require.NoError(t, err)
			assert.Equal(t, href, m.Items[0].Href)
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestMenu_Lookups(t *testing.T) {
	m, err := Parse([]byte(testutil.SampleMenuYAML))
	require.NoError(t, err)

	it, ok := m.Find("reports-sales")
	require.True(t, ok)
	assert.Equal(t, "Sales", it.Label)

	_, ok = m.Find("missing")
	assert.False(t, ok)

	assert.True(t, m.HasSubmenu("reports"))
	assert.False(t, m.HasSubmenu("dashboard"))
	assert.False(t, m.HasSubmenu("reports-sales"), "children are not submenus")

	assert.Equal(t, "reports", m.ParentOf("reports-traffic"))
	assert.Equal(t, "", m.ParentOf("dashboard"))

	flat := m.Flatten()
	require.Len(t, flat, 5)
	assert.Equal(t, "reports-sales", flat[2].ID)
	assert.Equal(t, "reports", flat[2].Parent)
	assert.Equal(t, 1, flat[2].Depth)
}

func TestLoad(t *testing.T) {
	path := testutil.WriteFile(t, "menu.yaml", testutil.SampleMenuYAML)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Admin", m.Title)

	_, err = Load(path + ".missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read menu file")
}

func TestNewSource(t *testing.T) {
	s, err := NewSource("")
	require.NoError(t, err)
	assert.Equal(t, Default().Title, s.Menu().Title)
	require.NoError(t, s.Reload(), "static reload is a no-op")

	path := testutil.WriteFile(t, "menu.yaml", testutil.SampleMenuYAML)
	s, err = NewSource(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Admin", s.Menu().Title)
	assert.Equal(t, path, s.Path())
}

func TestSource_ReloadKeepsPreviousOnError(t *testing.T) {
	path := testutil.WriteFile(t, "menu.yaml", testutil.SampleMenuYAML)
	s, err := NewSource(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("items: []\n"), 0600))
	require.Error(t, s.Reload())
	assert.Equal(t, "Acme Admin", s.Menu().Title)
}

func TestSource_Watch(t *testing.T) {
	path := testutil.WriteFile(t, "menu.yaml", testutil.SampleMenuYAML)
	s, err := NewSource(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, testutil.NewTestLogger(t), func() {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register
	time.Sleep(50 * time.Millisecond)

	updated := "title: Renamed\nitems:\n  - id: only\n    label: Only\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0600))

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("menu was not reloaded")
	}
	assert.Equal(t, "Renamed", s.Menu().Title)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestStaticSource_WatchReturnsImmediately(t *testing.T) {
	s := StaticSource(Default())
	assert.NoError(t, s.Watch(context.Background(), testutil.NewTestLogger(t), func() {}))
}
