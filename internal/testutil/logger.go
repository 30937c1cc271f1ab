// Package testutil provides shared test helpers: an slog logger bound to the
// test and small fixtures for menu files.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// WriteFile writes content to name inside a fresh temp dir and returns the
// full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// SampleMenuYAML is a small menu with one submenu, used across packages.
const SampleMenuYAML = `title: Acme Admin
items:
  - id: dashboard
    label: Dashboard
    href: /
    icon: "▣"
  - id: reports
    label: Reports
    icon: "▤"
    children:
      - id: reports-sales
        label: Sales
        href: /reports/sales
      - id: reports-traffic
        label: Traffic
        href: /reports/traffic
  - id: settings
    label: Settings
    href: /settings
    icon: "⚙"
`
